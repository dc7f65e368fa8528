package dataprocessing

import (
	"fmt"

	"ibkrcli/pkg/contracts/domain"
)

// Normalized column names of the cleaned daily-summary section. The schema
// is validated once here, before any row is touched.
const (
	colAssetCategory   = "asset_category"
	colSymbol          = "symbol"
	colCurrency        = "currency"
	colPriorQuantity   = "prior_quantity"
	colCurrentQuantity = "current_quantity"
	colPriorPrice      = "prior_price"
	colCurrentPrice    = "current_price"
	colPLPosition      = "mark-to-market_p/l_position"
	colPLTransaction   = "mark-to-market_p/l_transaction"
	colHeader          = "header"
	colQuantity        = "quantity"
	colProceeds        = "proceeds"
)

var summaryColumns = []string{
	colAssetCategory,
	colSymbol,
	colPriorQuantity,
	colCurrentQuantity,
	colPriorPrice,
	colCurrentPrice,
	colPLPosition,
	colPLTransaction,
}

// BaseTables holds the per-category sub-tables of the daily summary. A nil
// slice means the category was absent from the input, which callers must
// distinguish from an empty one.
type BaseTables struct {
	Stocks  []domain.PositionRecord
	Options []domain.PositionRecord
	Forex   []domain.PositionRecord
}

// ClassifyPositions turns the cleaned, normalized daily-summary section
// into per-asset-category position tables. Prices default to zero when not
// numeric, IsNew derives from a zero prior quantity, and every numeric
// field is rounded to two decimals. Rows with unrecognized category labels
// belong to none of the three tables.
func ClassifyPositions(t domain.Table) (*BaseTables, error) {
	idx := make(map[string]int, len(summaryColumns))
	for _, name := range summaryColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("daily summary is missing column %q", name)
		}
		idx[name] = i
	}

	base := &BaseTables{}
	for _, row := range t.Rows {
		cell := func(name string) string {
			i := idx[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		category, ok := domain.CategoryForLabel(cell(colAssetCategory))
		if !ok {
			continue
		}

		// IsNew derives from the quantity before rounding.
		priorQty := parseAmount(cell(colPriorQuantity))
		record := domain.PositionRecord{
			AssetCategory:   category,
			Symbol:          cell(colSymbol),
			PriorQuantity:   parseAmount2(cell(colPriorQuantity)),
			CurrentQuantity: parseAmount2(cell(colCurrentQuantity)),
			PriorPrice:      parseAmount2(cell(colPriorPrice)),
			CurrentPrice:    parseAmount2(cell(colCurrentPrice)),
			PLDelta:         parseAmount2(cell(colPLPosition)),
			PLTransaction:   parseAmount2(cell(colPLTransaction)),
			IsNew:           priorQty == 0,
		}

		switch category {
		case domain.AssetStocks:
			base.Stocks = append(base.Stocks, record)
		case domain.AssetOptions:
			base.Options = append(base.Options, record)
		case domain.AssetForex:
			base.Forex = append(base.Forex, record)
		}
	}
	return base, nil
}

// DecodeOptionIdentities attaches the decoded option symbol to each option
// position. A symbol that does not decode leaves the row's identity nil and
// records a warning; the row itself is kept.
func DecodeOptionIdentities(options []domain.PositionRecord) []domain.Warning {
	var warnings []domain.Warning
	for i := range options {
		identity, err := ParseOptionSymbol(options[i].Symbol)
		if err != nil {
			warnings = append(warnings, domain.Warning{
				Stage:   "option_symbol",
				Section: domain.SectionMTMSummary,
				Detail:  err.Error(),
			})
			continue
		}
		options[i].Identity = &identity
	}
	return warnings
}
