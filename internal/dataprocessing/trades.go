package dataprocessing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"ibkrcli/pkg/contracts/domain"
)

// dataRowTag marks real trade rows in the exporter's scaffold column;
// everything else in the trades section is summary noise.
const dataRowTag = "Data"

var tradeColumns = []string{
	colHeader,
	colAssetCategory,
	colSymbol,
	colCurrency,
	colQuantity,
	colProceeds,
}

// TradeTables holds the three trade-derived outputs of a run. A document
// without a trades section yields empty (not nil-mapped) tables.
type TradeTables struct {
	OptionTrades  []domain.AggregatedTrade
	StockTrades   []domain.AggregatedTrade
	TotalProceeds []domain.ProceedsRecord
}

// EmptyTradeTables returns the trade outputs for a document with no trades
// section.
func EmptyTradeTables() *TradeTables {
	return &TradeTables{
		OptionTrades:  []domain.AggregatedTrade{},
		StockTrades:   []domain.AggregatedTrade{},
		TotalProceeds: []domain.ProceedsRecord{},
	}
}

// AggregateTrades processes the raw trades section: it keeps only real data
// rows, splits them into stock and option trades by canonical category,
// type-infers each subset and rolls them up per symbol (currency = first
// observed, quantity and proceeds summed exactly).
//
// An option symbol that does not decode keeps its row in the aggregation
// under the raw symbol, with null identity fields and a warning; no trade
// rows are dropped for a malformed symbol.
func AggregateTrades(t domain.Table) (*TradeTables, []domain.Warning, error) {
	t = NormalizeColumns(t)

	idx := make(map[string]int, len(tradeColumns))
	for _, name := range tradeColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, nil, fmt.Errorf("trades section is missing column %q", name)
		}
		idx[name] = i
	}

	var stockRows, optionRows [][]string
	for _, row := range t.Rows {
		if idx[colHeader] >= len(row) || row[idx[colHeader]] != dataRowTag {
			continue
		}
		category, ok := domain.CategoryForLabel(row[idx[colAssetCategory]])
		if !ok {
			continue
		}
		switch category {
		case domain.AssetStocks:
			stockRows = append(stockRows, row)
		case domain.AssetOptions:
			optionRows = append(optionRows, row)
		}
	}

	var warnings []domain.Warning

	stockAgg := aggregateRows(t.Columns, stockRows, idx)
	optionAgg := aggregateRows(t.Columns, optionRows, idx)

	// Re-join the aggregated option symbols with their decoded identity.
	for i := range optionAgg {
		identity, err := ParseOptionSymbol(optionAgg[i].Symbol)
		if err != nil {
			warnings = append(warnings, domain.Warning{
				Stage:   "option_symbol",
				Section: domain.SectionTrades,
				Detail:  err.Error(),
			})
			continue
		}
		optionAgg[i].Identity = &identity
	}

	return &TradeTables{
		OptionTrades:  optionAgg,
		StockTrades:   stockAgg,
		TotalProceeds: combineProceeds(stockAgg, optionAgg),
	}, warnings, nil
}

// aggregateRows groups trade rows by symbol and sums quantity and proceeds.
// Output is sorted by symbol for deterministic, order-independent results.
func aggregateRows(columns []string, rows [][]string, idx map[string]int) []domain.AggregatedTrade {
	if len(rows) == 0 {
		return []domain.AggregatedTrade{}
	}

	typed := InferTypes(domain.Table{Columns: columns, Rows: rows})
	symbolIdx := idx[colSymbol]
	currencyIdx := idx[colCurrency]
	quantityIdx := idx[colQuantity]
	proceedsIdx := idx[colProceeds]

	type accumulator struct {
		currency string
		quantity decimal.Decimal
		proceeds decimal.Decimal
	}
	groups := make(map[string]*accumulator)
	symbols := make([]string, 0, len(rows))

	for i, row := range rows {
		symbol := row[symbolIdx]
		acc, ok := groups[symbol]
		if !ok {
			acc = &accumulator{currency: row[currencyIdx]}
			groups[symbol] = acc
			symbols = append(symbols, symbol)
		}
		acc.quantity = acc.quantity.Add(cellDecimal(typed.Rows[i][quantityIdx]))
		acc.proceeds = acc.proceeds.Add(cellDecimal(typed.Rows[i][proceedsIdx]))
	}

	sort.Strings(symbols)
	aggregates := make([]domain.AggregatedTrade, 0, len(symbols))
	for _, symbol := range symbols {
		acc := groups[symbol]
		quantity, _ := acc.quantity.Float64()
		proceeds, _ := acc.proceeds.Float64()
		aggregates = append(aggregates, domain.AggregatedTrade{
			Symbol:        symbol,
			Currency:      acc.currency,
			TotalQuantity: quantity,
			TotalProceeds: proceeds,
		})
	}
	return aggregates
}

// combineProceeds builds the union table of stock and option aggregates.
// Stock rows carry synthesized identity fields so both shapes share one
// schema.
func combineProceeds(stocks, options []domain.AggregatedTrade) []domain.ProceedsRecord {
	combined := make([]domain.ProceedsRecord, 0, len(stocks)+len(options))
	for _, agg := range stocks {
		combined = append(combined, domain.ProceedsRecord{
			Symbol:        agg.Symbol,
			Currency:      agg.Currency,
			TotalQuantity: agg.TotalQuantity,
			TotalProceeds: agg.TotalProceeds,
			Identity: domain.OptionIdentity{
				Underlying:   agg.Symbol,
				ExpDate:      domain.DefaultExpiryDate,
				Strike:       domain.DefaultStrike,
				ContractType: domain.DefaultContractType,
			},
			AssetCategory: domain.AssetStocks,
		})
	}
	for _, agg := range options {
		record := domain.ProceedsRecord{
			Symbol:        agg.Symbol,
			Currency:      agg.Currency,
			TotalQuantity: agg.TotalQuantity,
			TotalProceeds: agg.TotalProceeds,
			AssetCategory: domain.AssetOptions,
		}
		if agg.Identity != nil {
			record.Identity = *agg.Identity
		}
		combined = append(combined, record)
	}
	return combined
}
