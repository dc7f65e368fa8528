package domain

// Section names the pipeline looks up by name in a split statement.
const (
	SectionMTMSummary = "Mark-to-Market Performance Summary"
	SectionTrades     = "Trades"
)

// AssetCategory is the canonical instrument class tag used across all
// processed tables.
type AssetCategory string

const (
	AssetStocks  AssetCategory = "stocks"
	AssetOptions AssetCategory = "options"
	AssetForex   AssetCategory = "forex"
)

// assetCategoryLabels maps the raw labels the statement export uses to the
// canonical category tags.
var assetCategoryLabels = map[string]AssetCategory{
	"Stocks":                   AssetStocks,
	"Equity and Index Options": AssetOptions,
	"Forex":                    AssetForex,
}

// CategoryForLabel resolves a raw asset-category label from the statement
// into its canonical tag. The second return value is false for labels the
// pipeline does not recognize.
func CategoryForLabel(label string) (AssetCategory, bool) {
	c, ok := assetCategoryLabels[label]
	return c, ok
}

// Table is an ordered tabular block parsed from one statement section.
// The first line of the section is the header; remaining lines are rows in
// original order. All cells are raw text until a later stage coerces them.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the table has no data rows.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// PositionRecord is one row of the daily mark-to-market summary after
// classification. Prices default to zero when the source cell is not
// numeric; IsNew marks positions opened since the prior close.
type PositionRecord struct {
	AssetCategory   AssetCategory `json:"asset_category" db:"asset_category"`
	Symbol          string        `json:"symbol" db:"symbol"`
	PriorQuantity   float64       `json:"prior_quantity" db:"prior_quantity"`
	CurrentQuantity float64       `json:"current_quantity" db:"current_quantity"`
	PriorPrice      float64       `json:"prior_price" db:"prior_price"`
	CurrentPrice    float64       `json:"current_price" db:"current_price"`
	PLDelta         float64       `json:"pl_delta" db:"pl_delta"`
	PLTransaction   float64       `json:"pl_transaction" db:"mark-to-market_p/l_transaction"`
	IsNew           bool          `json:"is_new" db:"is_new"`

	// Identity carries the decoded option symbol for option positions.
	// It stays nil for stocks and forex, and for option rows whose symbol
	// could not be decoded.
	Identity *OptionIdentity `json:"identity,omitempty"`
}

// OptionIdentity is the decoded form of a composite option symbol such as
// "ASTS 07FEB25 26 C".
type OptionIdentity struct {
	Underlying   string  `json:"underlying" db:"underlying"`
	ExpDate      string  `json:"exp_date" db:"exp_date"` // ISO YYYY-MM-DD
	Strike       float64 `json:"strike" db:"strike"`
	ContractType string  `json:"contract_type" db:"contract_type"`
}

// Sentinel identity values synthesized for stock rows in the combined
// proceeds table so stock and option aggregates share one schema.
const (
	DefaultExpiryDate   = "9999-01-01"
	DefaultStrike       = 0.0
	DefaultContractType = "C"
)

// AggregatedTrade is a per-symbol rollup of trade rows. Currency is the
// first value observed for the symbol; quantities and proceeds are summed.
type AggregatedTrade struct {
	Symbol        string          `json:"symbol" db:"symbol"`
	Currency      string          `json:"currency" db:"currency"`
	TotalQuantity float64         `json:"total_quantity" db:"total_quantity"`
	TotalProceeds float64         `json:"total_proceeds" db:"total_proceeds"`
	Identity      *OptionIdentity `json:"identity,omitempty"`
}

// ProceedsRecord is one row of the combined stock/option proceeds table.
// Stock rows carry synthesized identity fields (underlying = symbol, the
// sentinel expiry, strike 0, contract type "C").
type ProceedsRecord struct {
	Symbol        string         `json:"symbol" db:"symbol"`
	Currency      string         `json:"currency" db:"currency"`
	TotalQuantity float64        `json:"total_quantity" db:"total_quantity"`
	TotalProceeds float64        `json:"total_proceeds" db:"total_proceeds"`
	Identity      OptionIdentity `json:"identity"`
	AssetCategory AssetCategory  `json:"asset_category" db:"asset_category"`
}

// MetricsSnapshot holds the portfolio metrics derived from one statement.
// Option figures are rounded to two decimals.
type MetricsSnapshot struct {
	GrossValue    float64 `json:"gross_value" db:"gross_value"`
	NAV           float64 `json:"nav" db:"nav"`
	OptionCredit  float64 `json:"option_credit" db:"option_credit"`
	OptionDebit   float64 `json:"option_debit" db:"option_debit"`
	OptionBalance float64 `json:"option_balance" db:"option_balance"`
}

// ExportTable is a named table ready for append-only persistence. Cells are
// string, float64 or bool values; the store maps them to column types on
// first use. Empty tables keep their logical name but carry no columns or
// rows, and the store skips them.
type ExportTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// IsEmpty reports whether the export table has no rows.
func (t ExportTable) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Logical export table names handed to the persistence layer.
const (
	TableStocks        = "stocks"
	TableOptions       = "options"
	TableOptionTrades  = "option_trades"
	TableStockTrades   = "stock_trades"
	TableTotalProceeds = "total_proceeds"
	TableForex         = "forex"
	TableMetrics       = "metrics"
	TableMasterDates   = "master_dates"
)

// ExportTableNames lists every logical table of a run in persistence order.
var ExportTableNames = []string{
	TableStocks,
	TableOptions,
	TableOptionTrades,
	TableStockTrades,
	TableTotalProceeds,
	TableForex,
	TableMetrics,
	TableMasterDates,
}

// Warning records a non-fatal condition absorbed during a run, such as a
// section that failed to parse or an option symbol that could not be
// decoded. Warnings are surfaced on the run result instead of being logged
// and forgotten.
type Warning struct {
	Stage   string `json:"stage"`
	Section string `json:"section,omitempty"`
	Detail  string `json:"detail"`
}

// Result is the full outcome of processing one statement document.
type Result struct {
	ReportDate string                 `json:"report_date"`    // YYYYMMDD token from the identifier
	DataDate   string                 `json:"data_date_part"` // ISO date derived from ReportDate
	Tables     map[string]ExportTable `json:"tables"`
	Metrics    MetricsSnapshot        `json:"metrics"`
	Warnings   []Warning              `json:"warnings,omitempty"`
}
