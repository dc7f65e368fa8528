package dataprocessing

import (
	"ibkrcli/pkg/contracts/domain"
)

// assembleExport turns the processed tables into their export form: each
// non-empty table gains a pk column (<symbol-or-currency>_<report-date>)
// and a data_date_part column. Empty tables keep their logical name so the
// caller always sees the full set. The metrics and master_dates tables are
// emitted on every run as an append-only ledger.
func assembleExport(base *BaseTables, trades *TradeTables, metrics domain.MetricsSnapshot, dateToken, dataDate string) map[string]domain.ExportTable {
	pk := func(key string) string { return key + "_" + dateToken }

	tables := map[string]domain.ExportTable{
		domain.TableStocks:        positionsTable(domain.TableStocks, base.Stocks, false, pk, dataDate),
		domain.TableOptions:       positionsTable(domain.TableOptions, base.Options, true, pk, dataDate),
		domain.TableForex:         forexTable(base.Forex, pk, dataDate),
		domain.TableOptionTrades:  tradesTable(domain.TableOptionTrades, trades.OptionTrades, true, pk, dataDate),
		domain.TableStockTrades:   tradesTable(domain.TableStockTrades, trades.StockTrades, false, pk, dataDate),
		domain.TableTotalProceeds: proceedsTable(trades.TotalProceeds, pk, dataDate),
		domain.TableMetrics: {
			Name:    domain.TableMetrics,
			Columns: []string{"gross_value", "nav", "option_credit", "option_debit", "option_balance", "data_date_part"},
			Rows: [][]any{{
				metrics.GrossValue,
				metrics.NAV,
				metrics.OptionCredit,
				metrics.OptionDebit,
				metrics.OptionBalance,
				dataDate,
			}},
		},
		domain.TableMasterDates: {
			Name:    domain.TableMasterDates,
			Columns: []string{"data_date_part"},
			Rows:    [][]any{{dataDate}},
		},
	}
	return tables
}

func positionsTable(name string, positions []domain.PositionRecord, withIdentity bool, pk func(string) string, dataDate string) domain.ExportTable {
	if len(positions) == 0 {
		return domain.ExportTable{Name: name}
	}

	columns := []string{
		colAssetCategory,
		colSymbol,
		colPriorQuantity,
		colCurrentQuantity,
		colPriorPrice,
		colCurrentPrice,
		"pl_delta",
		colPLTransaction,
		"is_new",
	}
	if withIdentity {
		columns = append(columns, "underlying", "exp_date", "strike", "contract_type")
	}
	columns = append(columns, "pk", "data_date_part")

	rows := make([][]any, 0, len(positions))
	for _, p := range positions {
		row := []any{
			string(p.AssetCategory),
			p.Symbol,
			p.PriorQuantity,
			p.CurrentQuantity,
			p.PriorPrice,
			p.CurrentPrice,
			p.PLDelta,
			p.PLTransaction,
			p.IsNew,
		}
		if withIdentity {
			row = append(row, identityCells(p.Identity)...)
		}
		row = append(row, pk(p.Symbol), dataDate)
		rows = append(rows, row)
	}
	return domain.ExportTable{Name: name, Columns: columns, Rows: rows}
}

// forexTable projects forex positions to the cash view: the symbol column
// becomes currency and the prior price carries the EUR exchange rate.
func forexTable(positions []domain.PositionRecord, pk func(string) string, dataDate string) domain.ExportTable {
	if len(positions) == 0 {
		return domain.ExportTable{Name: domain.TableForex}
	}

	columns := []string{
		colAssetCategory,
		colCurrency,
		colPriorQuantity,
		colCurrentQuantity,
		"exchange_rate_eur",
		"pl_delta",
		"pk",
		"data_date_part",
	}
	rows := make([][]any, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []any{
			string(p.AssetCategory),
			p.Symbol,
			p.PriorQuantity,
			p.CurrentQuantity,
			p.PriorPrice,
			p.PLDelta,
			pk(p.Symbol),
			dataDate,
		})
	}
	return domain.ExportTable{Name: domain.TableForex, Columns: columns, Rows: rows}
}

func tradesTable(name string, trades []domain.AggregatedTrade, withIdentity bool, pk func(string) string, dataDate string) domain.ExportTable {
	if len(trades) == 0 {
		return domain.ExportTable{Name: name}
	}

	columns := []string{colSymbol, colCurrency, "total_quantity", "total_proceeds"}
	if withIdentity {
		columns = append(columns, "underlying", "exp_date", "strike", "contract_type")
	}
	columns = append(columns, "pk", "data_date_part")

	rows := make([][]any, 0, len(trades))
	for _, agg := range trades {
		row := []any{agg.Symbol, agg.Currency, agg.TotalQuantity, agg.TotalProceeds}
		if withIdentity {
			row = append(row, identityCells(agg.Identity)...)
		}
		row = append(row, pk(agg.Symbol), dataDate)
		rows = append(rows, row)
	}
	return domain.ExportTable{Name: name, Columns: columns, Rows: rows}
}

func proceedsTable(records []domain.ProceedsRecord, pk func(string) string, dataDate string) domain.ExportTable {
	if len(records) == 0 {
		return domain.ExportTable{Name: domain.TableTotalProceeds}
	}

	columns := []string{
		colSymbol,
		colCurrency,
		"total_quantity",
		"total_proceeds",
		"underlying",
		"exp_date",
		"strike",
		"contract_type",
		colAssetCategory,
		"pk",
		"data_date_part",
	}
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.Symbol,
			rec.Currency,
			rec.TotalQuantity,
			rec.TotalProceeds,
			rec.Identity.Underlying,
			rec.Identity.ExpDate,
			rec.Identity.Strike,
			rec.Identity.ContractType,
			string(rec.AssetCategory),
			pk(rec.Symbol),
			dataDate,
		})
	}
	return domain.ExportTable{Name: domain.TableTotalProceeds, Columns: columns, Rows: rows}
}

// identityCells renders an option identity as export cells. Rows whose
// symbol never decoded carry nulls, mirroring the row-level tolerance of
// the symbol parser.
func identityCells(identity *domain.OptionIdentity) []any {
	if identity == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{identity.Underlying, identity.ExpDate, identity.Strike, identity.ContractType}
}
