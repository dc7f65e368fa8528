package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ibkrcli/pkg/contracts/domain"
)

// Config carries the pipeline policies. It is passed in explicitly; the
// pipeline reads no global state.
type Config struct {
	// MissingForexPolicy decides what happens when the daily summary has
	// no forex rows: ForexPolicyFail aborts the run, ForexPolicyZero
	// treats the cash balance as zero.
	MissingForexPolicy string
}

// Processor runs the full statement pipeline. It holds no mutable state
// between runs and is safe for concurrent use.
type Processor struct {
	missingForex string
	logger       *slog.Logger
}

// NewProcessor creates a processor with the given policies.
func NewProcessor(cfg Config, logger *slog.Logger) *Processor {
	policy := cfg.MissingForexPolicy
	if policy == "" {
		policy = ForexPolicyFail
	}
	return &Processor{
		missingForex: policy,
		logger:       logger.With(slog.String("component", "processor")),
	}
}

// Process runs one statement document through the pipeline and returns the
// assembled export tables, metrics and accumulated warnings. The
// identifier is the filename-like string the report date is resolved from.
func (p *Processor) Process(ctx context.Context, statement io.Reader, identifier string) (*domain.Result, error) {
	dateToken, err := ResolveReportDate(identifier)
	if err != nil {
		return nil, err
	}
	reportDate, err := time.Parse("20060102", dateToken)
	if err != nil {
		return nil, fmt.Errorf("%w: token %q is not a calendar date", ErrReportDate, dateToken)
	}
	dataDate := reportDate.Format("2006-01-02")

	sections, warnings, err := SplitStatement(statement)
	if err != nil {
		return nil, err
	}

	mtm, ok := sections[domain.SectionMTMSummary]
	if !ok {
		return nil, fmt.Errorf("statement has no %q section", domain.SectionMTMSummary)
	}
	summary := NormalizeColumns(DropColumn(CleanSection(mtm), headerColumn))

	base, err := ClassifyPositions(summary)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, DecodeOptionIdentities(base.Options)...)

	trades := EmptyTradeTables()
	if tradesSection, ok := sections[domain.SectionTrades]; ok {
		var tradeWarnings []domain.Warning
		trades, tradeWarnings, err = AggregateTrades(tradesSection)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, tradeWarnings...)
	}

	metrics, err := CalculateMetrics(base, p.missingForex)
	if err != nil {
		return nil, err
	}

	result := &domain.Result{
		ReportDate: dateToken,
		DataDate:   dataDate,
		Tables:     assembleExport(base, trades, metrics, dateToken, dataDate),
		Metrics:    metrics,
		Warnings:   warnings,
	}

	p.logger.InfoContext(ctx, "statement processed",
		slog.String("report_date", dateToken),
		slog.Int("sections", len(sections)),
		slog.Int("stocks", len(base.Stocks)),
		slog.Int("options", len(base.Options)),
		slog.Int("forex", len(base.Forex)),
		slog.Int("option_trades", len(trades.OptionTrades)),
		slog.Int("stock_trades", len(trades.StockTrades)),
		slog.Int("warnings", len(warnings)),
	)
	return result, nil
}
