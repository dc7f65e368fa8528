// Command processor runs the statement pipeline on CSV files from disk
// and appends the results to the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"ibkrcli/internal/config"
	"ibkrcli/internal/dataprocessing"
	"ibkrcli/internal/exporter"
	"ibkrcli/internal/infrastructure"
	"ibkrcli/internal/services"
	"ibkrcli/internal/store"
)

func main() {
	var (
		csvDir   = flag.String("csv-dir", "", "also append results as CSV files under this directory")
		workbook = flag.String("workbook", "", "also write results to this xlsx workbook")
		noDB     = flag.Bool("no-db", false, "skip writing to the database")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: processor [flags] <statement.csv> [more.csv ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Args(), *csvDir, *workbook, *noDB); err != nil {
		fmt.Fprintf(os.Stderr, "processor: %v\n", err)
		os.Exit(1)
	}
}

func run(paths []string, csvDir, workbook string, noDB bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	var persister services.Persister
	if !noDB {
		st, err := store.Open(cfg.Storage.DBPath, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		persister = st
	}

	processor := dataprocessing.NewProcessor(dataprocessing.Config{
		MissingForexPolicy: cfg.Pipeline.MissingForex,
	}, logger)
	service := services.NewStatementService(processor, persister, logger, prometheus.NewRegistry())

	ctx := context.Background()
	for _, path := range paths {
		result, err := service.ProcessFile(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		for _, warning := range result.Warnings {
			logger.Warn("pipeline warning",
				slog.String("file", path),
				slog.String("stage", warning.Stage),
				slog.String("section", warning.Section),
				slog.String("detail", warning.Detail),
			)
		}

		if csvDir != "" {
			if err := exporter.WriteCSVDir(csvDir, result); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		if workbook != "" {
			if err := exporter.WriteWorkbook(workbook, result); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		fmt.Printf("%s: data_date=%s gross=%.2f nav=%.2f warnings=%d\n",
			path, result.DataDate, result.Metrics.GrossValue, result.Metrics.NAV, len(result.Warnings))
	}
	return nil
}
