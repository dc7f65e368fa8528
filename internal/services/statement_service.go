// Package services contains the application services wiring the statement
// pipeline to persistence and transport.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ibkrcli/internal/dataprocessing"
	"ibkrcli/pkg/contracts/domain"
)

// ErrPersist marks failures writing a processed result to storage, as
// opposed to failures of the statement itself.
var ErrPersist = errors.New("failed to persist statement")

// Persister saves processed statement results.
type Persister interface {
	SaveResult(ctx context.Context, result *domain.Result) error
}

// StatementService runs the pipeline on incoming statements and persists
// the outcome.
type StatementService struct {
	processor *dataprocessing.Processor
	store     Persister
	logger    *slog.Logger

	processedTotal prometheus.Counter
	failedTotal    prometheus.Counter
}

// NewStatementService creates a statement service. The store may be nil
// when persistence is not wanted.
func NewStatementService(processor *dataprocessing.Processor, store Persister, logger *slog.Logger, reg prometheus.Registerer) *StatementService {
	factory := promauto.With(reg)
	return &StatementService{
		processor: processor,
		store:     store,
		logger:    logger.With(slog.String("component", "statement_service")),
		processedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "statements_processed_total",
			Help: "Number of statements processed successfully.",
		}),
		failedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "statements_failed_total",
			Help: "Number of statements that failed processing.",
		}),
	}
}

// ProcessContent processes a raw CSV payload received with a mail subject
// line. The report date comes from the subject, not the payload.
func (s *StatementService) ProcessContent(ctx context.Context, csvContent, subject string) (*domain.Result, error) {
	identifier, err := IdentifierFromSubject(subject)
	if err != nil {
		s.failedTotal.Inc()
		return nil, err
	}

	// Exported payloads often start with a UTF-8 BOM.
	csvContent = strings.TrimPrefix(csvContent, "\ufeff")

	result, err := s.run(ctx, strings.NewReader(csvContent), identifier)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessFile processes a statement CSV from disk, deriving the report
// date from the file name.
func (s *StatementService) ProcessFile(ctx context.Context, path string) (*domain.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		s.failedTotal.Inc()
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer file.Close()

	return s.run(ctx, file, filepath.Base(path))
}

func (s *StatementService) run(ctx context.Context, r io.Reader, identifier string) (*domain.Result, error) {
	start := time.Now()

	result, err := s.processor.Process(ctx, r, identifier)
	if err != nil {
		s.failedTotal.Inc()
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveResult(ctx, result); err != nil {
			s.failedTotal.Inc()
			return nil, fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}

	s.processedTotal.Inc()
	s.logger.InfoContext(ctx, "statement processed",
		slog.String("identifier", identifier),
		slog.String("data_date", result.DataDate),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// IdentifierFromSubject derives the synthetic file identifier the pipeline
// expects from a statement mail subject. The subject ends with the report
// date in MM/DD/YYYY form.
func IdentifierFromSubject(subject string) (string, error) {
	fields := strings.Fields(subject)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty subject", dataprocessing.ErrReportDate)
	}

	date, err := time.Parse("01/02/2006", fields[len(fields)-1])
	if err != nil {
		return "", fmt.Errorf("%w: subject %q has no trailing MM/DD/YYYY date", dataprocessing.ErrReportDate, subject)
	}
	return "daily_csv.export." + date.Format("20060102") + ".csv", nil
}
