package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibkrcli/internal/dataprocessing"
	"ibkrcli/pkg/contracts/domain"
)

const sampleStatement = `Statement,Header,Field Name,Field Value
"Mark-to-Market Performance Summary",Header,Asset Category,Symbol,Prior Quantity,Current Quantity,Prior Price,Current Price,Mark-to-Market P/L Position,Mark-to-Market P/L Transaction
"Mark-to-Market Performance Summary",Data,Stocks,AAPL,0,10,4,5,10,0
"Mark-to-Market Performance Summary",Data,Forex,EUR,50,100,1.04,1.05,0.5,0`

type fakeStore struct {
	saved []*domain.Result
	err   error
}

func (f *fakeStore) SaveResult(_ context.Context, result *domain.Result) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, result)
	return nil
}

func newTestService(store Persister) *StatementService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := dataprocessing.NewProcessor(dataprocessing.Config{}, logger)
	return NewStatementService(processor, store, logger, prometheus.NewRegistry())
}

func TestIdentifierFromSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
		wantErr bool
	}{
		{
			name:    "broker notification subject",
			subject: "Activity Statement Notification 01/16/2025",
			want:    "daily_csv.export.20250116.csv",
		},
		{
			name:    "date only",
			subject: "12/31/2024",
			want:    "daily_csv.export.20241231.csv",
		},
		{
			name:    "no trailing date",
			subject: "Activity Statement Notification",
			wantErr: true,
		},
		{
			name:    "wrong date format",
			subject: "Statement 2025-01-16",
			wantErr: true,
		},
		{
			name:    "empty",
			subject: "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentifierFromSubject(tt.subject)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, dataprocessing.ErrReportDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessContent(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	result, err := svc.ProcessContent(context.Background(), sampleStatement, "Activity Statement Notification 01/16/2025")
	require.NoError(t, err)

	assert.Equal(t, "20250116", result.ReportDate)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "2025-01-16", store.saved[0].DataDate)
}

func TestProcessContentStripsBOM(t *testing.T) {
	svc := newTestService(&fakeStore{})

	result, err := svc.ProcessContent(context.Background(), "\ufeff"+sampleStatement, "01/16/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-16", result.DataDate)
}

func TestProcessContentBadSubject(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store)

	_, err := svc.ProcessContent(context.Background(), sampleStatement, "no date here")
	require.Error(t, err)
	assert.Empty(t, store.saved)
}

func TestProcessContentStoreFailure(t *testing.T) {
	svc := newTestService(&fakeStore{err: fmt.Errorf("disk full")})

	_, err := svc.ProcessContent(context.Background(), sampleStatement, "01/16/2025")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Contains(t, err.Error(), "disk full")
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daily_csv.1641291.20250116.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatement), 0o644))

	store := &fakeStore{}
	svc := newTestService(store)

	result, err := svc.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "20250116", result.ReportDate)
	require.Len(t, store.saved, 1)
}

func TestProcessFileMissing(t *testing.T) {
	svc := newTestService(&fakeStore{})

	_, err := svc.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to open"))
}
