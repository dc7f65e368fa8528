package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibkrcli/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func stocksTable(pk string) domain.ExportTable {
	return domain.ExportTable{
		Name:    domain.TableStocks,
		Columns: []string{"symbol", "current_quantity", "is_new", "pk", "data_date_part"},
		Rows: [][]any{
			{"AAPL", 10.0, true, pk, "2025-01-16"},
		},
	}
}

func TestAppendTableCreatesAndInserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTable(ctx, stocksTable("AAPL_20250116")))

	count, err := s.RowCount(ctx, domain.TableStocks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppendTableIsAppendOnly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTable(ctx, stocksTable("AAPL_20250116")))
	require.NoError(t, s.AppendTable(ctx, stocksTable("AAPL_20250117")))

	count, err := s.RowCount(ctx, domain.TableStocks)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppendTableQuotedColumnNames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	table := domain.ExportTable{
		Name:    domain.TableStocks,
		Columns: []string{"symbol", "mark-to-market_p/l_transaction"},
		Rows:    [][]any{{"AAPL", -3.5}},
	}
	require.NoError(t, s.AppendTable(ctx, table))

	count, err := s.RowCount(ctx, domain.TableStocks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveResultSkipsEmptyTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := &domain.Result{
		DataDate: "2025-01-16",
		Tables: map[string]domain.ExportTable{
			domain.TableStocks: stocksTable("AAPL_20250116"),
			domain.TableForex:  {Name: domain.TableForex},
			domain.TableMasterDates: {
				Name:    domain.TableMasterDates,
				Columns: []string{"data_date_part"},
				Rows:    [][]any{{"2025-01-16"}},
			},
		},
	}
	require.NoError(t, s.SaveResult(ctx, result))

	count, err := s.RowCount(ctx, domain.TableStocks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = s.RowCount(ctx, domain.TableForex)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "empty table is never created")

	count, err = s.RowCount(ctx, domain.TableMasterDates)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRowCountMissingTable(t *testing.T) {
	s := openTestStore(t)

	count, err := s.RowCount(context.Background(), "never_created")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAppendTableNullIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	table := domain.ExportTable{
		Name:    domain.TableOptionTrades,
		Columns: []string{"symbol", "underlying", "strike"},
		Rows: [][]any{
			{"BROKEN SYMBOL", nil, nil},
			{"ASTS 07FEB25 26 C", "ASTS", 26.0},
		},
	}
	require.NoError(t, s.AppendTable(ctx, table))

	count, err := s.RowCount(ctx, domain.TableOptionTrades)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
