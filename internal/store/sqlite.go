// Package store persists processed statement tables to SQLite.
// Every run appends; historical rows are never rewritten.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"ibkrcli/pkg/contracts/domain"
)

// Store wraps the SQLite database holding statement snapshots.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path. Parent directories are
// created as needed.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	return &Store{
		db:     db,
		logger: logger.With(slog.String("component", "store")),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult appends every non-empty table of a processed statement in a
// single transaction.
func (s *Store) SaveResult(ctx context.Context, result *domain.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	saved := 0
	for _, name := range domain.ExportTableNames {
		table, ok := result.Tables[name]
		if !ok || table.IsEmpty() {
			continue
		}
		if err := appendTable(ctx, tx, table); err != nil {
			return fmt.Errorf("failed to save table %s: %w", name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "statement saved",
		slog.String("data_date", result.DataDate),
		slog.Int("tables", saved),
	)
	return nil
}

// AppendTable appends a single export table outside of a statement run.
func (s *Store) AppendTable(ctx context.Context, table domain.ExportTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendTable(ctx, tx, table); err != nil {
		return err
	}
	return tx.Commit()
}

// RowCount returns the number of rows in a table, or zero when the table
// does not exist yet.
func (s *Store) RowCount(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&count)
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count rows in %s: %w", name, err)
	}
	return count, nil
}

func appendTable(ctx context.Context, tx *sql.Tx, table domain.ExportTable) error {
	if err := ensureTable(ctx, tx, table); err != nil {
		return err
	}

	placeholders := make([]string, len(table.Columns))
	quoted := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		placeholders[i] = "?"
		quoted[i] = quoteIdent(col)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table.Name, err)
	}
	defer stmt.Close()

	args := make([]any, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			args[i] = normalizeValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row into %s: %w", table.Name, err)
		}
	}
	return nil
}

func ensureTable(ctx context.Context, tx *sql.Tx, table domain.ExportTable) error {
	defs := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		defs[i] = quoteIdent(col) + " " + columnType(table, i)
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(table.Name), strings.Join(defs, ", "))

	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}
	return nil
}

// columnType picks a SQLite type from the first non-nil value in a column.
func columnType(table domain.ExportTable, col int) string {
	for _, row := range table.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case float64, float32:
			return "REAL"
		case int, int64, bool:
			return "INTEGER"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func normalizeValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
