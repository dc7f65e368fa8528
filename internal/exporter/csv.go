// Package exporter writes processed statement tables to files for
// inspection outside the database.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ibkrcli/pkg/contracts/domain"
)

// WriteCSVDir writes every non-empty table of a result as <name>.csv under
// dir. Existing files grow by appending; the header is written only when a
// file is created.
func WriteCSVDir(dir string, result *domain.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	for _, name := range domain.ExportTableNames {
		table, ok := result.Tables[name]
		if !ok || table.IsEmpty() {
			continue
		}
		if err := appendCSV(filepath.Join(dir, name+".csv"), table); err != nil {
			return err
		}
	}
	return nil
}

func appendCSV(path string, table domain.ExportTable) error {
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open export file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(table.Columns); err != nil {
			return fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}

	w.Flush()
	return w.Error()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
