package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ibkrcli/pkg/contracts/domain"
)

// WriteWorkbook writes all non-empty tables of a result to a single xlsx
// workbook, one sheet per table.
func WriteWorkbook(path string, result *domain.Result) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory %s: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	wrote := false
	for _, name := range domain.ExportTableNames {
		table, ok := result.Tables[name]
		if !ok || table.IsEmpty() {
			continue
		}
		if err := writeSheet(f, table); err != nil {
			return err
		}
		wrote = true
	}
	if !wrote {
		return fmt.Errorf("nothing to export: all tables are empty")
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, table domain.ExportTable) error {
	// Sheet names are capped at 31 characters by the xlsx format.
	sheet := table.Name
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", rowNum, sheet, err)
	}
	return nil
}
