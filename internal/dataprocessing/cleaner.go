package dataprocessing

import (
	"strings"

	"ibkrcli/pkg/contracts/domain"
)

// headerColumn is the scaffold column the statement export prefixes to
// every section, tagging rows as "Header" or "Data".
const headerColumn = "Header"

// CleanSection strips report scaffolding from a section table: everything
// from the last repeated header row onward, and any row containing a
// "Total" or "Subtotal" cell.
//
// Cleaning is fail-open: a table without the Header column is returned
// unchanged rather than failing the run.
func CleanSection(t domain.Table) domain.Table {
	headerIdx := t.ColumnIndex(headerColumn)
	if headerIdx < 0 {
		return t
	}

	rows := t.Rows
	if last := lastHeaderRow(rows, headerIdx); last >= 0 {
		rows = rows[:last]
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if containsTotal(row) {
			continue
		}
		kept = append(kept, row)
	}

	return domain.Table{Name: t.Name, Columns: t.Columns, Rows: kept}
}

// lastHeaderRow returns the index of the last row whose scaffold cell reads
// "Header", or -1 when the section has no repeated header block.
func lastHeaderRow(rows [][]string, headerIdx int) int {
	last := -1
	for i, row := range rows {
		if headerIdx < len(row) && row[headerIdx] == headerColumn {
			last = i
		}
	}
	return last
}

func containsTotal(row []string) bool {
	for _, cell := range row {
		lower := strings.ToLower(cell)
		if strings.Contains(lower, "total") || strings.Contains(lower, "subtotal") {
			return true
		}
	}
	return false
}

// DropColumn removes the named column from a table, leaving the table
// unchanged when the column is absent.
func DropColumn(t domain.Table, name string) domain.Table {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return t
	}

	columns := make([]string, 0, len(t.Columns)-1)
	columns = append(columns, t.Columns[:idx]...)
	columns = append(columns, t.Columns[idx+1:]...)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			rows[i] = row
			continue
		}
		cells := make([]string, 0, len(row)-1)
		cells = append(cells, row[:idx]...)
		cells = append(cells, row[idx+1:]...)
		rows[i] = cells
	}

	return domain.Table{Name: t.Name, Columns: columns, Rows: rows}
}

// NormalizeColumns canonicalizes column names: lowercase with spaces
// replaced by underscores.
func NormalizeColumns(t domain.Table) domain.Table {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return domain.Table{Name: t.Name, Columns: columns, Rows: t.Rows}
}
