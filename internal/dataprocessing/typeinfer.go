package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"ibkrcli/pkg/contracts/domain"
)

// DateFormats is the ordered priority list of date layouts tried during
// type inference. Order is the contract: the first layout under which at
// least one cell parses wins, numeric coercion having been tried first.
var DateFormats = []string{
	"2006-01-02",          // 2024-01-30
	"2006-01-02 15:04:05", // 2024-01-30 15:30:00
	"02Jan06",             // 30JAN24
	"01/02/2006",          // 01/30/2024
}

// CellKind identifies the inferred type of a column.
type CellKind int

const (
	KindText CellKind = iota
	KindNumeric
	KindDate
)

// Cell is one coerced value. Valid is false for cells that failed the
// column's adopted conversion (the equivalent of a null).
type Cell struct {
	Kind  CellKind
	Valid bool
	Raw   string
	Num   float64
	Date  time.Time
}

// TypedColumn describes a column after inference. Format holds the adopted
// date layout for date columns.
type TypedColumn struct {
	Name   string
	Kind   CellKind
	Format string
}

// TypedTable is a table whose columns have been coerced to their inferred
// types.
type TypedTable struct {
	Columns []TypedColumn
	Rows    [][]Cell
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t TypedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// InferTypes coerces every column of a raw table to numeric or date values
// where possible. Per column: numeric conversion is adopted if at least one
// cell converts (failures become null cells); otherwise the date layouts
// are tried in priority order; a column matching neither stays text.
func InferTypes(t domain.Table) TypedTable {
	typed := TypedTable{
		Columns: make([]TypedColumn, len(t.Columns)),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i := range typed.Rows {
		typed.Rows[i] = make([]Cell, len(t.Columns))
	}

	for col, name := range t.Columns {
		raw := make([]string, len(t.Rows))
		for i, row := range t.Rows {
			if col < len(row) {
				raw[i] = row[col]
			}
		}
		typed.Columns[col] = inferColumn(name, raw, typed.Rows, col)
	}
	return typed
}

// inferColumn picks the conversion for one column and fills its cells.
func inferColumn(name string, raw []string, rows [][]Cell, col int) TypedColumn {
	if fillNumeric(raw, rows, col) {
		return TypedColumn{Name: name, Kind: KindNumeric}
	}
	for _, layout := range DateFormats {
		if fillDates(raw, rows, col, layout) {
			return TypedColumn{Name: name, Kind: KindDate, Format: layout}
		}
	}
	for i, v := range raw {
		rows[i][col] = Cell{Kind: KindText, Valid: true, Raw: v}
	}
	return TypedColumn{Name: name, Kind: KindText}
}

func fillNumeric(raw []string, rows [][]Cell, col int) bool {
	converted := false
	for i, v := range raw {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			rows[i][col] = Cell{Kind: KindNumeric, Raw: v}
			continue
		}
		rows[i][col] = Cell{Kind: KindNumeric, Valid: true, Raw: v, Num: n}
		converted = true
	}
	return converted
}

func fillDates(raw []string, rows [][]Cell, col int, layout string) bool {
	converted := false
	for i, v := range raw {
		d, err := time.Parse(layout, strings.TrimSpace(v))
		if err != nil {
			rows[i][col] = Cell{Kind: KindDate, Raw: v}
			continue
		}
		rows[i][col] = Cell{Kind: KindDate, Valid: true, Raw: v, Date: d}
		converted = true
	}
	return converted
}
