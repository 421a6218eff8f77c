package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Table is an ordered, header-addressed table of string cells. It is the
// in-memory representation every pipeline stage transforms; an empty cell
// is the null value. Cell values stay CSV-faithful strings so a table can
// round-trip through its persisted file without loss.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, column name). Missing columns and short
// rows read as the empty (null) cell.
func (t *Table) Cell(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// SetCell writes a value at (row, column name), extending short rows.
func (t *Table) SetCell(row int, column, value string) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	for len(t.Rows[row]) < len(t.Columns) {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][idx] = value
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a new column filled with value for every existing row.
// Adding an existing column is a no-op.
func (t *Table) AddColumn(name, value string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		for len(t.Rows[i]) < len(t.Columns) {
			t.Rows[i] = append(t.Rows[i], value)
		}
	}
}

// DropColumn removes a column and its cells. Unknown columns are ignored.
func (t *Table) DropColumn(name string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		if idx < len(row) {
			t.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
}

// RenameColumns applies a rename mapping, leaving unmapped columns as-is.
func (t *Table) RenameColumns(mapping map[string]string) {
	for i, col := range t.Columns {
		if renamed, ok := mapping[col]; ok {
			t.Columns[i] = renamed
		}
	}
}

// Copy returns a deep copy of the table.
func (t *Table) Copy() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Filter returns a new table containing the rows keep reports true for.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for i := range t.Rows {
		if keep(i) {
			out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
		}
	}
	return out
}

// dateLayouts are tried in order when parsing a date cell. ISO-8601 first,
// matching the persisted file contract.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"20060102",
}

// ParseDate parses a date cell against the supported layouts.
func ParseDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

// ParseFloat parses a numeric cell, tolerating thousands separators.
func ParseFloat(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a float the way aggregate cells are persisted:
// integers without a decimal point, everything else with minimal digits.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsNumericColumn reports whether a column holds at least one parseable
// number and no non-numeric non-null cells.
func (t *Table) IsNumericColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	seen := false
	for _, row := range t.Rows {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			continue
		}
		if _, ok := ParseFloat(row[idx]); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// NumericColumns returns all columns holding numeric data, in table order.
func (t *Table) NumericColumns() []string {
	var cols []string
	for _, col := range t.Columns {
		if t.IsNumericColumn(col) {
			cols = append(cols, col)
		}
	}
	return cols
}

// ColumnFloats collects the non-null parseable values of a column, in row
// order.
func (t *Table) ColumnFloats(name string) []float64 {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	var vals []float64
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		if v, ok := ParseFloat(row[idx]); ok {
			vals = append(vals, v)
		}
	}
	return vals
}
