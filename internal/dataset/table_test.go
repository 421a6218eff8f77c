package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCellAccess(t *testing.T) {
	tbl := New("date", "sales_qty")
	tbl.AppendRow("2024-01-01", "10")
	tbl.AppendRow("2024-01-02")

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "10", tbl.Cell(0, "sales_qty"))
	assert.Equal(t, "", tbl.Cell(1, "sales_qty"), "short row reads as null")
	assert.Equal(t, "", tbl.Cell(0, "missing"))
	assert.Equal(t, "", tbl.Cell(5, "date"))

	tbl.SetCell(1, "sales_qty", "20")
	assert.Equal(t, "20", tbl.Cell(1, "sales_qty"))
}

func TestTableAddColumn(t *testing.T) {
	tbl := New("date")
	tbl.AppendRow("2024-01-01")
	tbl.AddColumn("series_id", "single_series")

	assert.Equal(t, []string{"date", "series_id"}, tbl.Columns)
	assert.Equal(t, "single_series", tbl.Cell(0, "series_id"))

	// Adding an existing column must not duplicate it.
	tbl.AddColumn("series_id", "other")
	assert.Equal(t, []string{"date", "series_id"}, tbl.Columns)
	assert.Equal(t, "single_series", tbl.Cell(0, "series_id"))
}

func TestTableDropColumn(t *testing.T) {
	tbl := New("date", "notes", "sales_qty")
	tbl.AppendRow("2024-01-01", "promo day", "10")

	tbl.DropColumn("notes")
	assert.Equal(t, []string{"date", "sales_qty"}, tbl.Columns)
	assert.Equal(t, "10", tbl.Cell(0, "sales_qty"))

	tbl.DropColumn("unknown")
	assert.Equal(t, []string{"date", "sales_qty"}, tbl.Columns)
}

func TestTableRenameColumns(t *testing.T) {
	tbl := New("Date", "Units Sold")
	tbl.RenameColumns(map[string]string{"Date": "date", "Units Sold": "sales_qty"})
	assert.Equal(t, []string{"date", "sales_qty"}, tbl.Columns)
}

func TestTableCopyIsDeep(t *testing.T) {
	tbl := New("date")
	tbl.AppendRow("2024-01-01")

	cp := tbl.Copy()
	cp.SetCell(0, "date", "2024-12-31")
	cp.Columns[0] = "changed"

	assert.Equal(t, "2024-01-01", tbl.Cell(0, "date"))
	assert.Equal(t, "date", tbl.Columns[0])
}

func TestTableFilter(t *testing.T) {
	tbl := New("sales_qty")
	tbl.AppendRow("1")
	tbl.AppendRow("2")
	tbl.AppendRow("3")

	out := tbl.Filter(func(row int) bool { return tbl.Cell(row, "sales_qty") != "2" })
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "1", out.Cell(0, "sales_qty"))
	assert.Equal(t, "3", out.Cell(1, "sales_qty"))
	assert.Equal(t, 3, tbl.Len(), "source table unchanged")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want time.Time
		ok   bool
	}{
		{"iso", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"iso with time", "2024-03-05 13:45:00", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"slash", "2024/03/05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"us style", "03/05/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"compact", "20240305", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"padded", "  2024-03-05  ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	v, ok := ParseFloat("1,234.5")
	require.True(t, ok)
	assert.Equal(t, 1234.5, v)

	_, ok = ParseFloat("")
	assert.False(t, ok)

	_, ok = ParseFloat("n/a")
	assert.False(t, ok)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "3", FormatFloat(3))
	assert.Equal(t, "3.25", FormatFloat(3.25))
}

func TestIsNumericColumn(t *testing.T) {
	tbl := New("qty", "mixed", "empty", "labels")
	tbl.AppendRow("1", "1", "", "a")
	tbl.AppendRow("2.5", "x", "", "b")

	assert.True(t, tbl.IsNumericColumn("qty"))
	assert.False(t, tbl.IsNumericColumn("mixed"), "non-numeric non-null cell disqualifies")
	assert.False(t, tbl.IsNumericColumn("empty"), "all-null column is not numeric")
	assert.False(t, tbl.IsNumericColumn("labels"))
	assert.False(t, tbl.IsNumericColumn("missing"))

	assert.Equal(t, []string{"qty"}, tbl.NumericColumns())
}

func TestColumnFloats(t *testing.T) {
	tbl := New("qty")
	tbl.AppendRow("1")
	tbl.AppendRow("")
	tbl.AppendRow("2")

	assert.Equal(t, []float64{1, 2}, tbl.ColumnFloats("qty"))
	assert.Nil(t, tbl.ColumnFloats("missing"))
}
