package dataprocessing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	apierrors "forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func TestValidateCleansAndPersists(t *testing.T) {
	paths := testPaths(t)
	v := NewValidator(nil, paths)

	tbl := dataset.New("Order Date", "Store", "Units", "price")
	tbl.AppendRow("2024-01-02", "store_b", "5", "2.5")
	tbl.AppendRow("2024-01-01", "store_a", "10", "")
	tbl.AppendRow("2024-01-01", "store_a", "99", "1.0") // duplicate (series, date)
	tbl.AppendRow("not-a-date", "store_a", "4", "1.0")  // unparseable date
	tbl.AppendRow("2024-01-03", "store_a", "oops", "1") // unparseable quantity

	out, summary, err := v.Validate(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.RowsBefore)
	assert.Equal(t, 2, summary.RowsAfter)
	assert.Equal(t, 1, summary.DuplicatesRemoved)
	assert.Equal(t, domain.GrainDaily, summary.DetectedGranularity)
	assert.Equal(t, 1, summary.MissingCounts[config.ColumnPrice])
	assert.Equal(t, 0, summary.MissingCounts[config.ColumnSalesQty])

	// Sorted by (series_id, date), duplicates keep the first occurrence.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "store_a", out.Cell(0, config.ColumnSeriesID))
	assert.Equal(t, "2024-01-01", out.Cell(0, config.ColumnDate))
	assert.Equal(t, "10", out.Cell(0, config.ColumnSalesQty))
	assert.Equal(t, "store_b", out.Cell(1, config.ColumnSeriesID))

	persisted, err := dataset.ReadCSV(paths.ValidatedFile)
	require.NoError(t, err)
	assert.Equal(t, out.Rows, persisted.Rows)
}

func TestValidateFillsSingleSeries(t *testing.T) {
	paths := testPaths(t)
	v := NewValidator(nil, paths)

	tbl := dataset.New("date", "sales_qty")
	tbl.AppendRow("2024-01-01", "10")

	out, _, err := v.Validate(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, config.SingleSeriesID, out.Cell(0, config.ColumnSeriesID))
}

func TestValidateAllRowsUnparseable(t *testing.T) {
	paths := testPaths(t)
	v := NewValidator(nil, paths)

	tbl := dataset.New("date", "sales_qty")
	tbl.AppendRow("garbage", "10")
	tbl.AppendRow("2024-01-01", "oops")

	_, _, err := v.Validate(context.Background(), tbl)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeParseFailure))
	assert.False(t, config.FileExists(paths.ValidatedFile), "no output may be written on failure")
}

func TestValidateIsIdempotent(t *testing.T) {
	paths := testPaths(t)
	v := NewValidator(nil, paths)

	tbl := dataset.New("date", "series_id", "sales_qty", "price")
	tbl.AppendRow("2024-01-02", "store_b", "5", "2.5")
	tbl.AppendRow("2024-01-01", "store_a", "10", "")
	tbl.AppendRow("2024-01-01", "store_a", "99", "1.0")

	first, _, err := v.Validate(context.Background(), tbl)
	require.NoError(t, err)

	second, summary, err := v.Validate(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.DuplicatesRemoved)
	assert.Equal(t, first.Len(), summary.RowsAfter)
	assert.Equal(t, first.Rows, second.Rows)
}

func TestValidateErrors(t *testing.T) {
	paths := testPaths(t)
	v := NewValidator(nil, paths)

	_, _, err := v.Validate(context.Background(), dataset.New("date", "sales_qty"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeEmptyInput))

	noDate := dataset.New("sales_qty")
	noDate.AppendRow("10")
	_, _, err = v.Validate(context.Background(), noDate)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeMissingColumn))

	noQty := dataset.New("date")
	noQty.AppendRow("2024-01-01")
	_, _, err = v.Validate(context.Background(), noQty)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeMissingColumn))
}

func TestDetectGranularity(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	tests := []struct {
		name  string
		dates []time.Time
		want  domain.Grain
	}{
		{"single date", []time.Time{day(0)}, domain.GrainDaily},
		{"daily", []time.Time{day(0), day(1), day(2)}, domain.GrainDaily},
		{"weekly", []time.Time{day(0), day(7), day(14)}, domain.GrainWeekly},
		{"monthly", []time.Time{day(0), day(30), day(60)}, domain.GrainMonthly},
		{"duplicate dates collapse", []time.Time{day(0), day(0), day(1)}, domain.GrainDaily},
		{"modal gap wins", []time.Time{day(0), day(7), day(14), day(15)}, domain.GrainWeekly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectGranularity(tt.dates))
		})
	}
}
