package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/config"
	apierrors "forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

const dailyGrainCSV = "series_id,date,sales_qty,price\n" +
	"s1,2024-01-01,1,2\n" +
	"s1,2024-01-02,2,4\n" +
	"s1,2024-01-03,3,6\n"

func newEDAService(t *testing.T) (*EDAService, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEDAService(logger, paths), paths
}

func writeGrainFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSummary(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.DailyFile, dailyGrainCSV)

	summary, err := svc.Summary(context.Background(), domain.GrainDaily)
	require.NoError(t, err)

	stats, ok := summary.Basic["sales_qty"]
	require.True(t, ok)
	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 2.0, stats.Mean, 1e-9)

	assert.Equal(t, 0, summary.Missing["sales_qty"])

	require.NotNil(t, summary.Outliers)
	assert.Equal(t, "sales_qty", summary.Outliers.Column)
	assert.Equal(t, 0, summary.Outliers.Outliers)

	require.Len(t, summary.Coverage, 1)
	assert.Equal(t, "s1", summary.Coverage[0].SeriesID)
	assert.Equal(t, 3, summary.Coverage[0].Observations)

	assert.NotEmpty(t, summary.Trend)
}

func TestSummaryFallsBackToValidated(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.ValidatedFile, dailyGrainCSV)

	summary, err := svc.Summary(context.Background(), domain.GrainWeekly)
	require.NoError(t, err)
	assert.Len(t, summary.Coverage, 1)
}

func TestSummaryDatasetNotFound(t *testing.T) {
	svc, _ := newEDAService(t)

	_, err := svc.Summary(context.Background(), domain.GrainDaily)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeDatasetNotFound))
}

func TestCorrelation(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.DailyFile, dailyGrainCSV)

	matrix, err := svc.Correlation(context.Background(), domain.GrainDaily)
	require.NoError(t, err)

	cell := matrix["sales_qty"]["price"]
	require.NotNil(t, cell)
	assert.InDelta(t, 1.0, *cell, 1e-9)
}

func TestTimeseries(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.DailyFile, dailyGrainCSV)

	points, err := svc.Timeseries(context.Background(), domain.GrainDaily)
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.InDelta(t, 1.0, points[0].Value, 1e-9)
	assert.InDelta(t, 2.0, points[2].RollingMean, 1e-9)
}

func TestDistribution(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.DailyFile, dailyGrainCSV)

	dist, err := svc.Distribution(context.Background(), domain.GrainDaily, "sales_qty", 2)
	require.NoError(t, err)

	require.Len(t, dist.Counts, 2)
	assert.Equal(t, 3, dist.Counts[0]+dist.Counts[1])
	assert.Len(t, dist.Bins, 3)
}

func TestDataHead(t *testing.T) {
	svc, paths := newEDAService(t)
	writeGrainFile(t, paths.DailyFile, dailyGrainCSV)

	records, err := svc.DataHead(context.Background(), domain.GrainDaily, 2)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "s1", records[0]["series_id"])
	assert.Equal(t, float64(1), records[0]["sales_qty"])
}
