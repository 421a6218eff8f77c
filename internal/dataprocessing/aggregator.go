package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// Aggregator rolls the continuous dataset up to weekly and monthly
// frequency and persists one file per grain.
type Aggregator struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewAggregator creates an aggregator writing through the given path layout.
func NewAggregator(logger *slog.Logger, paths *config.Paths) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger, paths: paths}
}

// Aggregate tags every row with its Monday-anchored week start and its
// month start, persists the tagged table as the daily grain, and groups
// by (series_id, period) for the weekly and monthly grains: sales_qty is
// summed, price averaged over non-null cells when present. The period
// column is renamed to date in the aggregated outputs.
func (a *Aggregator) Aggregate(ctx context.Context, t *dataset.Table) (*domain.AggregationSummary, error) {
	if t == nil || t.Len() == 0 {
		return nil, errors.NewEmptyInputError("continuous dataset is empty, cannot aggregate")
	}
	if !t.HasColumn(config.ColumnSeriesID) {
		return nil, errors.NewMissingColumnError(config.ColumnSeriesID)
	}
	if !t.HasColumn(config.ColumnDate) {
		return nil, errors.NewMissingColumnError(config.ColumnDate)
	}
	if !t.HasColumn(config.ColumnSalesQty) {
		return nil, errors.NewMissingColumnError(config.ColumnSalesQty)
	}

	daily := t.Copy()
	daily.AddColumn("week", "")
	daily.AddColumn("month", "")
	parsedAny := false
	for i := range daily.Rows {
		date, ok := dataset.ParseDate(daily.Cell(i, config.ColumnDate))
		if !ok {
			continue
		}
		parsedAny = true
		daily.SetCell(i, "week", WeekStart(date).Format(config.DateFormat))
		daily.SetCell(i, "month", MonthStart(date).Format(config.DateFormat))
	}
	if !parsedAny {
		return nil, errors.NewDateParseError("date column could not be parsed for aggregation")
	}

	hasPrice := t.HasColumn(config.ColumnPrice)
	weekly := a.groupByPeriod(daily, "week", hasPrice)
	monthly := a.groupByPeriod(daily, "month", hasPrice)

	if err := dataset.WriteCSV(a.paths.DailyFile, daily); err != nil {
		return nil, errors.NewStorageError("failed to persist daily dataset", err)
	}
	if err := dataset.WriteCSV(a.paths.WeeklyFile, weekly); err != nil {
		return nil, errors.NewStorageError("failed to persist weekly dataset", err)
	}
	if err := dataset.WriteCSV(a.paths.MonthlyFile, monthly); err != nil {
		return nil, errors.NewStorageError("failed to persist monthly dataset", err)
	}

	summary := &domain.AggregationSummary{
		DailyRows:   daily.Len(),
		WeeklyRows:  weekly.Len(),
		MonthlyRows: monthly.Len(),
		OutputFiles: map[string]string{
			"daily":   a.paths.RelativeToBase(a.paths.DailyFile),
			"weekly":  a.paths.RelativeToBase(a.paths.WeeklyFile),
			"monthly": a.paths.RelativeToBase(a.paths.MonthlyFile),
		},
	}
	a.logger.InfoContext(ctx, "aggregation complete",
		"daily_rows", summary.DailyRows,
		"weekly_rows", summary.WeeklyRows,
		"monthly_rows", summary.MonthlyRows,
	)
	return summary, nil
}

// groupByPeriod aggregates by (series_id, period column), emitting rows in
// sorted key order with the period column renamed to date.
func (a *Aggregator) groupByPeriod(t *dataset.Table, periodCol string, hasPrice bool) *dataset.Table {
	type bucket struct {
		qtySum     float64
		priceSum   float64
		priceCount int
	}
	buckets := make(map[string]*bucket)
	var keys []string

	for i := range t.Rows {
		period := t.Cell(i, periodCol)
		if period == "" {
			continue
		}
		key := t.Cell(i, config.ColumnSeriesID) + "\x00" + period
		b, exists := buckets[key]
		if !exists {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		if qty, ok := dataset.ParseFloat(t.Cell(i, config.ColumnSalesQty)); ok {
			b.qtySum += qty
		}
		if hasPrice {
			if price, ok := dataset.ParseFloat(t.Cell(i, config.ColumnPrice)); ok {
				b.priceSum += price
				b.priceCount++
			}
		}
	}
	sort.Strings(keys)

	columns := []string{config.ColumnSeriesID, config.ColumnDate, config.ColumnSalesQty}
	if hasPrice {
		columns = append(columns, config.ColumnPrice)
	}
	out := dataset.New(columns...)
	for _, key := range keys {
		b := buckets[key]
		series, period, _ := splitKey(key)
		cells := []string{series, period, dataset.FormatFloat(b.qtySum)}
		if hasPrice {
			price := ""
			if b.priceCount > 0 {
				price = dataset.FormatFloat(b.priceSum / float64(b.priceCount))
			}
			cells = append(cells, price)
		}
		out.AppendRow(cells...)
	}
	return out
}

func splitKey(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}

// WeekStart returns the Monday on or before the given date.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of the date's month.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
}
