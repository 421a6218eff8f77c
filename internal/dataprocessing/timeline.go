package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// TimelineBuilder fills each series out to a gap-free daily calendar
// between its first and last observation and persists the result as the
// continuous dataset.
type TimelineBuilder struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewTimelineBuilder creates a builder writing through the given path layout.
func NewTimelineBuilder(logger *slog.Logger, paths *config.Paths) *TimelineBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimelineBuilder{logger: logger, paths: paths}
}

// Build left-joins every series onto its full daily date range. Dates
// absent from the input become rows carrying only series_id and date;
// rows whose date cannot be parsed are discarded. MissingDatesFilled
// counts output rows with at least one null cell, so an observed row
// that already had a null contributes once as well.
func (b *TimelineBuilder) Build(ctx context.Context, t *dataset.Table) (*dataset.Table, *domain.TimelineSummary, error) {
	if t == nil || t.Len() == 0 {
		return nil, nil, errors.NewEmptyInputError("validated dataset is empty, cannot build timeline")
	}
	if !t.HasColumn(config.ColumnSeriesID) {
		return nil, nil, errors.NewMissingColumnError(config.ColumnSeriesID)
	}
	if !t.HasColumn(config.ColumnDate) {
		return nil, nil, errors.NewMissingColumnError(config.ColumnDate)
	}

	bySeries := make(map[string]map[time.Time]int)
	var order []string
	parsedAny := false
	for i := range t.Rows {
		date, ok := dataset.ParseDate(t.Cell(i, config.ColumnDate))
		if !ok {
			continue
		}
		parsedAny = true
		series := t.Cell(i, config.ColumnSeriesID)
		if _, exists := bySeries[series]; !exists {
			bySeries[series] = make(map[time.Time]int)
			order = append(order, series)
		}
		if _, exists := bySeries[series][date]; !exists {
			bySeries[series][date] = i
		}
	}
	if !parsedAny {
		return nil, nil, errors.NewDateParseError("date column could not be parsed for timeline construction")
	}
	sort.Strings(order)

	out := dataset.New(t.Columns...)
	missingRows := 0
	for _, series := range order {
		observations := bySeries[series]
		minDate, maxDate := dateBounds(observations)
		for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
			if idx, ok := observations[d]; ok {
				out.AppendRow(t.Rows[idx]...)
				last := out.Len() - 1
				out.SetCell(last, config.ColumnDate, d.Format(config.DateFormat))
				if rowHasNull(out, last) {
					missingRows++
				}
				continue
			}
			out.AppendRow()
			last := out.Len() - 1
			out.SetCell(last, config.ColumnSeriesID, series)
			out.SetCell(last, config.ColumnDate, d.Format(config.DateFormat))
			missingRows++
		}
	}

	if err := dataset.WriteCSV(b.paths.ContinuousFile, out); err != nil {
		return nil, nil, errors.NewStorageError("failed to persist continuous dataset", err)
	}

	summary := &domain.TimelineSummary{
		Rows:               out.Len(),
		MissingDatesFilled: missingRows,
		OutputFile:         b.paths.RelativeToBase(b.paths.ContinuousFile),
	}
	b.logger.InfoContext(ctx, "continuous timeline built",
		"series", len(order),
		"rows", summary.Rows,
		"missing_dates_filled", summary.MissingDatesFilled,
	)
	return out, summary, nil
}

func dateBounds(observations map[time.Time]int) (time.Time, time.Time) {
	var minDate, maxDate time.Time
	first := true
	for d := range observations {
		if first {
			minDate, maxDate = d, d
			first = false
			continue
		}
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate
}

func rowHasNull(t *dataset.Table, row int) bool {
	for _, col := range t.Columns {
		if strings.TrimSpace(t.Cell(row, col)) == "" {
			return true
		}
	}
	return false
}
