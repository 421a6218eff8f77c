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

// Validator turns a raw upload into the validated dataset: canonical
// columns, parseable dates and quantities, one row per (series, date),
// persisted to the validated file.
type Validator struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewValidator creates a validator writing through the given path layout.
func NewValidator(logger *slog.Logger, paths *config.Paths) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger, paths: paths}
}

// Validate standardizes, cleans, deduplicates, and persists an uploaded
// table. The input table is not mutated. Rows whose date or sales
// quantity cannot be parsed are dropped; duplicate (series_id, date)
// pairs keep their first occurrence after a stable sort.
func (v *Validator) Validate(ctx context.Context, t *dataset.Table) (*dataset.Table, *domain.ValidationSummary, error) {
	if t == nil || t.Len() == 0 {
		return nil, nil, errors.NewEmptyInputError("uploaded CSV has no rows to validate")
	}

	rowsBefore := t.Len()
	work := t.Copy()
	for i := range work.Columns {
		work.Columns[i] = strings.TrimSpace(work.Columns[i])
	}
	renameMap := StandardizeColumns(work)

	if !work.HasColumn(config.ColumnDate) {
		return nil, nil, errors.NewMissingColumnError(config.ColumnDate)
	}
	if !work.HasColumn(config.ColumnSalesQty) {
		return nil, nil, errors.NewMissingColumnError(config.ColumnSalesQty)
	}

	if !work.HasColumn(config.ColumnSeriesID) {
		work.AddColumn(config.ColumnSeriesID, config.SingleSeriesID)
	}
	for i := range work.Rows {
		series := strings.TrimSpace(work.Cell(i, config.ColumnSeriesID))
		if series == "" {
			series = config.SingleSeriesID
		}
		work.SetCell(i, config.ColumnSeriesID, series)
	}

	type keptRow struct {
		series string
		date   time.Time
		index  int
	}
	var kept []keptRow
	for i := range work.Rows {
		date, dateOK := dataset.ParseDate(work.Cell(i, config.ColumnDate))
		qty, qtyOK := dataset.ParseFloat(work.Cell(i, config.ColumnSalesQty))
		if !dateOK || !qtyOK {
			continue
		}
		work.SetCell(i, config.ColumnDate, date.Format(config.DateFormat))
		work.SetCell(i, config.ColumnSalesQty, dataset.FormatFloat(qty))
		kept = append(kept, keptRow{series: work.Cell(i, config.ColumnSeriesID), date: date, index: i})
	}

	if len(kept) == 0 {
		return nil, nil, errors.NewParseFailureError("no rows survived date and quantity parsing")
	}

	sort.SliceStable(kept, func(a, b int) bool {
		if kept[a].series != kept[b].series {
			return kept[a].series < kept[b].series
		}
		return kept[a].date.Before(kept[b].date)
	})

	beforeDedup := len(kept)
	out := dataset.New(work.Columns...)
	seen := make(map[string]bool, len(kept))
	var dates []time.Time
	for _, row := range kept {
		key := row.series + "\x00" + row.date.Format(config.DateFormat)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.AppendRow(work.Rows[row.index]...)
		dates = append(dates, row.date)
	}
	duplicatesRemoved := beforeDedup - out.Len()

	missingCounts := make(map[string]int)
	for _, col := range []string{config.ColumnPrice, config.ColumnInventoryLevel, config.ColumnSalesQty, config.ColumnSeriesID} {
		if !out.HasColumn(col) {
			continue
		}
		count := 0
		for i := range out.Rows {
			if strings.TrimSpace(out.Cell(i, col)) == "" {
				count++
			}
		}
		missingCounts[col] = count
	}

	granularity := DetectGranularity(dates)

	if err := dataset.WriteCSV(v.paths.ValidatedFile, out); err != nil {
		return nil, nil, errors.NewStorageError("failed to persist validated dataset", err)
	}

	summary := &domain.ValidationSummary{
		RowsBefore:          rowsBefore,
		RowsAfter:           out.Len(),
		DuplicatesRemoved:   duplicatesRemoved,
		MissingCounts:       missingCounts,
		DetectedGranularity: granularity,
		OutputFile:          v.paths.RelativeToBase(v.paths.ValidatedFile),
	}

	v.logger.InfoContext(ctx, "validation complete",
		"rows_before", summary.RowsBefore,
		"rows_after", summary.RowsAfter,
		"duplicates_removed", summary.DuplicatesRemoved,
		"granularity", string(summary.DetectedGranularity),
		"renamed_columns", len(renameMap),
	)
	return out, summary, nil
}

// DetectGranularity infers the dataset cadence from the modal gap between
// unique observation dates. No measurable gap means daily.
func DetectGranularity(dates []time.Time) domain.Grain {
	unique := uniqueSortedDates(dates)
	if len(unique) < 2 {
		return domain.GrainDaily
	}
	deltas := make([]int, 0, len(unique)-1)
	for i := 1; i < len(unique); i++ {
		deltas = append(deltas, int(unique[i].Sub(unique[i-1]).Hours()/24))
	}
	gap := modalGap(deltas)
	switch {
	case gap <= 1:
		return domain.GrainDaily
	case gap <= 7:
		return domain.GrainWeekly
	default:
		return domain.GrainMonthly
	}
}

func uniqueSortedDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	unique := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			unique = append(unique, d)
		}
	}
	sort.Slice(unique, func(a, b int) bool { return unique[a].Before(unique[b]) })
	return unique
}

// modalGap picks the most frequent delta, preferring the smallest on ties.
func modalGap(deltas []int) int {
	counts := make(map[int]int, len(deltas))
	for _, d := range deltas {
		counts[d]++
	}
	best, bestCount := 0, -1
	for gap, count := range counts {
		if count > bestCount || (count == bestCount && gap < best) {
			best, bestCount = gap, count
		}
	}
	return best
}
