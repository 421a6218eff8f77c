package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// preferredStatColumns narrows descriptive statistics to the business
// metrics when any of them are present; otherwise every numeric column is
// summarized.
var preferredStatColumns = []string{
	config.ColumnSalesQty,
	config.ColumnSalesValue,
	config.ColumnPrice,
	"inventory_qty",
	"cogs_per_line",
}

// BasicSummary computes descriptive statistics per numeric column. The
// standard deviation is the population one.
func BasicSummary(t *dataset.Table) map[string]domain.ColumnStats {
	summary := make(map[string]domain.ColumnStats)
	for _, col := range statColumns(t) {
		vals := t.ColumnFloats(col)
		if len(vals) == 0 {
			continue
		}
		summary[col] = domain.ColumnStats{
			Count:  len(vals),
			Mean:   mean(vals),
			Median: median(vals),
			Std:    populationStd(vals),
			Min:    minOf(vals),
			Max:    maxOf(vals),
		}
	}
	return summary
}

// MissingSummary counts null cells per column.
func MissingSummary(t *dataset.Table) map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for _, col := range t.Columns {
		count := 0
		for i := range t.Rows {
			if strings.TrimSpace(t.Cell(i, col)) == "" {
				count++
			}
		}
		counts[col] = count
	}
	return counts
}

// ComputeOutliers reports the Tukey fence (1.5 IQR) bounds for a column
// and how many values fall outside them.
func ComputeOutliers(t *dataset.Table, column string) (*domain.OutlierInfo, error) {
	if !t.HasColumn(column) {
		return nil, errors.NewMissingColumnError(column)
	}
	vals := t.ColumnFloats(column)
	if len(vals) == 0 {
		return &domain.OutlierInfo{Column: column}, nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	outliers := 0
	for _, v := range vals {
		if v < lower || v > upper {
			outliers++
		}
	}
	return &domain.OutlierInfo{
		Column:     column,
		Outliers:   outliers,
		LowerBound: &lower,
		UpperBound: &upper,
	}, nil
}

// CorrelationSummary computes the pairwise Pearson correlation matrix of
// all numeric columns over pairwise-complete rows, rounded to three
// decimals. Undefined correlations (constant or near-empty columns) are
// nil.
func CorrelationSummary(t *dataset.Table) map[string]map[string]*float64 {
	cols := t.NumericColumns()
	matrix := make(map[string]map[string]*float64, len(cols))
	for _, a := range cols {
		matrix[a] = make(map[string]*float64, len(cols))
		for _, b := range cols {
			xs, ys := pairwiseComplete(t, a, b)
			r := pearson(xs, ys)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				matrix[a][b] = nil
				continue
			}
			rounded := math.Round(r*1000) / 1000
			matrix[a][b] = &rounded
		}
	}
	return matrix
}

// TimeseriesSummary resamples the value column to the requested grain,
// filling empty periods with zero, and attaches rolling mean, population
// standard deviation, and variance over the grain's window.
func TimeseriesSummary(t *dataset.Table, grain domain.Grain) ([]domain.TimeseriesPoint, error) {
	if !t.HasColumn(config.ColumnDate) {
		return nil, errors.NewMissingColumnError(config.ColumnDate)
	}
	valueCol, err := valueColumn(t)
	if err != nil {
		return nil, err
	}

	sums := make(map[time.Time]float64)
	var minBucket, maxBucket time.Time
	seen := false
	for i := range t.Rows {
		date, ok := dataset.ParseDate(t.Cell(i, config.ColumnDate))
		if !ok {
			continue
		}
		bucket := resampleBucket(date, grain)
		if v, ok := dataset.ParseFloat(t.Cell(i, valueCol)); ok {
			sums[bucket] += v
		} else {
			sums[bucket] += 0
		}
		if !seen || bucket.Before(minBucket) {
			minBucket = bucket
		}
		if !seen || bucket.After(maxBucket) {
			maxBucket = bucket
		}
		seen = true
	}
	if !seen {
		return []domain.TimeseriesPoint{}, nil
	}

	var values []float64
	var buckets []time.Time
	for b := minBucket; !b.After(maxBucket); b = nextBucket(b, grain) {
		buckets = append(buckets, b)
		values = append(values, sums[b])
	}

	window := grain.RollingWindow()
	points := make([]domain.TimeseriesPoint, len(buckets))
	for i := range buckets {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		slice := values[start : i+1]
		variance := populationVariance(slice)
		points[i] = domain.TimeseriesPoint{
			Date:        buckets[i].Format(config.DateFormat),
			Value:       values[i],
			RollingMean: mean(slice),
			RollingStd:  math.Sqrt(variance),
			RollingVar:  variance,
		}
	}
	return points, nil
}

// SeriesCoverageSummary reports per-series observation spans. Missing
// identifier or date columns yield an empty result rather than an error.
func SeriesCoverageSummary(t *dataset.Table) []domain.SeriesCoverage {
	if !t.HasColumn(config.ColumnSeriesID) || !t.HasColumn(config.ColumnDate) {
		return nil
	}
	type span struct {
		min, max time.Time
		dates    map[time.Time]bool
	}
	spans := make(map[string]*span)
	var order []string
	for i := range t.Rows {
		series := strings.TrimSpace(t.Cell(i, config.ColumnSeriesID))
		if series == "" {
			continue
		}
		date, ok := dataset.ParseDate(t.Cell(i, config.ColumnDate))
		if !ok {
			continue
		}
		s, exists := spans[series]
		if !exists {
			s = &span{min: date, max: date, dates: make(map[time.Time]bool)}
			spans[series] = s
			order = append(order, series)
		}
		if date.Before(s.min) {
			s.min = date
		}
		if date.After(s.max) {
			s.max = date
		}
		s.dates[date] = true
	}
	sort.Strings(order)

	coverage := make([]domain.SeriesCoverage, 0, len(order))
	for _, series := range order {
		s := spans[series]
		coverage = append(coverage, domain.SeriesCoverage{
			SeriesID:     series,
			StartDate:    s.min.Format(config.DateFormat),
			EndDate:      s.max.Format(config.DateFormat),
			Observations: len(s.dates),
			SpanDays:     int(s.max.Sub(s.min).Hours()/24) + 1,
		})
	}
	return coverage
}

// TrendCurves averages the value column by calendar position: day of
// week for daily, zero-padded ISO week for weekly, three-letter month
// otherwise. Points come back in calendar order.
func TrendCurves(t *dataset.Table, grain domain.Grain) ([]domain.TrendPoint, error) {
	if !t.HasColumn(config.ColumnDate) {
		return nil, nil
	}
	valueCol, err := valueColumn(t)
	if err != nil {
		return nil, err
	}

	type group struct {
		label string
		sum   float64
		count int
	}
	groups := make(map[int]*group)
	seen := false
	for i := range t.Rows {
		date, ok := dataset.ParseDate(t.Cell(i, config.ColumnDate))
		if !ok {
			continue
		}
		seen = true
		order, label := trendKey(date, grain)
		g, exists := groups[order]
		if !exists {
			g = &group{label: label}
			groups[order] = g
		}
		if v, ok := dataset.ParseFloat(t.Cell(i, valueCol)); ok {
			g.sum += v
			g.count++
		}
	}
	if !seen {
		return nil, nil
	}

	orders := make([]int, 0, len(groups))
	for order := range groups {
		orders = append(orders, order)
	}
	sort.Ints(orders)

	points := make([]domain.TrendPoint, 0, len(orders))
	for _, order := range orders {
		g := groups[order]
		value := 0.0
		if g.count > 0 {
			value = g.sum / float64(g.count)
		}
		points = append(points, domain.TrendPoint{Label: g.label, Value: value})
	}
	return points, nil
}

// DistributionSummary builds an equal-width histogram of a column. Bins
// holds len(Counts)+1 edges; the final bin is closed on both sides.
func DistributionSummary(t *dataset.Table, column string, bins int) (*domain.Distribution, error) {
	if !t.HasColumn(column) {
		return nil, errors.NewMissingColumnError(column)
	}
	vals := t.ColumnFloats(column)
	if len(vals) == 0 {
		return &domain.Distribution{Bins: []float64{}, Counts: []int{}}, nil
	}
	lo, hi := minOf(vals), maxOf(vals)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	counts := make([]int, bins)
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return &domain.Distribution{Bins: edges, Counts: counts}, nil
}

// DataHead returns the first rows as JSON-friendly records: numeric
// columns as floats, nulls as nil, everything else as strings.
func DataHead(t *dataset.Table, limit int) []map[string]any {
	if limit < 1 {
		limit = 1
	}
	if limit > t.Len() {
		limit = t.Len()
	}
	numeric := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		numeric[col] = t.IsNumericColumn(col)
	}
	records := make([]map[string]any, 0, limit)
	for i := 0; i < limit; i++ {
		record := make(map[string]any, len(t.Columns))
		for _, col := range t.Columns {
			cell := t.Cell(i, col)
			if strings.TrimSpace(cell) == "" {
				record[col] = nil
				continue
			}
			if numeric[col] {
				if v, ok := dataset.ParseFloat(cell); ok {
					record[col] = v
					continue
				}
			}
			record[col] = cell
		}
		records = append(records, record)
	}
	return records
}

func statColumns(t *dataset.Table) []string {
	numeric := t.NumericColumns()
	isNumeric := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		isNumeric[col] = true
	}
	var preferred []string
	for _, col := range preferredStatColumns {
		if isNumeric[col] {
			preferred = append(preferred, col)
		}
	}
	if len(preferred) > 0 {
		return preferred
	}
	return numeric
}

// valueColumn picks the column timeseries and trend analyses aggregate:
// sales_qty when present, otherwise the first numeric column.
func valueColumn(t *dataset.Table) (string, error) {
	if t.HasColumn(config.ColumnSalesQty) {
		return config.ColumnSalesQty, nil
	}
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return "", errors.NewValidationError("no numeric columns found for timeseries aggregation")
	}
	return numeric[0], nil
}

// resampleBucket maps a date to its period label: the date itself for
// daily, the Monday ending its week for weekly, the month start otherwise.
func resampleBucket(d time.Time, grain domain.Grain) time.Time {
	switch grain {
	case domain.GrainWeekly:
		return d.AddDate(0, 0, (8-int(d.Weekday()))%7)
	case domain.GrainMonthly:
		return MonthStart(d)
	default:
		return d
	}
}

func nextBucket(d time.Time, grain domain.Grain) time.Time {
	switch grain {
	case domain.GrainWeekly:
		return d.AddDate(0, 0, 7)
	case domain.GrainMonthly:
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 1)
	}
}

func trendKey(d time.Time, grain domain.Grain) (int, string) {
	switch grain {
	case domain.GrainWeekly:
		_, week := d.ISOWeek()
		return week, fmt.Sprintf("%02d", week)
	case domain.GrainMonthly:
		return int(d.Month()), d.Month().String()[:3]
	default:
		order := (int(d.Weekday()) + 6) % 7
		return order, d.Weekday().String()
	}
}

func pairwiseComplete(t *dataset.Table, a, b string) ([]float64, []float64) {
	ai, bi := t.ColumnIndex(a), t.ColumnIndex(b)
	var xs, ys []float64
	for _, row := range t.Rows {
		if ai >= len(row) || bi >= len(row) {
			continue
		}
		x, okX := dataset.ParseFloat(row[ai])
		y, okY := dataset.ParseFloat(row[bi])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func populationVariance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}

func populationStd(vals []float64) float64 {
	return math.Sqrt(populationVariance(vals))
}

// percentile computes the q-th quantile of a sorted slice using linear
// interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	denom := math.Sqrt(vx * vy)
	if denom == 0 {
		return math.NaN()
	}
	return cov / denom
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
