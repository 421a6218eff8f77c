package domain

// Exploratory-analysis result types. All of these are read-only views over
// a persisted grain file; none of them mutate pipeline state.

// ColumnStats holds descriptive statistics for a single numeric column.
type ColumnStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// OutlierInfo reports Tukey-fence bounds and the out-of-bound count for a
// single column. Bounds are nil when the column has no non-null values.
type OutlierInfo struct {
	Column     string   `json:"column"`
	Outliers   int      `json:"outliers"`
	LowerBound *float64 `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
}

// TimeseriesPoint is one resampled period with rolling statistics.
type TimeseriesPoint struct {
	Date        string  `json:"date"`
	Value       float64 `json:"value"`
	RollingMean float64 `json:"rolling_mean"`
	RollingStd  float64 `json:"rolling_std"`
	RollingVar  float64 `json:"rolling_var"`
}

// SeriesCoverage describes the observed date range of one series.
type SeriesCoverage struct {
	SeriesID     string `json:"series_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Observations int    `json:"observations"`
	SpanDays     int    `json:"span_days"`
}

// TrendPoint is a mean value grouped by calendar position (day of week,
// ISO week number, or month).
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Distribution is a histogram of one column. Bins holds len(Counts)+1 edges.
type Distribution struct {
	Bins   []float64 `json:"bins"`
	Counts []int     `json:"counts"`
}
