package domain

// Stage summary records are the contract between the pipeline core and the
// HTTP layer. They carry counts and output locations only, no execution
// semantics.

// ValidationSummary reports the outcome of the validate stage.
type ValidationSummary struct {
	RowsBefore          int            `json:"rows_before"`
	RowsAfter           int            `json:"rows_after"`
	DuplicatesRemoved   int            `json:"duplicates_removed"`
	MissingCounts       map[string]int `json:"missing_counts"`
	DetectedGranularity Grain          `json:"detected_granularity"`
	OutputFile          string         `json:"output_file"`
}

// TimelineSummary reports the outcome of the continuous-timeline stage.
type TimelineSummary struct {
	Rows               int    `json:"rows"`
	MissingDatesFilled int    `json:"missing_dates_filled"`
	OutputFile         string `json:"output_file"`
}

// AggregationSummary reports the outcome of the aggregation stage.
type AggregationSummary struct {
	DailyRows   int               `json:"daily_rows"`
	WeeklyRows  int               `json:"weekly_rows"`
	MonthlyRows int               `json:"monthly_rows"`
	OutputFiles map[string]string `json:"output_files"`
}

// UploadRecord points at the most recently ingested raw file. It is
// persisted as JSON next to the uploads so the validate stage can resolve
// an input when no explicit filename is given.
type UploadRecord struct {
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// AnalysisSummary is the smart-defaults report produced when a raw CSV is
// first uploaded, before any validation runs.
type AnalysisSummary struct {
	Columns         []string        `json:"columns"`
	DateColumn      string          `json:"date_column"`
	TargetColumn    string          `json:"target_column,omitempty"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Frequency       Grain           `json:"frequency"`
	Hierarchy       string          `json:"hierarchy"`
	Rows            int             `json:"rows"`
	Notes           string          `json:"notes"`
	SuggestedConfig SuggestedConfig `json:"suggested_config"`
}

// SuggestedConfig holds forecast defaults inferred from an uploaded file.
type SuggestedConfig struct {
	ForecastHorizonDays int    `json:"forecast_horizon_days"`
	LeadTimeDays        int    `json:"lead_time_days"`
	Granularity         Grain  `json:"granularity"`
	Hierarchy           string `json:"hierarchy"`
	Country             string `json:"country"`
}
