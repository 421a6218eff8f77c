package dataprocessing

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// AnalyzeCSV inspects raw upload bytes and infers cadence, hierarchy
// shape, and suggested forecast defaults before any validation runs.
func AnalyzeCSV(data []byte) (*domain.AnalysisSummary, error) {
	if len(data) == 0 {
		return nil, errors.NewEmptyInputError("uploaded file is empty")
	}
	t, err := dataset.ReadCSVFrom(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewParseFailureError("unable to read CSV file")
	}
	return AnalyzeTable(t)
}

// AnalyzeTable runs the smart-defaults analysis over a parsed upload.
func AnalyzeTable(t *dataset.Table) (*domain.AnalysisSummary, error) {
	if t.Len() == 0 {
		return nil, errors.NewEmptyInputError("uploaded file has no rows")
	}

	for i := range t.Columns {
		t.Columns[i] = strings.ToLower(strings.TrimSpace(t.Columns[i]))
	}

	dateCol := ""
	for _, col := range t.Columns {
		if strings.Contains(col, "date") {
			dateCol = col
			break
		}
	}
	if dateCol == "" {
		return nil, errors.NewMissingColumnError(config.ColumnDate)
	}

	var dates []time.Time
	keep := make([]bool, t.Len())
	for i := range t.Rows {
		if d, ok := dataset.ParseDate(t.Cell(i, dateCol)); ok {
			dates = append(dates, d)
			keep[i] = true
		}
	}
	if len(dates) == 0 {
		return nil, errors.NewDateParseError("date column could not be parsed, please check the format")
	}
	parsed := t.Filter(func(row int) bool { return keep[row] })
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	numericCols := parsed.NumericColumns()
	targetCol := ""
	for _, col := range numericCols {
		if strings.Contains(col, "sale") || strings.Contains(col, "revenue") ||
			strings.Contains(col, "amount") || strings.Contains(col, "gmv") {
			targetCol = col
			break
		}
	}
	if targetCol == "" && len(numericCols) > 0 {
		targetCol = numericCols[0]
	}

	hierarchy := "single-restaurant"
	for _, col := range t.Columns {
		if strings.Contains(col, "store") || strings.Contains(col, "city") || strings.Contains(col, "location") {
			hierarchy = "multi-location"
			break
		}
	}

	// Cadence comes from the modal gap between consecutive observations,
	// duplicates included, floored at one day.
	var deltas []int
	for i := 1; i < len(dates); i++ {
		deltas = append(deltas, int(dates[i].Sub(dates[i-1]).Hours()/24))
	}
	gap := 1
	if len(deltas) > 0 {
		gap = modalGap(deltas)
	}
	if gap < 1 {
		gap = 1
	}
	frequency := domain.GrainDaily
	switch {
	case gap <= 1:
		frequency = domain.GrainDaily
	case gap <= 7:
		frequency = domain.GrainWeekly
	default:
		frequency = domain.GrainMonthly
	}

	suggested := domain.SuggestedConfig{
		ForecastHorizonDays: 30,
		LeadTimeDays:        7,
		Granularity:         frequency,
		Hierarchy:           hierarchy,
		Country:             "India",
	}
	if frequency == domain.GrainDaily {
		suggested.ForecastHorizonDays = 14
		suggested.LeadTimeDays = 2
	}

	rows := parsed.Len()
	return &domain.AnalysisSummary{
		Columns:         t.Columns,
		DateColumn:      dateCol,
		TargetColumn:    targetCol,
		StartDate:       dates[0].Format(config.DateFormat),
		EndDate:         dates[len(dates)-1].Format(config.DateFormat),
		Frequency:       frequency,
		Hierarchy:       hierarchy,
		Rows:            rows,
		Notes:           fmt.Sprintf("Detected %d rows with %s cadence for a %s setup.", rows, frequency, hierarchy),
		SuggestedConfig: suggested,
	}, nil
}
