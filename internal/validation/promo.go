package validation

import (
	"bytes"
	"os"
	"strings"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/dataset"
	"forecastwb/pkg/contracts/domain"
)

// RequiredPromoColumns must all appear in a promotional calendar upload.
var RequiredPromoColumns = []string{"name", "start_date", "end_date", "type"}

// PromoRow is one calendar entry keyed by column name, cells trimmed.
type PromoRow map[string]string

// InvalidPromoRow pairs a rejected row with the checks it failed. Issues
// holds column names plus the sentinel values date_format and date_order.
type InvalidPromoRow struct {
	Row    PromoRow `json:"row"`
	Issues []string `json:"issues"`
}

// PromoRowsFromBytes parses calendar CSV bytes and reports which required
// columns the header lacks.
func PromoRowsFromBytes(data []byte) ([]PromoRow, []string, error) {
	t, err := dataset.ReadCSVFrom(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	var missing []string
	for _, col := range RequiredPromoColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return tableToPromoRows(t), missing, nil
}

// ReadPromoCalendar loads a stored calendar file. A missing file reads as
// an empty calendar.
func ReadPromoCalendar(path string) []PromoRow {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	t, err := dataset.ReadCSV(path)
	if err != nil {
		return nil
	}
	return tableToPromoRows(t)
}

func tableToPromoRows(t *dataset.Table) []PromoRow {
	rows := make([]PromoRow, 0, t.Len())
	for i := range t.Rows {
		row := make(PromoRow, len(t.Columns))
		for _, col := range t.Columns {
			row[col] = strings.TrimSpace(t.Cell(i, col))
		}
		rows = append(rows, row)
	}
	return rows
}

// ValidatePromoRows returns a preview of the first five rows and every
// row failing a required-column, date-format, or date-order check.
func ValidatePromoRows(rows []PromoRow) ([]PromoRow, []InvalidPromoRow) {
	preview := rows
	if len(preview) > 5 {
		preview = preview[:5]
	}

	var invalid []InvalidPromoRow
	for _, row := range rows {
		var issues []string
		for _, col := range RequiredPromoColumns {
			if row[col] == "" {
				issues = append(issues, col)
			}
		}
		start, startErr := time.Parse(config.DateFormat, row["start_date"])
		end, endErr := time.Parse(config.DateFormat, row["end_date"])
		if startErr != nil || endErr != nil {
			issues = append(issues, "date_format")
		} else if start.After(end) {
			issues = append(issues, "date_order")
		}
		if len(issues) > 0 {
			invalid = append(invalid, InvalidPromoRow{Row: row, Issues: issues})
		}
	}
	return preview, invalid
}

// AlignmentWarning checks that every promo duration is a whole number of
// periods for the selected grain (7 days weekly, 28 days monthly). An
// empty result means the calendar aligns; daily cadence always aligns.
func AlignmentWarning(rows []PromoRow, grain domain.Grain) string {
	if len(rows) == 0 {
		return "Promo calendar file could not be read for guardrail validation."
	}
	var multiplier int
	switch grain {
	case domain.GrainDaily:
		return ""
	case domain.GrainWeekly:
		multiplier = 7
	case domain.GrainMonthly:
		multiplier = 28
	default:
		return ""
	}

	for _, row := range rows {
		start, startErr := time.Parse(config.DateFormat, row["start_date"])
		end, endErr := time.Parse(config.DateFormat, row["end_date"])
		if startErr != nil || endErr != nil {
			return "Promo calendar contains dates with invalid ISO format."
		}
		days := int(end.Sub(start).Hours()/24) + 1
		if days%multiplier != 0 {
			return "Promo durations do not align with the selected granularity."
		}
	}
	return ""
}
