package configstore

import (
	"regexp"
	"strings"

	"forecastwb/pkg/contracts/domain"
)

// ValidateCoreRules applies the non-negotiable config checks and returns
// one message per violation.
func ValidateCoreRules(horizonDays, leadTimeDays int, grain domain.Grain, promoCalendarPath string) []string {
	var violations []string
	if horizonDays < leadTimeDays {
		violations = append(violations, "Forecast horizon must be greater than or equal to lead time.")
	}
	if !grain.Valid() {
		violations = append(violations, "Granularity must be one of: daily, weekly, monthly.")
	}
	if promoCalendarPath == "" {
		violations = append(violations, "Promo calendar file is required.")
	}
	return violations
}

// BuildGuardrailWarnings collects the advisory warnings attached to a
// saved config. Unlike core rules these never block the save.
func BuildGuardrailWarnings(grain domain.Grain, calendarAlignmentWarning string, dataFrequencyExists bool) []string {
	var warnings []string
	if calendarAlignmentWarning != "" {
		warnings = append(warnings, calendarAlignmentWarning)
	}
	if !dataFrequencyExists {
		warnings = append(warnings, "Historical data has not been ingested for the selected granularity.")
	}
	if grain == domain.GrainMonthly {
		warnings = append(warnings, "Monthly cadence relies on aggregated data that may lag by 2 weeks.")
	}
	return warnings
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify reduces a config name to a filesystem-safe slug, falling back
// to "config" when nothing survives.
func Slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "config"
	}
	return slug
}
