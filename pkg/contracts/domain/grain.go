package domain

import "strings"

// Grain is the level of time aggregation a dataset is persisted and
// queried at.
type Grain string

const (
	GrainDaily   Grain = "daily"
	GrainWeekly  Grain = "weekly"
	GrainMonthly Grain = "monthly"
)

// ParseGrain normalizes a user-supplied grain string. Unknown or empty
// values default to daily, matching the read path fallback.
func ParseGrain(s string) Grain {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(GrainWeekly):
		return GrainWeekly
	case string(GrainMonthly):
		return GrainMonthly
	default:
		return GrainDaily
	}
}

// Valid reports whether the grain is one of the three supported values.
func (g Grain) Valid() bool {
	return g == GrainDaily || g == GrainWeekly || g == GrainMonthly
}

// RollingWindow returns the rolling-statistics window used by the
// timeseries summary for this grain.
func (g Grain) RollingWindow() int {
	switch g {
	case GrainWeekly:
		return 4
	case GrainMonthly:
		return 3
	default:
		return 7
	}
}
