package configstore

import (
	"forecastwb/pkg/contracts/domain"
)

// ForecastMeta identifies who created a configuration and why.
type ForecastMeta struct {
	Name      string `json:"name" yaml:"name" validate:"required,max=120"`
	CreatedBy string `json:"created_by" yaml:"created_by" validate:"required,max=120"`
	Notes     string `json:"notes" yaml:"notes" validate:"max=500"`
}

// ForecastDetail holds the forecast parameters a configuration pins down.
type ForecastDetail struct {
	HorizonDays       int          `json:"horizon_days" yaml:"horizon_days" validate:"min=1"`
	LeadTimeDays      int          `json:"lead_time_days" yaml:"lead_time_days" validate:"min=0"`
	Granularity       domain.Grain `json:"granularity" yaml:"granularity" validate:"required"`
	Hierarchy         string       `json:"hierarchy" yaml:"hierarchy" validate:"required,max=120"`
	Country           string       `json:"country" yaml:"country" validate:"required,max=120"`
	PromoCalendarPath string       `json:"promo_calendar_path" yaml:"promo_calendar_path"`
}

// SaveConfigRequest is the payload for persisting a new config version.
type SaveConfigRequest struct {
	ConfigVersion string         `json:"config_version"`
	Meta          ForecastMeta   `json:"meta" validate:"required"`
	Forecast      ForecastDetail `json:"forecast" validate:"required"`
	VersionTag    string         `json:"version_tag" validate:"max=60"`
}

// ConfigMeta is the metadata block of a stored document, with the server
// side creation timestamp filled in.
type ConfigMeta struct {
	Name      string `json:"name" yaml:"name"`
	CreatedBy string `json:"created_by" yaml:"created_by"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Notes     string `json:"notes" yaml:"notes"`
}

// StoredConfig is the YAML document persisted per version.
type StoredConfig struct {
	ConfigVersion string         `json:"config_version" yaml:"config_version"`
	VersionTag    string         `json:"version_tag" yaml:"version_tag"`
	Meta          ConfigMeta     `json:"meta" yaml:"meta"`
	Forecast      ForecastDetail `json:"forecast" yaml:"forecast"`
}

// HistoryEntry is one line of the shared version history.
type HistoryEntry struct {
	Env        string   `json:"env"`
	Path       string   `json:"path"`
	CreatedAt  string   `json:"created_at"`
	CreatedBy  string   `json:"created_by"`
	VersionTag string   `json:"version_tag"`
	Warnings   []string `json:"warnings"`
	Name       string   `json:"name"`
}

// SaveResult reports a successful save.
type SaveResult struct {
	Path        string       `json:"path"`
	Warnings    []string     `json:"warnings"`
	HistorySize int          `json:"history_size"`
	Config      StoredConfig `json:"config"`
}

// LoadedConfig pairs the latest stored document with its location.
type LoadedConfig struct {
	Path   string       `json:"path"`
	Config StoredConfig `json:"config"`
}

// DownloadedConfig carries both the raw YAML text and its parsed form.
type DownloadedConfig struct {
	Path   string       `json:"path"`
	YAML   string       `json:"yaml"`
	Config StoredConfig `json:"config"`
}

// Defaults are the suggested starting values served to new projects.
var Defaults = map[string]any{
	"forecast_horizon_days": 30,
	"lead_time_days":        7,
	"granularity":           "weekly",
	"hierarchy":             "restaurant > city > country",
	"country":               "India",
	"config_version":        "1.0",
}
