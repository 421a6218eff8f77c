package services

import (
	"context"
	"log/slog"
	"time"

	"forecastwb/internal/config"
)

// HealthStatus is the liveness report served by the health endpoints.
type HealthStatus struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Datasets      map[string]bool   `json:"datasets"`
	Timestamp     string            `json:"timestamp"`
}

// HealthService reports process health and which pipeline outputs exist.
type HealthService struct {
	logger  *slog.Logger
	paths   *config.Paths
	version string
	started time.Time
}

// NewHealthService creates a health reporter for the given build version.
func NewHealthService(logger *slog.Logger, paths *config.Paths, version string) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		logger:  logger,
		paths:   paths,
		version: version,
		started: time.Now(),
	}
}

// Health reports liveness plus the presence of each persisted dataset.
func (s *HealthService) Health(ctx context.Context) *HealthStatus {
	return &HealthStatus{
		Status:        "ok",
		Service:       "forecast-backend",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Datasets: map[string]bool{
			"validated":  config.FileExists(s.paths.ValidatedFile),
			"continuous": config.FileExists(s.paths.ContinuousFile),
			"daily":      config.FileExists(s.paths.DailyFile),
			"weekly":     config.FileExists(s.paths.WeeklyFile),
			"monthly":    config.FileExists(s.paths.MonthlyFile),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
