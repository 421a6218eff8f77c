package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for the persisted file layout. The
// validated/aggregate file locations are a contract with the exploratory
// analysis engine and any future caller.
type Paths struct {
	BaseDir      string
	DataDir      string
	UploadsDir   string
	ValidatedDir string
	ConfigsDir   string
	LogsDir      string

	// Latest-upload pointer maintained by the upload store
	LatestUploadFile string

	// Pipeline stage outputs, each fully overwritten by its producing stage
	ValidatedFile  string
	ContinuousFile string
	DailyFile      string
	WeeklyFile     string
	MonthlyFile    string

	// Config store files
	HistoryFile      string
	AuditLogFile     string
	HierarchyMapFile string
}

// NewPaths resolves the full layout under baseDir. An empty baseDir resolves
// to the current working directory.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		baseDir = wd
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := filepath.Join(abs, "data")
	uploadsDir := filepath.Join(dataDir, "uploads")
	validatedDir := filepath.Join(dataDir, "validated")
	configsDir := filepath.Join(abs, "configs")

	return &Paths{
		BaseDir:      abs,
		DataDir:      dataDir,
		UploadsDir:   uploadsDir,
		ValidatedDir: validatedDir,
		ConfigsDir:   configsDir,
		LogsDir:      filepath.Join(abs, "logs"),

		LatestUploadFile: filepath.Join(uploadsDir, "latest_upload.json"),

		ValidatedFile:  filepath.Join(validatedDir, "validated_raw_data.csv"),
		ContinuousFile: filepath.Join(validatedDir, "continuous_data.csv"),
		DailyFile:      filepath.Join(validatedDir, "daily_data.csv"),
		WeeklyFile:     filepath.Join(validatedDir, "weekly_data.csv"),
		MonthlyFile:    filepath.Join(validatedDir, "monthly_data.csv"),

		HistoryFile:      filepath.Join(configsDir, "config_history.json"),
		AuditLogFile:     filepath.Join(configsDir, "audit.log"),
		HierarchyMapFile: filepath.Join(configsDir, "hierarchy_mapping.json"),
	}, nil
}

// GrainFile returns the persisted file backing the given grain name, before
// any fallback is applied.
func (p *Paths) GrainFile(grain string) string {
	switch grain {
	case "weekly":
		return p.WeeklyFile
	case "monthly":
		return p.MonthlyFile
	default:
		return p.DailyFile
	}
}

// EnvDir returns the per-environment config directory (dev/prod).
func (p *Paths) EnvDir(env string) string {
	return filepath.Join(p.ConfigsDir, env)
}

// EnsureDirectories creates every directory of the layout.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.UploadsDir,
		p.ValidatedDir,
		p.ConfigsDir,
		p.EnvDir("dev"),
		p.EnvDir("prod"),
		p.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RelativeToBase returns path relative to the base directory when possible,
// for display in stage summaries.
func (p *Paths) RelativeToBase(path string) string {
	rel, err := filepath.Rel(p.BaseDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// LogPathResolution logs the resolved layout at startup for debugging.
func (p *Paths) LogPathResolution() {
	slog.Info("resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("uploads_dir", p.UploadsDir),
		slog.String("validated_dir", p.ValidatedDir),
		slog.String("configs_dir", p.ConfigsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists at the given path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
