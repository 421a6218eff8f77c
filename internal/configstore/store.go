package configstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"forecastwb/internal/config"
	"forecastwb/internal/errors"
	"forecastwb/internal/validation"
)

const configFilePrefix = "project_config_"

// Store is the versioned configuration store. Every save produces a new
// timestamped YAML file under the environment's directory; nothing is
// overwritten.
type Store struct {
	logger   *slog.Logger
	paths    *config.Paths
	validate *validator.Validate
}

// NewStore creates a store rooted at the configured configs directory.
func NewStore(logger *slog.Logger, paths *config.Paths) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger,
		paths:    paths,
		validate: validator.New(),
	}
}

func (s *Store) resolveEnv(env string) (string, error) {
	if !config.AllowedEnvs[env] {
		return "", errors.NewValidationError(fmt.Sprintf("unknown environment %q", env))
	}
	return s.paths.EnvDir(env), nil
}

// latestConfigPath returns the newest config file in an environment
// directory. Filenames embed a UTC timestamp, so lexical order is
// chronological.
func (s *Store) latestConfigPath(envDir string) (string, bool) {
	entries, err := os.ReadDir(envDir)
	if err != nil {
		return "", false
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, configFilePrefix) && strings.HasSuffix(name, ".yaml") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return filepath.Join(envDir, names[len(names)-1]), true
}

// Load returns the latest stored config for an environment.
func (s *Store) Load(env string) (*LoadedConfig, error) {
	envDir, err := s.resolveEnv(env)
	if err != nil {
		return nil, err
	}
	path, ok := s.latestConfigPath(envDir)
	if !ok {
		return nil, errors.NewNotFoundError("config for environment " + env)
	}
	cfg, err := s.readConfig(path)
	if err != nil {
		return nil, err
	}
	return &LoadedConfig{Path: s.paths.RelativeToBase(path), Config: *cfg}, nil
}

// Save validates and persists a new config version, appends it to the
// shared history, and records the action in the audit log. Guardrail
// warnings are returned but never block the save; core rule violations
// do.
func (s *Store) Save(ctx context.Context, env string, role Role, req *SaveConfigRequest) (*SaveResult, error) {
	envDir, err := s.resolveEnv(env)
	if err != nil {
		return nil, err
	}
	if err := EnsureMinRole(role, RoleEditor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidationError("invalid config payload: " + err.Error())
	}

	violations := ValidateCoreRules(
		req.Forecast.HorizonDays,
		req.Forecast.LeadTimeDays,
		req.Forecast.Granularity,
		req.Forecast.PromoCalendarPath,
	)
	if len(violations) > 0 {
		return nil, errors.NewValidationError(strings.Join(violations, " ")).
			WithContext("violations", violations)
	}

	promoPath := s.ResolvePromoPath(req.Forecast.PromoCalendarPath)
	if !config.FileExists(promoPath) {
		return nil, errors.NewValidationError("promo calendar file not found")
	}

	warnings := s.GuardrailSummary(&req.Forecast)

	now := time.Now().UTC()
	versionTag := req.VersionTag
	if versionTag == "" {
		versionTag = "draft"
	}
	configVersion := req.ConfigVersion
	if configVersion == "" {
		configVersion = "1.0"
	}

	stored := StoredConfig{
		ConfigVersion: configVersion,
		VersionTag:    versionTag,
		Meta: ConfigMeta{
			Name:      req.Meta.Name,
			CreatedBy: req.Meta.CreatedBy,
			CreatedAt: now.Format(time.RFC3339),
			Notes:     req.Meta.Notes,
		},
		Forecast: req.Forecast,
	}

	filename := fmt.Sprintf("%s%s_%s.yaml", configFilePrefix, Slugify(req.Meta.Name), now.Format("20060102T150405Z"))
	path := filepath.Join(envDir, filename)
	if err := s.writeYAML(path, &stored); err != nil {
		return nil, err
	}

	entry := HistoryEntry{
		Env:        env,
		Path:       s.paths.RelativeToBase(path),
		CreatedAt:  now.Format(time.RFC3339),
		CreatedBy:  req.Meta.CreatedBy,
		VersionTag: versionTag,
		Warnings:   warnings,
		Name:       req.Meta.Name,
	}
	history, err := s.appendHistory(entry)
	if err != nil {
		return nil, err
	}
	s.appendAudit(ctx, "saved config "+filename, role, env)

	s.logger.InfoContext(ctx, "config version saved",
		"env", env,
		"path", entry.Path,
		"version_tag", versionTag,
		"warnings", len(warnings),
	)
	return &SaveResult{
		Path:        entry.Path,
		Warnings:    warnings,
		HistorySize: len(history),
		Config:      stored,
	}, nil
}

// Versions returns the last limit history entries, optionally filtered by
// environment.
func (s *Store) Versions(env string, limit int) []HistoryEntry {
	history := s.loadHistory()
	if env != "" {
		filtered := history[:0:0]
		for _, entry := range history {
			if entry.Env == env {
				filtered = append(filtered, entry)
			}
		}
		history = filtered
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	if history == nil {
		history = []HistoryEntry{}
	}
	return history
}

// Download returns a stored config as raw YAML plus its parsed form. An
// empty relPath downloads the latest version. Paths are confined to the
// environment's directory.
func (s *Store) Download(env, relPath string) (*DownloadedConfig, error) {
	envDir, err := s.resolveEnv(env)
	if err != nil {
		return nil, err
	}

	var path string
	if relPath != "" {
		candidate := filepath.Clean(filepath.Join(s.paths.ConfigsDir, relPath))
		if !strings.HasPrefix(candidate, filepath.Clean(envDir)+string(filepath.Separator)) {
			return nil, errors.NewValidationError("invalid config path")
		}
		path = candidate
	} else {
		latest, ok := s.latestConfigPath(envDir)
		if !ok {
			return nil, errors.NewNotFoundError("config file")
		}
		path = latest
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewNotFoundError("config file")
	}
	var cfg StoredConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.NewConfigError("stored config is not valid YAML", err)
	}
	return &DownloadedConfig{
		Path:   s.paths.RelativeToBase(path),
		YAML:   string(raw),
		Config: cfg,
	}, nil
}

// ResolvePromoPath resolves a promo calendar reference: absolute or
// directly reachable paths win, otherwise it is taken relative to the
// data directory.
func (s *Store) ResolvePromoPath(promoPath string) string {
	if promoPath == "" {
		return ""
	}
	if config.FileExists(promoPath) {
		return promoPath
	}
	return filepath.Join(s.paths.DataDir, promoPath)
}

// GuardrailSummary gathers the advisory warnings for a forecast
// configuration: calendar alignment, grain data availability, monthly
// lag, and promo calendar integrity.
func (s *Store) GuardrailSummary(forecast *ForecastDetail) []string {
	promoPath := s.ResolvePromoPath(forecast.PromoCalendarPath)
	rows := validation.ReadPromoCalendar(promoPath)
	alignment := validation.AlignmentWarning(rows, forecast.Granularity)
	dataExists := config.FileExists(s.paths.GrainFile(string(forecast.Granularity)))

	warnings := BuildGuardrailWarnings(forecast.Granularity, alignment, dataExists)
	if len(rows) == 0 {
		warnings = append(warnings, "Promo calendar file missing or empty; unable to verify promotions.")
	}
	if _, invalid := validation.ValidatePromoRows(rows); len(invalid) > 0 {
		warnings = append(warnings,
			fmt.Sprintf("Promo calendar contains %d row(s) with missing columns or invalid dates.", len(invalid)))
	}
	return warnings
}

func (s *Store) readConfig(path string) (*StoredConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read stored config", err)
	}
	var cfg StoredConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.NewConfigError("stored config is not valid YAML", err)
	}
	return &cfg, nil
}

func (s *Store) writeYAML(path string, cfg *StoredConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewStorageError("failed to create config directory", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewStorageError("failed to encode config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewStorageError("failed to write config", err)
	}
	return nil
}

func (s *Store) loadHistory() []HistoryEntry {
	data, err := os.ReadFile(s.paths.HistoryFile)
	if err != nil {
		return nil
	}
	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil
	}
	return history
}

func (s *Store) appendHistory(entry HistoryEntry) ([]HistoryEntry, error) {
	history := append(s.loadHistory(), entry)
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return nil, errors.NewStorageError("failed to encode config history", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.paths.HistoryFile), 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create config directory", err)
	}
	if err := os.WriteFile(s.paths.HistoryFile, data, 0o644); err != nil {
		return nil, errors.NewStorageError("failed to write config history", err)
	}
	return history, nil
}

// appendAudit writes one audit line. Audit failures are logged, not
// propagated: the underlying action already succeeded.
func (s *Store) appendAudit(ctx context.Context, action string, role Role, env string) {
	line := fmt.Sprintf("%s | env=%s | role=%s | %s\n",
		time.Now().UTC().Format(time.RFC3339), env, role, action)
	if err := os.MkdirAll(filepath.Dir(s.paths.AuditLogFile), 0o755); err != nil {
		s.logger.WarnContext(ctx, "failed to create audit log directory", "error", err)
		return
	}
	f, err := os.OpenFile(s.paths.AuditLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to open audit log", "error", err)
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		s.logger.WarnContext(ctx, "failed to append audit log", "error", err)
	}
}
