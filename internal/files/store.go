package files

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"forecastwb/internal/config"
	"forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

// UploadStore persists raw uploads under timestamped names and tracks
// which upload a pipeline run should ingest by default.
type UploadStore struct {
	logger *slog.Logger
	paths  *config.Paths
}

// NewUploadStore creates a store rooted at the configured uploads
// directory.
func NewUploadStore(logger *slog.Logger, paths *config.Paths) *UploadStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadStore{logger: logger, paths: paths}
}

// Save writes upload bytes to a timestamped file named
// <UTC timestamp>_<label><ext> and records it as the latest upload. The
// extension comes from the original filename, defaulting to .csv.
func (s *UploadStore) Save(ctx context.Context, content []byte, originalName, label string) (string, error) {
	if err := os.MkdirAll(s.paths.UploadsDir, 0o755); err != nil {
		return "", errors.NewStorageError("failed to create uploads directory", err)
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".csv"
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	destination := filepath.Join(s.paths.UploadsDir, fmt.Sprintf("%s_%s%s", timestamp, label, ext))

	if err := os.WriteFile(destination, content, 0o644); err != nil {
		return "", errors.NewStorageError("failed to persist upload", err)
	}
	if err := s.RecordLatest(destination); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "upload persisted",
		"path", s.paths.RelativeToBase(destination),
		"bytes", len(content),
		"label", label,
	)
	return destination, nil
}

// RecordLatest points the latest-upload marker at the given file.
func (s *UploadStore) RecordLatest(path string) error {
	record := domain.UploadRecord{
		Path:      s.paths.RelativeToBase(path),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode upload record", err)
	}
	if err := os.WriteFile(s.paths.LatestUploadFile, data, 0o644); err != nil {
		return errors.NewStorageError("failed to write upload record", err)
	}
	return nil
}

// LatestRecord reads the latest-upload marker. A missing or corrupt
// marker reads as absent.
func (s *UploadStore) LatestRecord() (*domain.UploadRecord, bool) {
	data, err := os.ReadFile(s.paths.LatestUploadFile)
	if err != nil {
		return nil, false
	}
	var record domain.UploadRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &record, true
}

// Resolve picks the file a pipeline run should ingest. An explicit
// filename wins (relative names resolve against the uploads directory);
// otherwise the latest-upload marker is followed when its target still
// exists; otherwise the newest CSV in the uploads directory is used.
func (s *UploadStore) Resolve(filename string) (string, error) {
	if filename != "" {
		candidate := filename
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(s.paths.UploadsDir, filename)
		}
		if !config.FileExists(candidate) {
			return "", errors.NewNotFoundError(fmt.Sprintf("file %q in uploads directory", filename))
		}
		return candidate, nil
	}

	if record, ok := s.LatestRecord(); ok && record.Path != "" {
		candidate := record.Path
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(s.paths.BaseDir, candidate)
		}
		if config.FileExists(candidate) {
			return candidate, nil
		}
	}

	newest, err := NewestCSV(s.paths.UploadsDir)
	if err != nil {
		return "", errors.NewStorageError("failed to scan uploads directory", err)
	}
	if newest == "" {
		return "", errors.NewNoUploadError("no uploaded CSV files were found")
	}
	return newest, nil
}
