package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"forecastwb/internal/errors"
)

// allowedUploadExtensions are the dataset formats the ingest endpoints
// accept.
var allowedUploadExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// UploadValidator gates raw uploads on name, extension, and size before
// any bytes are parsed.
type UploadValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewUploadValidator creates a validator enforcing the given size cap.
func NewUploadValidator(logger *slog.Logger, maxBytes int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{logger: logger, maxBytes: maxBytes}
}

// Validate rejects empty payloads, unsupported extensions, oversized
// files, and names attempting path traversal.
func (v *UploadValidator) Validate(filename string, size int64) error {
	if size == 0 {
		return errors.NewEmptyInputError("uploaded file is empty")
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		return errors.NewValidationError(fmt.Sprintf("uploaded file exceeds the %d byte limit", v.maxBytes)).
			WithContext("size", size)
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		return errors.NewValidationError("upload filename is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return errors.NewValidationError("upload filename must not contain path separators")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedUploadExtensions[ext] {
		return errors.NewValidationError(fmt.Sprintf("unsupported upload format %q, expected .csv or .xlsx", ext))
	}
	return nil
}

// SanitizeFilename reduces an upload name to its base component with a
// csv fallback when empty.
func SanitizeFilename(name, fallback string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fallback
	}
	return base
}
