package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"forecastwb/internal/errors"
	"forecastwb/internal/validation"
)

// PromoUploadResult reports a stored promotional calendar: where it
// landed, the first rows as a preview, and any rows that failed checks.
type PromoUploadResult struct {
	Path        string                       `json:"path"`
	Preview     []validation.PromoRow        `json:"preview"`
	InvalidRows []validation.InvalidPromoRow `json:"invalid_rows"`
	TotalRows   int                          `json:"total_rows"`
}

// SavePromoCalendar validates and stores an uploaded promo calendar under
// the environment's upload directory. The upload is rejected outright
// when required columns are missing; rows with bad dates are stored but
// reported back.
func (s *Store) SavePromoCalendar(ctx context.Context, env string, role Role, filename string, content []byte) (*PromoUploadResult, error) {
	if _, err := s.resolveEnv(env); err != nil {
		return nil, err
	}
	if err := EnsureMinRole(role, RoleEditor); err != nil {
		return nil, err
	}

	rows, missing, err := validation.PromoRowsFromBytes(content)
	if err != nil {
		return nil, errors.NewParseFailureError("unable to read promo calendar CSV")
	}
	if len(missing) > 0 {
		return nil, errors.NewValidationError("missing columns: " + strings.Join(missing, ", "))
	}
	preview, invalid := validation.ValidatePromoRows(rows)

	safeName := validation.SanitizeFilename(filename, "promo_calendar.csv")
	saveDir := filepath.Join(s.paths.UploadsDir, env)
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create promo upload directory", err)
	}
	savePath := filepath.Join(saveDir,
		fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405Z"), safeName))
	if err := os.WriteFile(savePath, content, 0o644); err != nil {
		return nil, errors.NewStorageError("failed to persist promo calendar", err)
	}

	s.appendAudit(ctx, "uploaded promo calendar "+safeName, role, env)
	s.logger.InfoContext(ctx, "promo calendar stored",
		"env", env,
		"path", s.paths.RelativeToBase(savePath),
		"rows", len(rows),
		"invalid_rows", len(invalid),
	)
	return &PromoUploadResult{
		Path:        s.paths.RelativeToBase(savePath),
		Preview:     preview,
		InvalidRows: invalid,
		TotalRows:   len(rows),
	}, nil
}
