package configstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/config"
	apierrors "forecastwb/internal/errors"
	"forecastwb/pkg/contracts/domain"
)

func newTestStore(t *testing.T) (*Store, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return NewStore(nil, paths), paths
}

func writePromoCalendar(t *testing.T, paths *config.Paths) string {
	t.Helper()
	path := filepath.Join(paths.DataDir, "promo.csv")
	content := "name,start_date,end_date,type\nSale,2024-01-01,2024-01-07,discount\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return "promo.csv"
}

func validSaveRequest(promoPath string) *SaveConfigRequest {
	return &SaveConfigRequest{
		Meta: ForecastMeta{
			Name:      "Q3 Demand Plan",
			CreatedBy: "planner",
			Notes:     "first cut",
		},
		Forecast: ForecastDetail{
			HorizonDays:       30,
			LeadTimeDays:      7,
			Granularity:       domain.GrainWeekly,
			Hierarchy:         "restaurant > city > country",
			Country:           "India",
			PromoCalendarPath: promoPath,
		},
		VersionTag: "v1",
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)
	ctx := context.Background()

	result, err := store.Save(ctx, "dev", RoleEditor, validSaveRequest(promo))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(result.Path), "project_config_q3-demand-plan_"))
	assert.Equal(t, 1, result.HistorySize)
	assert.Equal(t, "v1", result.Config.VersionTag)
	assert.Equal(t, "1.0", result.Config.ConfigVersion, "config version defaults")
	_, err = time.Parse(time.RFC3339, result.Config.Meta.CreatedAt)
	assert.NoError(t, err)
	assert.Contains(t, result.Warnings,
		"Historical data has not been ingested for the selected granularity.")

	loaded, err := store.Load("dev")
	require.NoError(t, err)
	assert.Equal(t, result.Path, loaded.Path)
	assert.Equal(t, result.Config, loaded.Config)

	// Audit log records the save.
	audit, err := os.ReadFile(paths.AuditLogFile)
	require.NoError(t, err)
	assert.Contains(t, string(audit), "env=dev | role=editor | saved config ")
}

func TestSaveRejectsViewer(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)

	_, err := store.Save(context.Background(), "dev", RoleViewer, validSaveRequest(promo))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypePermission))
}

func TestSaveRejectsUnknownEnv(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)

	_, err := store.Save(context.Background(), "staging", RoleEditor, validSaveRequest(promo))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))
}

func TestSaveBlocksOnCoreRules(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)

	req := validSaveRequest(promo)
	req.Forecast.HorizonDays = 3
	req.Forecast.LeadTimeDays = 7

	_, err := store.Save(context.Background(), "dev", RoleEditor, req)
	require.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "Forecast horizon must be greater than or equal to lead time.")
}

func TestSaveRequiresExistingPromoFile(t *testing.T) {
	store, _ := newTestStore(t)

	req := validSaveRequest("absent.csv")
	_, err := store.Save(context.Background(), "dev", RoleEditor, req)
	require.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "promo calendar file not found")
}

func TestSaveRejectsInvalidPayload(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)

	req := validSaveRequest(promo)
	req.Meta.Name = ""
	_, err := store.Save(context.Background(), "dev", RoleEditor, req)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))
}

func TestLoadMissingConfig(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load("dev")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}

func TestVersions(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)
	ctx := context.Background()

	assert.Empty(t, store.Versions("dev", 10), "no history yet yields an empty slice")

	_, err := store.Save(ctx, "dev", RoleEditor, validSaveRequest(promo))
	require.NoError(t, err)
	req := validSaveRequest(promo)
	req.VersionTag = "v2"
	_, err = store.Save(ctx, "dev", RoleEditor, req)
	require.NoError(t, err)
	_, err = store.Save(ctx, "prod", RoleApprover, validSaveRequest(promo))
	require.NoError(t, err)

	dev := store.Versions("dev", 10)
	require.Len(t, dev, 2)
	assert.Equal(t, "v2", dev[1].VersionTag)

	all := store.Versions("", 10)
	assert.Len(t, all, 3)

	limited := store.Versions("dev", 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "v2", limited[0].VersionTag, "limit keeps the most recent entries")
}

func TestDownload(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)
	ctx := context.Background()

	saved, err := store.Save(ctx, "dev", RoleEditor, validSaveRequest(promo))
	require.NoError(t, err)

	// Latest version when no path is given.
	got, err := store.Download("dev", "")
	require.NoError(t, err)
	assert.Equal(t, saved.Path, got.Path)
	assert.Contains(t, got.YAML, "Q3 Demand Plan")
	assert.Equal(t, saved.Config, got.Config)

	// Explicit path relative to the configs directory.
	rel := filepath.Join("dev", filepath.Base(saved.Path))
	got, err = store.Download("dev", rel)
	require.NoError(t, err)
	assert.Equal(t, saved.Config, got.Config)
}

func TestDownloadRejectsEscapingPath(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Download("dev", filepath.Join("..", "..", "etc", "passwd"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))

	_, err = store.Download("dev", filepath.Join("prod", "x.yaml"))
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation),
		"path must stay inside the requested environment")
}

func TestDownloadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Download("dev", "")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}

func TestGuardrailSummaryAlignment(t *testing.T) {
	store, paths := newTestStore(t)

	// 3-day promo does not align with weekly cadence.
	promoFile := filepath.Join(paths.DataDir, "short.csv")
	content := "name,start_date,end_date,type\nFlash,2024-01-01,2024-01-03,discount\n"
	require.NoError(t, os.WriteFile(promoFile, []byte(content), 0o644))

	warnings := store.GuardrailSummary(&ForecastDetail{
		Granularity:       domain.GrainWeekly,
		PromoCalendarPath: "short.csv",
	})
	assert.Contains(t, warnings, "Promo durations do not align with the selected granularity.")
}

func TestGuardrailSummaryDataExists(t *testing.T) {
	store, paths := newTestStore(t)
	promo := writePromoCalendar(t, paths)

	require.NoError(t, os.WriteFile(paths.WeeklyFile, []byte("series_id,date,sales_qty\n"), 0o644))

	warnings := store.GuardrailSummary(&ForecastDetail{
		Granularity:       domain.GrainWeekly,
		PromoCalendarPath: promo,
	})
	assert.NotContains(t, warnings,
		"Historical data has not been ingested for the selected granularity.")
}
