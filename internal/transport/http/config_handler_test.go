package http

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/configstore"
)

const handlerPromoCSV = "name,start_date,end_date,type\n" +
	"summer,2024-06-01,2024-06-07,discount\n"

func seedPromoCalendar(t *testing.T, env *testEnv) {
	t.Helper()
	path := filepath.Join(env.paths.DataDir, "promo.csv")
	require.NoError(t, os.WriteFile(path, []byte(handlerPromoCSV), 0o644))
}

func saveRequestPayload() map[string]any {
	return map[string]any{
		"config_version": "1.0",
		"version_tag":    "baseline",
		"meta": map[string]any{
			"name":       "Q3 Demand Plan",
			"created_by": "planner",
		},
		"forecast": map[string]any{
			"horizon_days":        14,
			"lead_time_days":      2,
			"granularity":         "daily",
			"hierarchy":           "restaurant > city > country",
			"country":             "India",
			"promo_calendar_path": "promo.csv",
		},
	}
}

func TestDefaultsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.getJSON(t, "/api/config/defaults")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0", body["config_version"])
	assert.Equal(t, float64(30), body["forecast_horizon_days"])
}

func TestHolidaysEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.getJSON(t, "/api/config/holidays?country=US&start_date=2024-07-01&end_date=2024-07-31")

	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := body["holidays"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, list)

	dates := make([]string, 0, len(list))
	for _, entry := range list {
		dates = append(dates, entry.(map[string]any)["date"].(string))
	}
	assert.Contains(t, dates, "2024-07-04")
}

func TestHolidaysEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		url  string
	}{
		{"missing start date", "/api/config/holidays?country=US&end_date=2024-07-31"},
		{"bad date format", "/api/config/holidays?country=US&start_date=July&end_date=2024-07-31"},
		{"unknown country", "/api/config/holidays?country=atlantis&start_date=2024-07-01&end_date=2024-07-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := env.getJSON(t, tt.url)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveAndLoadConfigEndpoints(t *testing.T) {
	env := newTestEnv(t)
	seedPromoCalendar(t, env)

	rec, body := env.postJSON(t, "/api/config/save_config?role=editor&env=dev", saveRequestPayload())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["history_size"])

	rec, body = env.getJSON(t, "/api/config/load_config?env=dev")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg, ok := body["config"].(map[string]any)
	require.True(t, ok)
	meta := cfg["meta"].(map[string]any)
	assert.Equal(t, "Q3 Demand Plan", meta["name"])
}

func TestSaveConfigEndpointViewerForbidden(t *testing.T) {
	env := newTestEnv(t)
	seedPromoCalendar(t, env)

	rec, body := env.postJSON(t, "/api/config/save_config?role=viewer", saveRequestPayload())

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/errors/forbidden", body["type"])
}

func TestSaveConfigEndpointCoreRuleViolation(t *testing.T) {
	env := newTestEnv(t)
	seedPromoCalendar(t, env)

	payload := saveRequestPayload()
	payload["forecast"].(map[string]any)["horizon_days"] = 1
	payload["forecast"].(map[string]any)["lead_time_days"] = 5

	rec, _ := env.postJSON(t, "/api/config/save_config?role=editor", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveConfigEndpointRejectsBadJSON(t *testing.T) {
	env := newTestEnv(t)

	req := multipartUpload(t, "/api/config/save_config?role=editor", "file", "x.csv", []byte("no"))
	rec := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadConfigEndpointNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.getJSON(t, "/api/config/load_config")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVersionsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedPromoCalendar(t, env)

	_, _ = env.postJSON(t, "/api/config/save_config?role=editor&env=dev", saveRequestPayload())

	rec, body := env.getJSON(t, "/api/config/get_versions")
	require.Equal(t, http.StatusOK, rec.Code)
	history, ok := body["history"].([]any)
	require.True(t, ok)
	assert.Len(t, history, 1)
}

func TestDownloadConfigEndpoint(t *testing.T) {
	env := newTestEnv(t)
	seedPromoCalendar(t, env)

	_, _ = env.postJSON(t, "/api/config/save_config?role=editor&env=dev", saveRequestPayload())

	rec, body := env.getJSON(t, "/api/config/download_config?env=dev")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body["yaml"], "Q3 Demand Plan")

	rec, _ = env.getJSON(t, "/api/config/download_config?env=prod")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadPromoCalendarEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := multipartUpload(t, "/api/config/upload_promo_calendar?role=editor", "file", "promos.csv", []byte(handlerPromoCSV))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "uploaded", body["status"])
	assert.Equal(t, float64(1), body["total_rows"])
}

func TestUploadPromoCalendarEndpointViewerForbidden(t *testing.T) {
	env := newTestEnv(t)

	req := multipartUpload(t, "/api/config/upload_promo_calendar?role=viewer", "file", "promos.csv", []byte(handlerPromoCSV))
	rec := env.do(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHierarchyMappingEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.getJSON(t, "/api/config/hierarchy_mapping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "restaurant_to_city")

	mapping := configstore.HierarchyMapping{
		RestaurantToCity: map[string]string{"r1": "Pune", "r2": "Pune"},
		CityToCountry:    map[string]string{"Pune": "India"},
	}
	rec, _ = env.postJSON(t, "/api/config/hierarchy_mapping?role=editor", mapping)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.postJSON(t, "/api/config/test_rollup", map[string]any{
		"restaurant_values": map[string]float64{"r1": 10, "r2": 5, "stray": 1},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	cities := body["cities"].(map[string]any)
	assert.Equal(t, float64(15), cities["Pune"])
	assert.Equal(t, float64(1), cities["Unknown"])
	countries := body["countries"].(map[string]any)
	assert.Equal(t, float64(15), countries["India"])
}

func TestHierarchyMappingEndpointViewerForbidden(t *testing.T) {
	env := newTestEnv(t)

	mapping := configstore.HierarchyMapping{
		RestaurantToCity: map[string]string{"r1": "Pune"},
		CityToCountry:    map[string]string{"Pune": "India"},
	}
	rec, _ := env.postJSON(t, "/api/config/hierarchy_mapping?role=viewer", mapping)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
