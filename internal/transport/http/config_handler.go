package http

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"forecastwb/internal/configstore"
	apierrors "forecastwb/internal/errors"
	"forecastwb/internal/holidays"
)

// ConfigHandler serves the configuration workbench endpoints: defaults,
// the versioned config store, promo calendars, holidays, and the
// hierarchy mapping.
type ConfigHandler struct {
	store        *configstore.Store
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewConfigHandler creates a config handler.
func NewConfigHandler(store *configstore.Store, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ConfigHandler {
	return &ConfigHandler{
		store:        store,
		logger:       logger.With(slog.String("component", "config_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the config routes.
func (h *ConfigHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/defaults", h.Defaults)
	r.Get("/holidays", h.Holidays)
	r.Get("/load_config", h.LoadConfig)
	r.Get("/get_versions", h.Versions)
	r.Get("/download_config", h.DownloadConfig)
	r.Post("/save_config", h.SaveConfig)
	r.Post("/upload_promo_calendar", h.UploadPromoCalendar)
	r.Get("/hierarchy_mapping", h.GetHierarchyMapping)
	r.Post("/hierarchy_mapping", h.UpdateHierarchyMapping)
	r.Post("/test_rollup", h.TestRollup)
	return r
}

// Defaults handles GET /api/defaults.
func (h *ConfigHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, configstore.Defaults)
}

// Holidays handles GET /api/holidays?country=US&start_date=...&end_date=...
func (h *ConfigHandler) Holidays(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	start, err := dateParam(r, "start_date")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	end, err := dateParam(r, "end_date")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	list, err := holidays.Between(country, start, end)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"country":    country,
		"start_date": start.Format("2006-01-02"),
		"end_date":   end.Format("2006-01-02"),
		"count":      len(list),
		"holidays":   list,
	})
}

// LoadConfig handles GET /api/load_config.
func (h *ConfigHandler) LoadConfig(w http.ResponseWriter, r *http.Request) {
	loaded, err := h.store.Load(envParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, loaded)
}

// Versions handles GET /api/get_versions with optional env filter and a
// limit defaulting to 20.
func (h *ConfigHandler) Versions(w http.ResponseWriter, r *http.Request) {
	limit, err := boundedIntParam(r, "limit", 20, 1, 500)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	history := h.store.Versions(r.URL.Query().Get("env"), limit)
	render.JSON(w, r, map[string]any{"history": history})
}

// DownloadConfig handles GET /api/download_config, returning raw YAML
// plus the parsed document.
func (h *ConfigHandler) DownloadConfig(w http.ResponseWriter, r *http.Request) {
	downloaded, err := h.store.Download(envParam(r), r.URL.Query().Get("path"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, downloaded)
}

// SaveConfig handles POST /api/save_config.
func (h *ConfigHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var req configstore.SaveConfigRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("request body is not valid JSON"))
		return
	}
	result, err := h.store.Save(r.Context(), envParam(r), role, &req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":       "success",
		"path":         result.Path,
		"warnings":     result.Warnings,
		"history_size": result.HistorySize,
		"config":       result.Config,
	})
}

// UploadPromoCalendar handles POST /api/upload_promo_calendar.
func (h *ConfigHandler) UploadPromoCalendar(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("promo calendar file is required"))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to read upload", err))
		return
	}

	result, err := h.store.SavePromoCalendar(r.Context(), envParam(r), role, header.Filename, content)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":       "uploaded",
		"path":         result.Path,
		"preview":      result.Preview,
		"invalid_rows": result.InvalidRows,
		"total_rows":   result.TotalRows,
	})
}

// GetHierarchyMapping handles GET /api/hierarchy_mapping.
func (h *ConfigHandler) GetHierarchyMapping(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.store.HierarchyMapping())
}

// UpdateHierarchyMapping handles POST /api/hierarchy_mapping.
func (h *ConfigHandler) UpdateHierarchyMapping(w http.ResponseWriter, r *http.Request) {
	role, err := roleParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	var mapping configstore.HierarchyMapping
	if err := render.DecodeJSON(r.Body, &mapping); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("request body is not valid JSON"))
		return
	}
	if err := h.store.SaveHierarchyMapping(r.Context(), role, &mapping); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "updated", "mapping": mapping})
}

// TestRollup handles POST /api/test_rollup, summing per-restaurant values
// up the stored hierarchy.
func (h *ConfigHandler) TestRollup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RestaurantValues map[string]float64 `json:"restaurant_values"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("request body is not valid JSON"))
		return
	}
	render.JSON(w, r, h.store.Rollup(req.RestaurantValues))
}

func envParam(r *http.Request) string {
	env := r.URL.Query().Get("env")
	if env == "" {
		env = "dev"
	}
	return env
}

func roleParam(r *http.Request) (configstore.Role, error) {
	return configstore.ParseRole(r.URL.Query().Get("role"))
}

func dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, apierrors.NewValidationError(name + " is required")
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apierrors.NewValidationError(name + " must be an ISO date (YYYY-MM-DD)")
	}
	return d, nil
}
