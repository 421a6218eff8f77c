package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"forecastwb/internal/config"
	apierrors "forecastwb/internal/errors"
	"forecastwb/internal/services"
	"forecastwb/pkg/contracts/domain"
)

// EDAHandler serves the exploratory-analysis endpoints.
type EDAHandler struct {
	service      *services.EDAService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewEDAHandler creates an analysis handler.
func NewEDAHandler(service *services.EDAService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *EDAHandler {
	return &EDAHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "eda_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes.
func (h *EDAHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.Summary)
	r.Get("/correlation", h.Correlation)
	r.Get("/timeseries", h.Timeseries)
	r.Get("/distribution", h.Distribution)
	r.Get("/datahead", h.DataHead)
	return r
}

// Summary handles GET /api/eda/summary.
func (h *EDAHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), grainParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "summary": summary})
}

// Correlation handles GET /api/eda/correlation.
func (h *EDAHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	correlation, err := h.service.Correlation(r.Context(), grainParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "correlation": correlation})
}

// Timeseries handles GET /api/eda/timeseries.
func (h *EDAHandler) Timeseries(w http.ResponseWriter, r *http.Request) {
	timeseries, err := h.service.Timeseries(r.Context(), grainParam(r))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "timeseries": timeseries})
}

// Distribution handles GET /api/eda/distribution with an optional column
// (default sales_qty) and bin count between 5 and 120 (default 20).
func (h *EDAHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		column = config.ColumnSalesQty
	}
	bins, err := boundedIntParam(r, "bins", 20, 5, 120)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	distribution, err := h.service.Distribution(r.Context(), grainParam(r), column, bins)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "distribution": distribution})
}

// DataHead handles GET /api/eda/datahead with a row limit between 1 and
// 200 (default 10).
func (h *EDAHandler) DataHead(w http.ResponseWriter, r *http.Request) {
	limit, err := boundedIntParam(r, "limit", 10, 1, 200)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	head, err := h.service.DataHead(r.Context(), grainParam(r), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "data_head": head})
}

// grainParam reads the granularity query parameter, defaulting to daily.
func grainParam(r *http.Request) domain.Grain {
	return domain.ParseGrain(r.URL.Query().Get("granularity"))
}

func boundedIntParam(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierrors.NewValidationError(fmt.Sprintf("%s must be an integer", name))
	}
	if value < min || value > max {
		return 0, apierrors.NewValidationError(fmt.Sprintf("%s must be between %d and %d", name, min, max))
	}
	return value, nil
}
