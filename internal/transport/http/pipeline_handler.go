package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "forecastwb/internal/errors"
	"forecastwb/internal/services"
)

// maxMultipartMemory caps the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 10 << 20

// PipelineHandler serves the ingestion pipeline endpoints.
type PipelineHandler struct {
	service      *services.PipelineService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPipelineHandler creates a pipeline handler.
func NewPipelineHandler(service *services.PipelineService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PipelineHandler {
	return &PipelineHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "pipeline_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the pipeline routes.
func (h *PipelineHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload_csv", h.UploadCSV)
	r.Post("/ingest_data", h.IngestData)
	r.Post("/validate_data", h.ValidateData)
	r.Post("/build_timeline", h.BuildTimeline)
	r.Post("/aggregate_data", h.AggregateData)
	return r
}

// UploadCSV handles POST /api/upload_csv: stores the file and returns the
// smart-defaults analysis.
func (h *PipelineHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	filename, content, err := h.readUpload(r, "file")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	result, err := h.service.UploadCSV(r.Context(), filename, content)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":      "success",
		"data":        result.Analysis,
		"stored_path": result.StoredPath,
	})
}

// IngestData handles POST /api/ingest_data: accepts optional sales,
// inventory, and prices files, or revalidates the latest upload when
// use_existing is set.
func (h *PipelineHandler) IngestData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("request is not valid multipart form data"))
		return
	}

	var uploads []services.IngestUpload
	for _, label := range []string{"sales", "inventory", "prices"} {
		filename, content, err := h.readUpload(r, label)
		if err != nil {
			if apierrors.IsType(err, apierrors.ErrTypeNotFound) {
				continue
			}
			h.errorHandler.HandleError(w, r, err)
			return
		}
		uploads = append(uploads, services.IngestUpload{Label: label, Filename: filename, Content: content})
	}
	useExisting := r.FormValue("use_existing") == "true"

	result, err := h.service.Ingest(r.Context(), uploads, useExisting)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status":         "success",
		"uploaded_files": result.UploadedFiles,
		"summary":        result.Summary,
	})
}

// ValidateData handles POST /api/validate_data: cleans the latest upload
// or the file named by the filename query parameter.
func (h *PipelineHandler) ValidateData(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Validate(r.Context(), r.URL.Query().Get("filename"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "summary": summary})
}

// BuildTimeline handles POST /api/build_timeline.
func (h *PipelineHandler) BuildTimeline(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.BuildTimeline(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "summary": summary})
}

// AggregateData handles POST /api/aggregate_data.
func (h *PipelineHandler) AggregateData(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Aggregate(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"status": "success", "summary": summary})
}

// readUpload extracts one multipart file field. A missing field maps to a
// not-found error so optional fields can be skipped.
func (h *PipelineHandler) readUpload(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, apierrors.NewNotFoundError("upload field " + field)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apierrors.NewStorageError("failed to read upload", err)
	}
	return header.Filename, content, nil
}
