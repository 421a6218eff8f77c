package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"forecastwb/internal/config"
	"forecastwb/internal/configstore"
	apierrors "forecastwb/internal/errors"
	"forecastwb/internal/files"
	"forecastwb/internal/services"
	"forecastwb/internal/validation"
)

// testEnv wires all handlers over a temp-dir path layout, mounted the
// same way the application router mounts them.
type testEnv struct {
	paths  *config.Paths
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	store := files.NewUploadStore(logger, paths)
	uploads := validation.NewUploadValidator(logger, 50<<20)
	pipeline := services.NewPipelineService(logger, paths, store, uploads)
	eda := services.NewEDAService(logger, paths)
	health := services.NewHealthService(logger, paths, "test")
	configs := configstore.NewStore(logger, paths)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	r := chi.NewRouter()
	r.Mount("/api", NewPipelineHandler(pipeline, logger, errorHandler).Routes())
	r.Mount("/api/config", NewConfigHandler(configs, logger, errorHandler).Routes())
	r.Mount("/api/eda", NewEDAHandler(eda, logger, errorHandler).Routes())
	r.Mount("/health", NewHealthHandler(health, logger).Routes())
	return &testEnv{paths: paths, router: r}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) getJSON(t *testing.T, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := e.do(t, httptest.NewRequest(http.MethodGet, url, nil))
	return rec, decodeBody(t, rec)
}

func (e *testEnv) postJSON(t *testing.T, url string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := e.do(t, req)
	return rec, decodeBody(t, rec)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// multipartUpload builds a multipart request with one file field.
func multipartUpload(t *testing.T, url, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
