package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.getJSON(t, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "forecast-backend", body["service"])
	assert.Contains(t, body, "datasets")
}

func TestKeepaliveEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.getJSON(t, "/health/keepalive")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "awake", body["message"])
}
