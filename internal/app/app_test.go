package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotcli/internal/config"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfg.Paths.ReportsDir = filepath.Join(base, "reports")
	cfg.Paths.LogsDir = filepath.Join(base, "logs")
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = filepath.Join(base, "logs", "app.log")
	cfg.RateLimit.Enabled = false

	app, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)
	return app
}

func TestHealthRoute(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApplication(t)

	// Generate one request so the counters exist
	app.Router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestUnknownRouteReturns404(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreprocessRouteMissingSources(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/boundary/preprocess", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalysisRouteRejectsInvalidJSON(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/trading/analysis/metrics", strings.NewReader(`{"min_price":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	app := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
