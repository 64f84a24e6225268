package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "spotcli/internal/errors"
	"spotcli/internal/infrastructure"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newBody(s string) io.Reader {
	return strings.NewReader(s)
}

func newTestErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(infrastructure.GetLogger(), false)
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var captured string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetReqID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDKeepsExistingHeader(t *testing.T) {
	var captured string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetReqID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-id", captured)
}

func TestRequestIDPropagatesTraceID(t *testing.T) {
	var traceID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = infrastructure.GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "trace-me", traceID)
}

func TestRecovererReturnsProblemJSON(t *testing.T) {
	h := Recoverer(infrastructure.GetLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	rl := NewRateLimiter(1, 1, infrastructure.GetLogger())
	h := rl.Handler(okHandler())

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestHTTPMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	h := m.Handler(okHandler())

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	}

	count := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/health", "200"))
	assert.Equal(t, 3.0, count)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestValidationMiddlewareRejectsBadJSON(t *testing.T) {
	vm := NewValidationMiddleware(infrastructure.GetLogger(), newTestErrorHandler())
	h := vm.ValidateRequest(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/metrics", newBody(`{"min_price": `))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationMiddlewarePassesGET(t *testing.T) {
	vm := NewValidationMiddleware(infrastructure.GetLogger(), newTestErrorHandler())
	h := vm.ValidateRequest(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateStruct(t *testing.T) {
	vm := NewValidationMiddleware(infrastructure.GetLogger(), newTestErrorHandler())

	type req struct {
		StartDate string `json:"start_date" validate:"omitempty,iso8601"`
		TimeSlot  string `json:"time_slot" validate:"omitempty,timeslot"`
	}

	assert.NoError(t, vm.ValidateStruct(req{StartDate: "2025-08-30", TimeSlot: "00:15"}))
	assert.Error(t, vm.ValidateStruct(req{StartDate: "30/08/2025"}))
	assert.Error(t, vm.ValidateStruct(req{TimeSlot: "24:99"}))
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator("application/json")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/", newBody(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", newBody(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
