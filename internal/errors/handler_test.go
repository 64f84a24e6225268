package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotcli/internal/infrastructure"
)

func newTestHandler(t *testing.T) *ErrorHandler {
	t.Helper()
	return NewErrorHandler(infrastructure.GetLogger(), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleErrorMissingSource(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/boundary/preprocess", nil)

	h.HandleError(rec, req, NewMissingSourceError("日前负荷预测.xlsx"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMissingSource, body["type"])
	assert.Equal(t, "日前负荷预测.xlsx", body["file_name"])
}

func TestHandleErrorAPIError(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analysis/metrics", nil)

	h.HandleError(rec, req, ErrValidation("max_price", "must be numeric"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestHandleErrorContextDeadline(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)

	h.HandleError(rec, req, context.DeadlineExceeded)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, TypeTimeout, decodeProblem(t, rec)["type"])
}

func TestHandleErrorAppErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"parsing", NewParsingError("bad clearing sheet", nil), http.StatusUnprocessableEntity, TypeParsing},
		{"validation", NewAppValidationError("no trading workbooks found"), http.StatusBadRequest, TypeValidation},
		{"not found", NewNotFoundError("dataset"), http.StatusNotFound, TypeNotFound},
		{"storage", NewStorageError("save failed", fmt.Errorf("disk full")), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decodeProblem(t, rec)["type"])
		})
	}
}

func TestHandleErrorPlainError(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

	h.HandleError(rec, req, fmt.Errorf("something odd"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec)["type"])
}

func TestNotFoundHandler(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "/nope", decodeProblem(t, rec)["instance"])
}

func TestMethodNotAllowedHandler(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/health", nil)

	h.MethodNotAllowed(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)

	h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, decodeProblem(t, rec)["type"])
}
