package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
	apierrors "spotcli/internal/errors"
	"spotcli/internal/files"
	"spotcli/internal/infrastructure"
	"spotcli/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfg.Paths.ReportsDir = filepath.Join(base, "reports")
	cfg.Paths.LogsDir = filepath.Join(base, "logs")
	require.NoError(t, cfg.EnsureDirectories())
	return cfg
}

func writeSheet(t *testing.T, path, sheetName string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheetName))
	for i, row := range rows {
		for j, val := range row {
			if val == nil {
				continue
			}
			col, err := excelize.ColumnNumberToName(j + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, col+strconv.Itoa(i+1), val))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func writeBoundarySources(t *testing.T, dir string) {
	t.Helper()
	sources := map[config.SourceKey][][]interface{}{
		config.SourceLoadForecast: {
			{"序号", "日期", "时点", "统调负荷"},
			{nil, nil, nil, "MW"},
			{"1", "2025-08-30", "00:15", "23000"},
		},
		config.SourceRenewableForecast: {
			{"序号", "日期", "时点", "新能源负荷", "风电", "光伏"},
			{nil, nil, nil, "MW", "MW", "MW"},
			{"1", "2025-08-30", "00:15", "5000", "3200", "1800"},
		},
		config.SourceDisclosure: {
			{"序号", "日期", "时点", "非市场化出力"},
			{nil, nil, nil, "MW"},
			{"1", "2025-08-30", "00:15", "700"},
		},
		config.SourceTieLineForecast: {
			{"序号", "联络线", "日期", "时点", "计划值"},
			{nil, nil, nil, nil, "MW"},
			{"1", "总加", "2025-08-30", "00:15", "4300"},
		},
		config.SourceClearingSummary: {
			{"序号", "日期", "出清情况"},
			{nil, nil, nil},
			{"1", "2025-08-30", "运行机组容量42340.00MW"},
		},
		config.SourceHydroForecast: {
			{"序号", "日期", "时点", "水电出力"},
			{nil, nil, nil, "MW"},
			{"1", "2025-08-30", "00:15", "350"},
		},
		config.SourceGridActual: {
			{"序号", "日期", "时点", "统调负荷"},
			{nil, nil, nil, "MW"},
			{"1", "2025-08-30", "00:15", "22800"},
		},
		config.SourceTieLineRealtime: {
			{"序号", "联络线", "日期", "时点", "计划值"},
			{nil, nil, nil, nil, "MW"},
			{"1", "总加", "2025-08-30", "00:15", "4250"},
		},
		config.SourceClearingPrice: {
			{"序号", "日期", "时点", "实时出清价格(元/MWh)", "日前出清价格(元/MWh)"},
			{"1", "2025-08-30", "00:15", "312.4", "298.1"},
		},
	}

	for key, rows := range sources {
		spec, ok := config.SourceByKey(key)
		require.True(t, ok)
		writeSheet(t, filepath.Join(dir, spec.FileName), "Sheet1", rows)
	}
}

func writeTradingWorkbooks(t *testing.T, dir string) {
	t.Helper()
	rows := [][]interface{}{
		{"电力营销信息统计"},
		{"日期", "时点", "机组名称", "日前出清节点价格", "日内出清节点价格", "日前中标出力"},
		{"2026-01-12", "00:15", "1号机组", "250", "260", "300"},
		{"2026-01-12", "00:30", "3号机组", "255", "262", "310"},
	}
	writeSheet(t, filepath.Join(dir, "塔山-统计.xlsx"), config.TradingSheetName, rows)
	writeSheet(t, filepath.Join(dir, "河津-统计.xlsx"), config.TradingSheetName, rows)
}

type testServer struct {
	cfg      *config.Config
	boundary *BoundaryHandler
	trading  *TradingHandler
	uploads  *UploadHandler
	health   *HealthHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)
	logger := infrastructure.GetLogger()
	errorHandler := apierrors.NewErrorHandler(logger, false)

	return &testServer{
		cfg: cfg,
		boundary: NewBoundaryHandler(
			services.NewBoundaryService(cfg, logger), cfg.Paths.DataDir, logger, errorHandler),
		trading: NewTradingHandler(
			services.NewTradingService(cfg, logger), cfg.Paths.DataDir, logger, errorHandler),
		uploads: NewUploadHandler(
			files.NewManager(cfg.Paths.UploadsDir, cfg.Server.MaxUploadBytes),
			files.NewDiscovery(cfg.Paths.UploadsDir),
			cfg.Server.MaxUploadBytes, logger, errorHandler),
		health: NewHealthHandler(services.NewHealthService(cfg, "test"), logger),
	}
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPreprocessEndpoint(t *testing.T) {
	ts := newTestServer(t)
	writeBoundarySources(t, ts.cfg.Paths.DataDir)

	rec := postJSON(t, ts.boundary.Routes(), "/preprocess", `{"export_csv": true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["row_count"])
	assert.NotEmpty(t, body["csv_path"])
}

func TestPreprocessMissingSource(t *testing.T) {
	ts := newTestServer(t)
	// Data dir left empty

	rec := postJSON(t, ts.boundary.Routes(), "/preprocess", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, apierrors.TypeMissingSource, body["type"])
}

func TestMergeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	writeTradingWorkbooks(t, ts.cfg.Paths.DataDir)

	rec := postJSON(t, ts.trading.Routes(), "/merge", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["row_count"])
}

func TestMergeEmptyDirectory(t *testing.T) {
	ts := newTestServer(t)

	rec := postJSON(t, ts.trading.Routes(), "/merge", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisEndpoints(t *testing.T) {
	ts := newTestServer(t)
	writeTradingWorkbooks(t, ts.cfg.Paths.DataDir)

	// Merge first so the default merged workbook exists
	rec := postJSON(t, ts.trading.Routes(), "/merge", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("metrics", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/metrics", `{}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.InDelta(t, 1.0, data["forecast_hours"], 1e-9)
	})

	t.Run("metrics with filter", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/metrics",
			`{"min_price": 252, "include_min_boundary": false}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.InDelta(t, 0.5, data["forecast_hours"], 1e-9)
	})

	t.Run("by company", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/by-company", `{}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, float64(2), decodeBody(t, rec)["count"])
	})

	t.Run("by unit", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/by-unit", `{}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, float64(2), decodeBody(t, rec)["count"])
	})

	t.Run("bad date", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/metrics", `{"start_date": "12/01/2026"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown price column", func(t *testing.T) {
		rec := postJSON(t, ts.trading.Routes(), "/analysis/metrics", `{"price_column": "并非价格"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func multipartBody(t *testing.T, fieldFiles map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, content := range fieldFiles {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadLifecycle(t *testing.T) {
	ts := newTestServer(t)
	routes := ts.uploads.Routes()

	body, contentType := multipartBody(t, map[string]string{"塔山-统计.xlsx": "data"})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(1), body["count"])
		// None of the nine boundary sources were uploaded yet.
		assert.Len(t, body["missing_sources"], 9)
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
	})
}

func TestUploadRejectsNonExcel(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"payload.exe": "x"})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.uploads.Routes().ServeHTTP(rec, req)

	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	http.HandlerFunc(ts.health.HealthCheck).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}
