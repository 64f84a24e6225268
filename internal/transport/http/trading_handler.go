package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "spotcli/internal/errors"
	"spotcli/internal/services"
	"spotcli/internal/trading"
	"spotcli/pkg/contracts/domain"
)

// MergeRequest is the body of POST /api/trading/merge. An empty
// source_dir falls back to the configured data directory.
type MergeRequest struct {
	SourceDir string `json:"source_dir" validate:"omitempty"`
}

// TradingHandler exposes the trading merge and analysis over HTTP
type TradingHandler struct {
	service      *services.TradingService
	defaultDir   string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTradingHandler creates a new trading handler
func NewTradingHandler(service *services.TradingService, defaultDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TradingHandler {
	return &TradingHandler{
		service:      service,
		defaultDir:   defaultDir,
		logger:       logger.With(slog.String("component", "trading_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the trading and analysis routes
func (h *TradingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/merge", h.Merge)
	r.Route("/analysis", func(r chi.Router) {
		r.Post("/metrics", h.Analyze)
		r.Post("/by-company", h.AnalyzeByCompany)
		r.Post("/by-unit", h.AnalyzeByUnit)
	})
	return r
}

// Merge handles POST /api/trading/merge
func (h *TradingHandler) Merge(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req MergeRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if req.SourceDir == "" {
		req.SourceDir = h.defaultDir
	}

	h.logger.InfoContext(r.Context(), "merge requested",
		slog.String("request_id", reqID),
		slog.String("source_dir", req.SourceDir),
	)

	result, err := h.service.Merge(r.Context(), req.SourceDir)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "merge failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// loadForAnalysis parses the shared analysis request body and loads the
// merged dataset it points at. A nil dataset return means the error
// response was already written.
func (h *TradingHandler) loadForAnalysis(w http.ResponseWriter, r *http.Request) (*domain.TradingDataset, trading.FilterCriteria, bool) {
	var req AnalyzeRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, trading.FilterCriteria{}, false
	}

	if req.PriceColumn != "" && !knownPriceColumns[req.PriceColumn] {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("price_column", "unknown price column"))
		return nil, trading.FilterCriteria{}, false
	}

	criteria, err := req.Criteria()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("start_date", "dates must be YYYY-MM-DD"))
		return nil, trading.FilterCriteria{}, false
	}

	ds, err := h.service.LoadMerged(r.Context(), req.MergedPath)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, trading.FilterCriteria{}, false
	}

	return ds, criteria, true
}

// Analyze handles POST /api/trading/analysis/metrics
func (h *TradingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ds, criteria, ok := h.loadForAnalysis(w, r)
	if !ok {
		return
	}

	metrics, outputPath, err := h.service.Analyze(r.Context(), ds, criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":      "success",
		"data":        metrics,
		"output_path": outputPath,
	})
}

// AnalyzeByCompany handles POST /api/trading/analysis/by-company
func (h *TradingHandler) AnalyzeByCompany(w http.ResponseWriter, r *http.Request) {
	ds, criteria, ok := h.loadForAnalysis(w, r)
	if !ok {
		return
	}

	reports, outputPath, err := h.service.AnalyzeByCompany(r.Context(), ds, criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":      "success",
		"data":        reports,
		"count":       len(reports),
		"output_path": outputPath,
	})
}

// AnalyzeByUnit handles POST /api/trading/analysis/by-unit
func (h *TradingHandler) AnalyzeByUnit(w http.ResponseWriter, r *http.Request) {
	ds, criteria, ok := h.loadForAnalysis(w, r)
	if !ok {
		return
	}

	reports, outputPath, err := h.service.AnalyzeByUnit(r.Context(), ds, criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":      "success",
		"data":        reports,
		"count":       len(reports),
		"output_path": outputPath,
	})
}
