package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "spotcli/internal/errors"
	"spotcli/internal/services"
)

// PreprocessRequest is the body of POST /api/boundary/preprocess.
// An empty source_dir falls back to the configured data directory.
type PreprocessRequest struct {
	SourceDir string `json:"source_dir" validate:"omitempty"`
	ExportCSV bool   `json:"export_csv"`
}

// BoundaryHandler exposes the boundary reconciliation over HTTP
type BoundaryHandler struct {
	service      *services.BoundaryService
	defaultDir   string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewBoundaryHandler creates a new boundary handler
func NewBoundaryHandler(service *services.BoundaryService, defaultDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BoundaryHandler {
	return &BoundaryHandler{
		service:      service,
		defaultDir:   defaultDir,
		logger:       logger.With(slog.String("component", "boundary_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the boundary routes
func (h *BoundaryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/preprocess", h.Preprocess)
	return r
}

// Preprocess handles POST /api/boundary/preprocess
func (h *BoundaryHandler) Preprocess(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	var req PreprocessRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if req.SourceDir == "" {
		req.SourceDir = h.defaultDir
	}

	h.logger.InfoContext(r.Context(), "preprocess requested",
		slog.String("request_id", reqID),
		slog.String("source_dir", req.SourceDir),
	)

	result, err := h.service.Preprocess(r.Context(), req.SourceDir)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "preprocess failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	csvPath := ""
	if req.ExportCSV {
		csvPath, err = h.service.ExportCSV(r.Context(), result)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	resp := map[string]interface{}{
		"status": "success",
		"data":   result,
	}
	if csvPath != "" {
		resp["csv_path"] = csvPath
	}
	render.JSON(w, r, resp)
}
