package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "spotcli/internal/errors"
	"spotcli/internal/files"
)

// UploadHandler stages uploaded workbooks into the uploads directory
type UploadHandler struct {
	manager      *files.Manager
	discovery    *files.Discovery
	maxBytes     int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(manager *files.Manager, discovery *files.Discovery, maxBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	return &UploadHandler{
		manager:      manager,
		discovery:    discovery,
		maxBytes:     maxBytes,
		logger:       logger.With(slog.String("component", "upload_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the upload routes
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListStaged)
	r.Post("/", h.Upload)
	r.Delete("/", h.Clear)
	return r
}

// Upload handles POST /api/uploads with one or more multipart files
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("files", "at least one file is required"))
		return
	}

	var staged []string
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.FileSystemError("upload", err))
			return
		}

		path, err := h.manager.StageUpload(header.Filename, src)
		src.Close()
		if err != nil {
			h.logger.WarnContext(r.Context(), "upload rejected",
				slog.String("file", header.Filename),
				slog.String("error", err.Error()),
				slog.String("request_id", reqID),
			)
			h.errorHandler.HandleError(w, r, err)
			return
		}
		staged = append(staged, path)
	}

	h.logger.InfoContext(r.Context(), "files staged",
		slog.Int("count", len(staged)),
		slog.String("request_id", reqID),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"staged": staged,
		"count":  len(staged),
	})
}

// ListStaged handles GET /api/uploads. Besides the staged files it
// reports which of the required boundary sources are still missing, so
// a client knows whether preprocessing can run yet.
func (h *UploadHandler) ListStaged(w http.ResponseWriter, r *http.Request) {
	infos, err := h.discovery.FindExcelFiles("")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list uploads", err))
		return
	}

	_, missing, err := h.discovery.LocateRequiredSources("")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("check required sources", err))
		return
	}
	if missing == nil {
		missing = []string{}
	}

	render.JSON(w, r, map[string]interface{}{
		"status":          "success",
		"data":            infos,
		"count":           len(infos),
		"missing_sources": missing,
	})
}

// Clear handles DELETE /api/uploads
func (h *UploadHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.ClearStaged(); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("clear uploads", err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
	})
}
