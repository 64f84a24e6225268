package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"spotcli/internal/boundary"
	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/exporter"
	"spotcli/internal/files"
	"spotcli/internal/infrastructure"
	"spotcli/pkg/contracts/domain"
)

// BoundaryResult summarizes one reconciliation run.
type BoundaryResult struct {
	Records      []domain.UnifiedRecord `json:"-"`
	RowCount     int                    `json:"row_count"`
	ForecastRows int                    `json:"forecast_rows"`
	RealtimeRows int                    `json:"realtime_rows"`
	OutputPath   string                 `json:"output_path"`
	Duration     time.Duration          `json:"duration_ms"`
}

// BoundaryService runs the boundary reconciliation over a directory of
// source workbooks and exports the unified table.
type BoundaryService struct {
	cfg        *config.Config
	reconciler *boundary.Reconciler
	logger     *slog.Logger
}

// NewBoundaryService creates the service. A nil logger falls back to the
// global one.
func NewBoundaryService(cfg *config.Config, logger *slog.Logger) *BoundaryService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &BoundaryService{
		cfg:        cfg,
		reconciler: boundary.NewReconciler(logger),
		logger:     logger,
	}
}

// Preprocess locates the nine required sources under sourceDir,
// reconciles them, and writes the unified workbook into the reports
// directory. Missing sources abort before any parsing happens, naming
// the first missing file.
func (s *BoundaryService) Preprocess(ctx context.Context, sourceDir string) (*BoundaryResult, error) {
	start := time.Now()

	discovery := files.NewDiscovery(s.cfg.Paths.DataDir)
	found, missing, err := discovery.LocateRequiredSources(sourceDir)
	if err != nil {
		return nil, errors.NewStorageError("failed to scan source directory", err)
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingSourceError(missing[0]).
			WithContext("missing_count", len(missing))
	}

	records, err := s.reconciler.Reconcile(ctx, boundary.SourceSet(found))
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(s.cfg.Paths.ReportsDir, "预处理结果_新版.xlsx")
	if err := exporter.WriteBoundaryWorkbook(outputPath, records); err != nil {
		return nil, err
	}

	result := &BoundaryResult{
		Records:    records,
		RowCount:   len(records),
		OutputPath: outputPath,
		Duration:   time.Since(start),
	}
	for _, rec := range records {
		if rec.Epoch == domain.EpochForecast {
			result.ForecastRows++
		} else {
			result.RealtimeRows++
		}
	}

	s.logger.InfoContext(ctx, "boundary preprocessing complete",
		slog.Int("rows", result.RowCount),
		slog.Int("forecast_rows", result.ForecastRows),
		slog.Int("realtime_rows", result.RealtimeRows),
		slog.String("output", outputPath),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// ExportCSV writes an additional CSV rendition of a reconciliation
// result next to the workbook.
func (s *BoundaryService) ExportCSV(ctx context.Context, result *BoundaryResult) (string, error) {
	path := filepath.Join(s.cfg.Paths.ReportsDir, "预处理结果_新版.csv")
	if err := exporter.WriteBoundaryCSV(path, result.Records); err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "boundary CSV exported", slog.String("output", path))
	return path, nil
}
