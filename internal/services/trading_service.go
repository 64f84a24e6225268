package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/exporter"
	"spotcli/internal/files"
	"spotcli/internal/infrastructure"
	"spotcli/internal/trading"
	"spotcli/pkg/contracts/domain"
)

// MergeResult summarizes one trading merge run.
type MergeResult struct {
	Dataset    *domain.TradingDataset `json:"-"`
	RowCount   int                    `json:"row_count"`
	Companies  []string               `json:"companies"`
	OutputPath string                 `json:"output_path"`
	Duration   time.Duration          `json:"duration_ms"`
}

// TradingService merges the per-company workbooks and runs the metric
// analyses over the merged dataset.
type TradingService struct {
	cfg     *config.Config
	builder *trading.Builder
	logger  *slog.Logger
}

// NewTradingService creates the service. A nil logger falls back to the
// global one.
func NewTradingService(cfg *config.Config, logger *slog.Logger) *TradingService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &TradingService{
		cfg:     cfg,
		builder: trading.NewBuilder(cfg.Analysis, logger),
		logger:  logger,
	}
}

// Merge loads every per-company workbook under sourceDir and writes the
// merged trading workbook into the reports directory.
func (s *TradingService) Merge(ctx context.Context, sourceDir string) (*MergeResult, error) {
	start := time.Now()

	discovery := files.NewDiscovery(s.cfg.Paths.DataDir)
	excel, err := discovery.FindExcelFiles(sourceDir)
	if err != nil {
		return nil, errors.NewStorageError("failed to scan trading directory", err)
	}
	if len(excel) == 0 {
		return nil, errors.NewAppValidationError("no trading workbooks found")
	}

	ds, err := trading.MergeWorkbooks(ctx, files.ExcelPaths(excel), s.logger)
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(s.cfg.Paths.ReportsDir, "合并交易量价数据.xlsx")
	if err := exporter.WriteMergedWorkbook(outputPath, ds); err != nil {
		return nil, err
	}

	result := &MergeResult{
		Dataset:    ds,
		RowCount:   ds.Len(),
		Companies:  ds.Companies(),
		OutputPath: outputPath,
		Duration:   time.Since(start),
	}

	s.logger.InfoContext(ctx, "trading merge complete",
		slog.Int("rows", result.RowCount),
		slog.Int("companies", len(result.Companies)),
		slog.String("output", outputPath),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// LoadMerged reads a previously merged workbook. An empty path loads
// the default merged workbook from the reports directory.
func (s *TradingService) LoadMerged(ctx context.Context, path string) (*domain.TradingDataset, error) {
	if path == "" {
		path = filepath.Join(s.cfg.Paths.ReportsDir, "合并交易量价数据.xlsx")
	}
	ds, err := trading.LoadMerged(path)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "merged trading workbook loaded",
		slog.String("path", path),
		slog.Int("rows", ds.Len()))
	return ds, nil
}

// Analyze computes the ten metrics under one shared filter and writes
// the result workbook.
func (s *TradingService) Analyze(ctx context.Context, ds *domain.TradingDataset, criteria trading.FilterCriteria) (trading.Metrics, string, error) {
	m := s.builder.Calculator().AllMetrics(ctx, ds, criteria)

	outputPath := filepath.Join(s.cfg.Paths.ReportsDir, "分析结果.xlsx")
	if err := exporter.WriteMetricsWorkbook(outputPath, m); err != nil {
		return trading.Metrics{}, "", err
	}
	return m, outputPath, nil
}

// AnalyzeByCompany repeats the computation per company and writes the
// summary workbook.
func (s *TradingService) AnalyzeByCompany(ctx context.Context, ds *domain.TradingDataset, criteria trading.FilterCriteria) ([]trading.CompanyReport, string, error) {
	reports, err := s.builder.ByCompany(ctx, ds, criteria)
	if err != nil {
		return nil, "", err
	}

	outputPath := filepath.Join(s.cfg.Paths.ReportsDir, "分析结果_按公司汇总.xlsx")
	if err := exporter.WriteCompanyReportWorkbook(outputPath, reports); err != nil {
		return nil, "", err
	}
	return reports, outputPath, nil
}

// AnalyzeByUnit repeats the computation per unit or unit group and
// writes the summary workbook.
func (s *TradingService) AnalyzeByUnit(ctx context.Context, ds *domain.TradingDataset, criteria trading.FilterCriteria) ([]trading.UnitReport, string, error) {
	useGroups := s.cfg.Analysis.UseUnitGroups
	reports, err := s.builder.ByUnit(ctx, ds, criteria, useGroups)
	if err != nil {
		return nil, "", err
	}

	grouped := useGroups && ds.Columns.Has(domain.ColUnitGroup)
	outputPath := filepath.Join(s.cfg.Paths.ReportsDir, "分析结果_按机组汇总.xlsx")
	if err := exporter.WriteUnitReportWorkbook(outputPath, reports, grouped); err != nil {
		return nil, "", err
	}
	return reports, outputPath, nil
}
