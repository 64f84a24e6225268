package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"spotcli/internal/config"
	"spotcli/internal/infrastructure"
	"spotcli/internal/services"
)

func main() {
	inDir := flag.String("in", "", "directory holding the nine source workbooks (defaults to the configured data dir)")
	exportCSV := flag.Bool("csv", false, "also export the unified table as CSV")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = cfg.GetLogPath("preprocess.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *inDir == "" {
		*inDir = cfg.Paths.DataDir
	}

	logger.Info("Starting boundary preprocessing",
		slog.String("input_dir", *inDir),
		slog.String("reports_dir", cfg.Paths.ReportsDir))

	// One trace id for the whole run so its log lines correlate
	ctx := infrastructure.EnsureTraceID(context.Background())
	svc := services.NewBoundaryService(cfg, logger)

	result, err := svc.Preprocess(ctx, *inDir)
	if err != nil {
		logger.Error("Preprocessing failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *exportCSV {
		csvPath, err := svc.ExportCSV(ctx, result)
		if err != nil {
			logger.Error("CSV export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("CSV exported", slog.String("path", csvPath))
	}

	logger.Info("Preprocessing complete",
		slog.Int("rows", result.RowCount),
		slog.Int("forecast_rows", result.ForecastRows),
		slog.Int("realtime_rows", result.RealtimeRows),
		slog.String("output", result.OutputPath))
}
