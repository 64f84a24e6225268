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
	inDir := flag.String("in", "", "directory holding per-company trading workbooks (defaults to the configured data dir)")
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

	cfg.Logging.FilePath = cfg.GetLogPath("merge.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *inDir == "" {
		*inDir = cfg.Paths.DataDir
	}

	logger.Info("Starting trading merge",
		slog.String("input_dir", *inDir),
		slog.String("reports_dir", cfg.Paths.ReportsDir))

	// One trace id for the whole run so its log lines correlate
	ctx := infrastructure.EnsureTraceID(context.Background())

	svc := services.NewTradingService(cfg, logger)
	result, err := svc.Merge(ctx, *inDir)
	if err != nil {
		logger.Error("Merge failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Merge complete",
		slog.Int("rows", result.RowCount),
		slog.Int("companies", len(result.Companies)),
		slog.String("output", result.OutputPath))
}
