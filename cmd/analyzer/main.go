package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"spotcli/internal/config"
	"spotcli/internal/infrastructure"
	"spotcli/internal/services"
	"spotcli/internal/trading"
)

func main() {
	mergedPath := flag.String("merged", "", "path to the merged trading workbook (defaults to the one in the reports dir)")
	groupBy := flag.String("by", "", "repeat the analysis per group: company or unit")
	minPrice := flag.Float64("min-price", 0, "lower price bound")
	maxPrice := flag.Float64("max-price", 0, "upper price bound")
	includeMin := flag.Bool("include-min", false, "treat the lower bound as inclusive")
	includeMax := flag.Bool("include-max", false, "treat the upper bound as inclusive")
	priceColumn := flag.String("price-column", "", "column the price bounds apply to")
	startDate := flag.String("start", "", "inclusive start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "inclusive end date (YYYY-MM-DD)")
	company := flag.String("company", "", "keep rows of this company only")
	unit := flag.String("unit", "", "keep rows of this unit only")
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

	cfg.Logging.FilePath = cfg.GetLogPath("analyze.log")
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	criteria, err := buildCriteria(*minPrice, *maxPrice, *includeMin, *includeMax,
		*priceColumn, *startDate, *endDate, *company, *unit, isSet("min-price"), isSet("max-price"))
	if err != nil {
		logger.Error("Invalid filter flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// One trace id for the whole run so its log lines correlate
	ctx := infrastructure.EnsureTraceID(context.Background())
	svc := services.NewTradingService(cfg, logger)

	ds, err := svc.LoadMerged(ctx, *mergedPath)
	if err != nil {
		logger.Error("Failed to load merged workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	switch *groupBy {
	case "":
		metrics, outputPath, err := svc.Analyze(ctx, ds, criteria)
		if err != nil {
			logger.Error("Analysis failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Analysis complete",
			slog.Float64("forecast_hours", metrics.ForecastHours),
			slog.String("output", outputPath))

	case "company":
		reports, outputPath, err := svc.AnalyzeByCompany(ctx, ds, criteria)
		if err != nil {
			logger.Error("Per-company analysis failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Per-company analysis complete",
			slog.Int("companies", len(reports)),
			slog.String("output", outputPath))

	case "unit":
		reports, outputPath, err := svc.AnalyzeByUnit(ctx, ds, criteria)
		if err != nil {
			logger.Error("Per-unit analysis failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Per-unit analysis complete",
			slog.Int("rows", len(reports)),
			slog.String("output", outputPath))

	default:
		logger.Error("Unknown -by value, want company or unit", slog.String("by", *groupBy))
		os.Exit(1)
	}
}

// isSet reports whether a flag was given explicitly, so a zero price
// bound still counts as a bound.
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func buildCriteria(minPrice, maxPrice float64, includeMin, includeMax bool,
	priceColumn, startDate, endDate, company, unit string, hasMin, hasMax bool) (trading.FilterCriteria, error) {

	criteria := trading.FilterCriteria{
		PriceColumn:        priceColumn,
		IncludeMinBoundary: includeMin,
		IncludeMaxBoundary: includeMax,
	}

	if hasMin {
		criteria.MinPrice = &minPrice
	}
	if hasMax {
		criteria.MaxPrice = &maxPrice
	}
	if startDate != "" {
		d, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return trading.FilterCriteria{}, err
		}
		criteria.StartDate = &d
	}
	if endDate != "" {
		d, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return trading.FilterCriteria{}, err
		}
		criteria.EndDate = &d
	}
	if company != "" {
		criteria.Company = &company
	}
	if unit != "" {
		criteria.Unit = &unit
	}

	return criteria, nil
}
