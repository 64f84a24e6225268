package trading

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"spotcli/internal/config"
	"spotcli/internal/infrastructure"
	"spotcli/pkg/contracts/domain"
)

// CompanyReport is one row of the by-company summary.
type CompanyReport struct {
	Company string  `json:"company"`
	Metrics Metrics `json:"metrics"`
}

// UnitReport is one row of the by-unit summary. When unit grouping is in
// effect the row covers a whole unit group and UnitNames lists the raw
// unit names folded into it; otherwise Unit carries the single name.
type UnitReport struct {
	Company   string   `json:"company"`
	UnitGroup string   `json:"unit_group,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	UnitNames []string `json:"unit_names,omitempty"`
	Metrics   Metrics  `json:"metrics"`
}

// Builder fans the full metric computation out across independent
// groups. Each group reads the shared base dataset without mutating it,
// and results are assembled by index so the output order matches the
// first-appearance order of the groups.
type Builder struct {
	calc   *Calculator
	logger *slog.Logger
}

// NewBuilder creates a grouped-report builder. A nil logger falls back
// to the global one.
func NewBuilder(cfg config.AnalysisConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Builder{
		calc:   NewCalculator(cfg, logger),
		logger: logger,
	}
}

// Calculator exposes the underlying metric calculator for single-shot
// analysis under one filter.
func (b *Builder) Calculator() *Calculator {
	return b.calc
}

// ByCompany repeats the full ten-metric computation once per distinct
// company in the dataset.
func (b *Builder) ByCompany(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) ([]CompanyReport, error) {
	if !ds.Columns.Has(domain.ColCompany) {
		b.logger.WarnContext(ctx, "company column absent, by-company report is empty")
		return nil, nil
	}

	companies := ds.Companies()
	reports := make([]CompanyReport, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	for i, company := range companies {
		i, company := i, company
		g.Go(func() error {
			crit := criteria
			crit.Company = &company
			reports[i] = CompanyReport{
				Company: company,
				Metrics: b.calc.AllMetrics(gctx, ds, crit),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// unitTarget is one row the by-unit report will compute.
type unitTarget struct {
	company   string
	unitGroup string
	unit      string
	unitNames []string
}

// ByUnit repeats the computation once per (company, unit group) when
// grouping is enabled and the group column exists, otherwise once per
// (company, unit name).
func (b *Builder) ByUnit(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria, useGroups bool) ([]UnitReport, error) {
	if !ds.Columns.Has(domain.ColCompany) || !ds.Columns.Has(domain.ColUnit) {
		b.logger.WarnContext(ctx, "company or unit column absent, by-unit report is empty")
		return nil, nil
	}

	grouping := useGroups && ds.Columns.Has(domain.ColUnitGroup)
	targets := collectUnitTargets(ds, grouping)
	reports := make([]UnitReport, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			crit := criteria
			crit.Company = &target.company
			if grouping {
				crit.UnitGroup = &target.unitGroup
			} else {
				crit.Unit = &target.unit
			}
			reports[i] = UnitReport{
				Company:   target.company,
				UnitGroup: target.unitGroup,
				Unit:      target.unit,
				UnitNames: target.unitNames,
				Metrics:   b.calc.AllMetrics(gctx, ds, crit),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// collectUnitTargets walks the dataset once and lists the report rows in
// first-appearance order of (company, group-or-unit).
func collectUnitTargets(ds *domain.TradingDataset, grouping bool) []unitTarget {
	type key struct{ company, target string }
	index := make(map[key]int)
	var targets []unitTarget

	for i := range ds.Records {
		r := &ds.Records[i]

		name := r.Unit
		if grouping {
			name = r.UnitGroup
			if name == "" {
				continue
			}
		}

		k := key{r.Company, name}
		at, seen := index[k]
		if !seen {
			at = len(targets)
			index[k] = at
			t := unitTarget{company: r.Company}
			if grouping {
				t.unitGroup = name
			} else {
				t.unit = name
			}
			targets = append(targets, t)
		}

		if grouping && !slices.Contains(targets[at].unitNames, r.Unit) {
			targets[at].unitNames = append(targets[at].unitNames, r.Unit)
		}
	}

	return targets
}
