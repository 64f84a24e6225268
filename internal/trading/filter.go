package trading

import (
	"context"
	"log/slog"
	"time"

	"spotcli/internal/infrastructure"
	"spotcli/pkg/contracts/domain"
)

// quantityGetters maps a column label to the record field it reads.
// Only price-bearing columns are needed by the filter layer.
var quantityGetters = map[string]func(*domain.TradingRecord) *float64{
	domain.ColForecastNodePrice: func(r *domain.TradingRecord) *float64 { return r.ForecastNodePrice },
	domain.ColIntradayNodePrice: func(r *domain.TradingRecord) *float64 { return r.IntradayNodePrice },
	domain.ColCrossDAPrice:      func(r *domain.TradingRecord) *float64 { return r.CrossDAPrice },
	domain.ColCrossRTPrice:      func(r *domain.TradingRecord) *float64 { return r.CrossRTPrice },
	domain.ColIntraMLTPrice:     func(r *domain.TradingRecord) *float64 { return r.IntraMLTPrice },
	domain.ColCrossMLTPrice:     func(r *domain.TradingRecord) *float64 { return r.CrossMLTPrice },
}

// FilterCriteria layers the optional row filters. Price bounds are
// independently optional and share one pair of inclusivity flags; both
// stages of the realtime-hours metric reapply the same flags.
type FilterCriteria struct {
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
	PriceColumn string   `json:"price_column"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	Company   *string `json:"company"`
	Unit      *string `json:"unit"`
	UnitGroup *string `json:"unit_group"`

	IncludeMinBoundary bool `json:"include_min_boundary"`
	IncludeMaxBoundary bool `json:"include_max_boundary"`
}

// priceColumn resolves the filter's price column, defaulting to the
// day-ahead clearing node price.
func (c FilterCriteria) priceColumn() string {
	if c.PriceColumn != "" {
		return c.PriceColumn
	}
	return domain.ColForecastNodePrice
}

func (c FilterCriteria) hasPriceBounds() bool {
	return c.MinPrice != nil || c.MaxPrice != nil
}

// passesPriceBounds applies the min/max bounds with their inclusivity
// flags. A nil value always fails when any bound is set.
func (c FilterCriteria) passesPriceBounds(v *float64) bool {
	if v == nil {
		return false
	}
	if c.MinPrice != nil {
		if c.IncludeMinBoundary {
			if *v < *c.MinPrice {
				return false
			}
		} else if *v <= *c.MinPrice {
			return false
		}
	}
	if c.MaxPrice != nil {
		if c.IncludeMaxBoundary {
			if *v > *c.MaxPrice {
				return false
			}
		} else if *v >= *c.MaxPrice {
			return false
		}
	}
	return true
}

// Engine applies filter criteria to a dataset, producing new views.
// Filters on columns the workbook never had degrade to no-ops with a
// warning instead of failing.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a filter engine. A nil logger falls back to the
// global one.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Engine{logger: logger}
}

// Apply filters the dataset in fixed order: price, date, company, unit,
// unit group. The input dataset is untouched; the returned view shares
// the column set and holds its own record slice.
func (e *Engine) Apply(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) *domain.TradingDataset {
	out := ds

	if criteria.hasPriceBounds() {
		out = e.filterByPrice(ctx, out, criteria.priceColumn(), criteria)
	}

	if criteria.StartDate != nil || criteria.EndDate != nil {
		if !out.Columns.Has(domain.ColDate) {
			e.logger.WarnContext(ctx, "date filter skipped, column absent",
				slog.String("column", domain.ColDate))
		} else {
			out = keep(out, func(r *domain.TradingRecord) bool {
				// Rows whose date never parsed fail any date bound
				if r.Date.IsZero() {
					return false
				}
				if criteria.StartDate != nil && r.Date.Before(*criteria.StartDate) {
					return false
				}
				if criteria.EndDate != nil && r.Date.After(*criteria.EndDate) {
					return false
				}
				return true
			})
		}
	}

	if criteria.Company != nil {
		if !out.Columns.Has(domain.ColCompany) {
			e.logger.WarnContext(ctx, "company filter skipped, column absent",
				slog.String("column", domain.ColCompany))
		} else {
			out = keep(out, func(r *domain.TradingRecord) bool { return r.Company == *criteria.Company })
		}
	}

	if criteria.Unit != nil {
		if !out.Columns.Has(domain.ColUnit) {
			e.logger.WarnContext(ctx, "unit filter skipped, column absent",
				slog.String("column", domain.ColUnit))
		} else {
			out = keep(out, func(r *domain.TradingRecord) bool { return r.Unit == *criteria.Unit })
		}
	}

	if criteria.UnitGroup != nil {
		if !out.Columns.Has(domain.ColUnitGroup) {
			e.logger.WarnContext(ctx, "unit group filter skipped, column absent",
				slog.String("column", domain.ColUnitGroup))
		} else {
			out = keep(out, func(r *domain.TradingRecord) bool { return r.UnitGroup == *criteria.UnitGroup })
		}
	}

	if out == ds {
		// No filter applied; still hand back an independent view
		out = &domain.TradingDataset{Records: ds.Records, Columns: ds.Columns}
	}
	return out
}

// filterByPrice applies the criteria's price bounds against the named
// column. The realtime-hours metric calls this a second time with the
// intraday column and the same inclusivity flags.
func (e *Engine) filterByPrice(ctx context.Context, ds *domain.TradingDataset, column string, criteria FilterCriteria) *domain.TradingDataset {
	if !criteria.hasPriceBounds() {
		return ds
	}

	get, known := quantityGetters[column]
	if !known || !ds.Columns.Has(column) {
		e.logger.WarnContext(ctx, "price filter skipped, column absent",
			slog.String("column", column))
		return ds
	}

	return keep(ds, func(r *domain.TradingRecord) bool {
		return criteria.passesPriceBounds(get(r))
	})
}

// keep returns a new view holding the records pred accepts.
func keep(ds *domain.TradingDataset, pred func(*domain.TradingRecord) bool) *domain.TradingDataset {
	out := &domain.TradingDataset{Columns: ds.Columns}
	for i := range ds.Records {
		if pred(&ds.Records[i]) {
			out.Records = append(out.Records, ds.Records[i])
		}
	}
	return out
}
