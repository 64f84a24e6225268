package boundary

import (
	"context"
	"log/slog"
	"sort"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/infrastructure"
	"spotcli/internal/sheet"
	"spotcli/pkg/contracts/domain"
)

// SourceSet maps a required source file name to its location on disk.
type SourceSet map[string]string

// Reconciler turns the nine raw source workbooks into the unified
// boundary table.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler. A nil logger falls back to the
// global one.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Reconciler{logger: logger}
}

// Reconcile runs the full reconciliation over the supplied sources and
// returns the unified records in deterministic order: forecast epoch
// before realtime, then date, then time-slot clock value.
//
// Every required source must be present; the first missing one aborts
// the run. Cell-level problems never do.
func (r *Reconciler) Reconcile(ctx context.Context, sources SourceSet) ([]domain.UnifiedRecord, error) {
	specs := config.RequiredSources()

	for _, spec := range specs {
		if _, ok := sources[spec.FileName]; !ok {
			return nil, errors.NewMissingSourceError(spec.FileName)
		}
	}

	tables := make(map[config.SourceKey]*SourceTable, len(specs))
	var capacity *float64

	for _, spec := range specs {
		path := sources[spec.FileName]

		switch spec.Key {
		case config.SourceClearingSummary:
			value, err := ReadClearingSummaryCapacity(path, spec)
			if err != nil {
				return nil, err
			}
			capacity = value
			if capacity == nil {
				r.logger.WarnContext(ctx, "clearing summary carries no online capacity figure",
					slog.String("source", spec.FileName))
			}
		case config.SourceClearingPrice:
			table, err := NormalizeClearingPrice(path, spec)
			if err != nil {
				return nil, err
			}
			tables[spec.Key] = table
		default:
			table, err := NormalizeSource(path, spec)
			if err != nil {
				return nil, err
			}
			tables[spec.Key] = table
		}
	}

	for key, table := range tables {
		r.logger.DebugContext(ctx, "normalized source",
			slog.String("source", string(key)),
			slog.Int("rows", table.Len()))
	}

	prices := tables[config.SourceClearingPrice]

	forecast := tables[config.SourceLoadForecast]
	forecast = outerMerge(forecast, tables[config.SourceRenewableForecast])
	forecast = outerMerge(forecast, tables[config.SourceDisclosure])
	forecast = outerMerge(forecast, tables[config.SourceTieLineForecast])
	forecast = outerMerge(forecast, tables[config.SourceHydroForecast])
	forecast = outerMerge(forecast, prices.project(colForecastPrice))

	realtime := tables[config.SourceGridActual]
	realtime = leftMerge(realtime, tables[config.SourceTieLineRealtime])
	realtime = leftMerge(realtime, prices.project(colRealtimePrice))

	records := materialize(forecast, domain.EpochForecast, capacity)
	records = append(records, materialize(realtime, domain.EpochRealtime, nil)...)

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Epoch != b.Epoch {
			return a.Epoch.SortKey() < b.Epoch.SortKey()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		ca, cb := sheet.SlotClock(a.TimeSlot), sheet.SlotClock(b.TimeSlot)
		if ca != cb {
			return ca < cb
		}
		return a.TimeSlot < b.TimeSlot
	})

	r.logger.InfoContext(ctx, "reconciliation complete",
		slog.Int("forecast_rows", forecast.Len()),
		slog.Int("realtime_rows", realtime.Len()),
		slog.Bool("capacity_found", capacity != nil))

	return records, nil
}

// project returns a copy of the table retaining only the named quantity
// columns. Keys and order are preserved.
func (t *SourceTable) project(names ...string) *SourceTable {
	out := newSourceTable(t.Key)
	for _, key := range t.order {
		values := make(quantityRow, len(names))
		for _, name := range names {
			if v, ok := t.rows[key][name]; ok {
				values[name] = v
			}
		}
		out.rows[key] = values
		out.dates[key] = t.dates[key]
		out.order = append(out.order, key)
	}
	return out
}

// outerMerge joins two tables on (date, time-slot), keeping every key
// from either side. Left keys keep their position; keys only the right
// side has are appended in the right side's order.
func outerMerge(left, right *SourceTable) *SourceTable {
	out := newSourceTable(left.Key)
	for _, key := range left.order {
		out.rows[key] = mergeValues(left.rows[key], right.rows[key])
		out.dates[key] = left.dates[key]
		out.order = append(out.order, key)
	}
	for _, key := range right.order {
		if _, ok := out.rows[key]; ok {
			continue
		}
		out.rows[key] = mergeValues(nil, right.rows[key])
		out.dates[key] = right.dates[key]
		out.order = append(out.order, key)
	}
	return out
}

// leftMerge joins two tables on (date, time-slot), keeping only the left
// side's keys. Right-only keys are dropped.
func leftMerge(left, right *SourceTable) *SourceTable {
	out := newSourceTable(left.Key)
	for _, key := range left.order {
		out.rows[key] = mergeValues(left.rows[key], right.rows[key])
		out.dates[key] = left.dates[key]
		out.order = append(out.order, key)
	}
	return out
}

func mergeValues(left, right quantityRow) quantityRow {
	out := make(quantityRow, len(left)+len(right))
	for name, v := range left {
		out[name] = v
	}
	for name, v := range right {
		if _, ok := out[name]; !ok {
			out[name] = v
		}
	}
	return out
}

// materialize converts a joined table into fixed-shape unified records.
// Columns no source populates (bidding space, load rate) stay null, and
// the capacity scalar is broadcast across every row of the partition.
func materialize(t *SourceTable, epoch domain.Epoch, capacity *float64) []domain.UnifiedRecord {
	records := make([]domain.UnifiedRecord, 0, len(t.order))
	for _, key := range t.order {
		row := t.rows[key]
		records = append(records, domain.UnifiedRecord{
			Date:                  t.dates[key],
			TimeSlot:              key.Slot,
			Epoch:                 epoch,
			GridLoad:              row[colGridLoad],
			Wind:                  row[colWind],
			Solar:                 row[colSolar],
			RenewableLoad:         row[colRenewableLoad],
			NonMarketOutput:       row[colNonMarketOutput],
			HydroOutput:           row[colHydroOutput],
			TieLinePlan:           row[colTieLinePlan],
			OnlineCapacity:        capacity,
			ForecastClearingPrice: row[colForecastPrice],
			RealtimeClearingPrice: row[colRealtimePrice],
		})
	}
	return records
}
