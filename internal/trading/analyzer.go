package trading

import (
	"context"
	"log/slog"

	"spotcli/internal/config"
	"spotcli/internal/infrastructure"
	"spotcli/pkg/contracts/domain"
)

// Metrics carries the ten trading metrics computed under one shared
// filter. Averages over empty filtered sets are 0.0, never an error.
type Metrics struct {
	ForecastHours          float64 `json:"forecast_hours"`
	RealtimeHours          float64 `json:"realtime_hours"`
	ForecastAvgPrice       float64 `json:"forecast_avg_price"`
	RealtimeAvgPrice       float64 `json:"realtime_avg_price"`
	CrossAvgPrice          float64 `json:"cross_avg_price"`
	CrossCommittedVolume   float64 `json:"cross_committed_volume"`
	ForecastCommittedPower float64 `json:"forecast_committed_power"`
	ActualOutputPower      float64 `json:"actual_output_power"`
	MLTAvgPosition         float64 `json:"mlt_avg_position"`
	MLTWeightedAvgPrice    float64 `json:"mlt_weighted_avg_price"`
}

// MetricLabels are the report row labels, in metric order.
var MetricLabels = []string{
	"1. 日前小时数",
	"2. 实时小时数",
	"3. 日前价格均价",
	"4. 实时价格均价",
	"5. 省间价格均价",
	"6. 省间中标电量",
	"7. 日前中标电量",
	"8. 实际出力电量",
	"9. 中长期持仓电量均值",
	"10. 中长期持仓加权均价",
}

// Values returns the metric values in the same order as MetricLabels.
func (m Metrics) Values() []float64 {
	return []float64{
		m.ForecastHours,
		m.RealtimeHours,
		m.ForecastAvgPrice,
		m.RealtimeAvgPrice,
		m.CrossAvgPrice,
		m.CrossCommittedVolume,
		m.ForecastCommittedPower,
		m.ActualOutputPower,
		m.MLTAvgPosition,
		m.MLTWeightedAvgPrice,
	}
}

// Calculator computes the trading metrics over filtered views.
type Calculator struct {
	engine *Engine
	cfg    config.AnalysisConfig
	logger *slog.Logger
}

// NewCalculator creates a calculator. A nil logger falls back to the
// global one.
func NewCalculator(cfg config.AnalysisConfig, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Calculator{
		engine: NewEngine(logger),
		cfg:    cfg,
		logger: logger,
	}
}

// factor resolves the company's power-conversion factor from the
// criteria; an unset or unknown company uses the default.
func (c *Calculator) factor(criteria FilterCriteria) float64 {
	if criteria.Company == nil {
		return c.cfg.DefaultFactor
	}
	return c.cfg.Factor(*criteria.Company)
}

// forecastFiltered applies the criteria with the price bounds fixed to
// the day-ahead clearing node price column.
func (c *Calculator) forecastFiltered(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) *domain.TradingDataset {
	criteria.PriceColumn = domain.ColForecastNodePrice
	return c.engine.Apply(ctx, ds, criteria)
}

// ForecastHours is metric 1: filtered quarter-hour row count over four.
func (c *Calculator) ForecastHours(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	return float64(filtered.Len()) / 4
}

// RealtimeHours is metric 2: the forecast-filtered rows pass a second
// stage applying the same price bounds and inclusivity flags to the
// intraday clearing node price.
func (c *Calculator) RealtimeHours(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	filtered = c.engine.filterByPrice(ctx, filtered, domain.ColIntradayNodePrice, criteria)
	return float64(filtered.Len()) / 4
}

// ForecastAvgPrice is metric 3: mean day-ahead clearing node price over
// the filtered rows, skipping nulls.
func (c *Calculator) ForecastAvgPrice(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	return meanOf(filtered, func(r *domain.TradingRecord) *float64 { return r.ForecastNodePrice })
}

// RealtimeAvgPrice is metric 4: mean intraday price over rows filtered
// by the day-ahead price only.
func (c *Calculator) RealtimeAvgPrice(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	return meanOf(filtered, func(r *domain.TradingRecord) *float64 { return r.IntradayNodePrice })
}

// CrossAvgPrice is metric 5: power-weighted average of the day-ahead and
// realtime cross-provincial legs. Nulls count as zero; a zero power
// denominator yields 0.0.
func (c *Calculator) CrossAvgPrice(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.engine.Apply(ctx, ds, criteria)

	var numerator, denominator float64
	for i := range filtered.Records {
		r := &filtered.Records[i]
		numerator += nz(r.CrossDAPower)*nz(r.CrossDAPrice) + nz(r.CrossRTPower)*nz(r.CrossRTPrice)
		denominator += nz(r.CrossDAPower) + nz(r.CrossRTPower)
	}
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

// CrossCommittedVolume is metric 6: the summed cross-provincial cleared
// power, falling back to the combined total column when the per-leg
// columns are absent, scaled by the conversion factor.
func (c *Calculator) CrossCommittedVolume(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.engine.Apply(ctx, ds, criteria)

	var total float64
	switch {
	case filtered.Columns.Has(domain.ColCrossDAPower) && filtered.Columns.Has(domain.ColCrossRTPower):
		for i := range filtered.Records {
			r := &filtered.Records[i]
			total += nz(r.CrossDAPower) + nz(r.CrossRTPower)
		}
	case filtered.Columns.Has(domain.ColCrossTotal):
		for i := range filtered.Records {
			total += nz(filtered.Records[i].CrossTotal)
		}
	default:
		c.logger.WarnContext(ctx, "no cross-provincial power columns, committed volume is zero")
		return 0.0
	}

	return total * c.factor(criteria)
}

// ForecastCommittedPower is metric 7: average day-ahead committed output
// per hour, scaled by the conversion factor.
func (c *Calculator) ForecastCommittedPower(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	return c.hourlyAverage(filtered, criteria, func(r *domain.TradingRecord) *float64 { return r.DACommitted })
}

// ActualOutputPower is metric 8: same formula as metric 7 over the
// intraday actual output.
func (c *Calculator) ActualOutputPower(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.forecastFiltered(ctx, ds, criteria)
	return c.hourlyAverage(filtered, criteria, func(r *domain.TradingRecord) *float64 { return r.IntradayActual })
}

// hourlyAverage is the shared shape of metrics 7 and 8: the quantity sum
// converted to hourly energy, scaled, divided by the filtered hours.
func (c *Calculator) hourlyAverage(filtered *domain.TradingDataset, criteria FilterCriteria, get func(*domain.TradingRecord) *float64) float64 {
	if filtered.Len() == 0 {
		return 0.0
	}
	hours := float64(filtered.Len()) / 4
	if hours == 0 {
		return 0.0
	}

	var total float64
	for i := range filtered.Records {
		total += nz(get(&filtered.Records[i]))
	}
	total /= 4 // quarter-hour power to hourly energy

	return total * c.factor(criteria) / hours
}

// MLTAvgPosition is metric 9: combined intra- and cross-provincial
// medium/long-term contracted volume per hour, scaled by the conversion
// factor.
func (c *Calculator) MLTAvgPosition(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.engine.Apply(ctx, ds, criteria)
	if filtered.Len() == 0 {
		return 0.0
	}
	hours := float64(filtered.Len()) / 4
	if hours == 0 {
		return 0.0
	}

	var total float64
	for i := range filtered.Records {
		r := &filtered.Records[i]
		total += nz(r.IntraMLTVolume) + nz(r.CrossMLTVolume)
	}

	return total * c.factor(criteria) / hours
}

// MLTWeightedAvgPrice is metric 10: volume-weighted average of the
// medium/long-term prices across both market legs; 0.0 when no volume.
func (c *Calculator) MLTWeightedAvgPrice(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) float64 {
	filtered := c.engine.Apply(ctx, ds, criteria)

	var numerator, denominator float64
	for i := range filtered.Records {
		r := &filtered.Records[i]
		numerator += nz(r.IntraMLTVolume)*nz(r.IntraMLTPrice) + nz(r.CrossMLTVolume)*nz(r.CrossMLTPrice)
		denominator += nz(r.IntraMLTVolume) + nz(r.CrossMLTVolume)
	}
	if denominator == 0 {
		return 0.0
	}
	return numerator / denominator
}

// AllMetrics computes the ten metrics under one shared filter.
func (c *Calculator) AllMetrics(ctx context.Context, ds *domain.TradingDataset, criteria FilterCriteria) Metrics {
	return Metrics{
		ForecastHours:          c.ForecastHours(ctx, ds, criteria),
		RealtimeHours:          c.RealtimeHours(ctx, ds, criteria),
		ForecastAvgPrice:       c.ForecastAvgPrice(ctx, ds, criteria),
		RealtimeAvgPrice:       c.RealtimeAvgPrice(ctx, ds, criteria),
		CrossAvgPrice:          c.CrossAvgPrice(ctx, ds, criteria),
		CrossCommittedVolume:   c.CrossCommittedVolume(ctx, ds, criteria),
		ForecastCommittedPower: c.ForecastCommittedPower(ctx, ds, criteria),
		ActualOutputPower:      c.ActualOutputPower(ctx, ds, criteria),
		MLTAvgPosition:         c.MLTAvgPosition(ctx, ds, criteria),
		MLTWeightedAvgPrice:    c.MLTWeightedAvgPrice(ctx, ds, criteria),
	}
}

// nz treats a null quantity as zero in sums.
func nz(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// meanOf is the null-skipping mean over one column; 0.0 when every value
// is null or the view is empty.
func meanOf(ds *domain.TradingDataset, get func(*domain.TradingRecord) *float64) float64 {
	var sum float64
	var n int
	for i := range ds.Records {
		if v := get(&ds.Records[i]); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}
