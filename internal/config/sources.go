package config

import (
	"spotcli/pkg/contracts/domain"
)

// SourceKey identifies one of the nine required boundary source workbooks.
type SourceKey string

const (
	SourceLoadForecast      SourceKey = "load_forecast"
	SourceRenewableForecast SourceKey = "renewable_forecast"
	SourceDisclosure        SourceKey = "disclosure"
	SourceTieLineForecast   SourceKey = "tie_line_forecast"
	SourceClearingSummary   SourceKey = "clearing_summary"
	SourceHydroForecast     SourceKey = "hydro_forecast"
	SourceGridActual        SourceKey = "grid_actual"
	SourceTieLineRealtime   SourceKey = "tie_line_realtime"
	SourceClearingPrice     SourceKey = "clearing_price"
)

// SourceSpec is the fixed schema contract of one raw source workbook.
// Column positions are part of the upstream file format, not configuration
// a user may change; modelling them as data keeps each parser declarative
// and the join direction an explicit business decision.
type SourceSpec struct {
	Key      SourceKey       `yaml:"key"`
	FileName string          `yaml:"file_name"`
	Join     domain.JoinMode `yaml:"join"`

	// Positional column contract (0-based sheet columns). Sources that
	// address columns by header name instead leave these at -1.
	DateCol int `yaml:"date_col"`
	SlotCol int `yaml:"slot_col"`

	// SkipUnitsRow drops the first data row under the header (a repeated
	// units row in eight of the nine sources).
	SkipUnitsRow bool `yaml:"skip_units_row"`

	// AggregateCol/AggregateValue retain only aggregate rows of the
	// tie-line sources, discarding per-interconnector detail.
	AggregateCol   int    `yaml:"aggregate_col"`
	AggregateValue string `yaml:"aggregate_value"`
}

// TieLineAggregateLabel marks the system-total rows of the tie-line sources.
const TieLineAggregateLabel = "总加"

// TradingSheetName is the per-company workbook sheet holding trading rows.
const TradingSheetName = "1.交易量价数据信息"

// MergedTradingSheetName is the sheet name of the merged trading workbook.
const MergedTradingSheetName = "交易量价数据汇总"

// BoundarySheetName is the sheet name of the exported unified table.
const BoundarySheetName = "预处理数据"

// RequiredSources returns the nine-source contract in reconciliation order.
// Absence of any of these files is fatal for the whole run.
func RequiredSources() []SourceSpec {
	return []SourceSpec{
		{
			Key:          SourceLoadForecast,
			FileName:     "日前统调系统负荷预测_REPORT0.xlsx",
			Join:         domain.JoinOuter,
			DateCol:      1,
			SlotCol:      2,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:          SourceRenewableForecast,
			FileName:     "日前新能源负荷预测_REPORT0.xlsx",
			Join:         domain.JoinOuter,
			DateCol:      1,
			SlotCol:      2,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:          SourceDisclosure,
			FileName:     "披露信息96点数据_REPORT0.xlsx",
			Join:         domain.JoinOuter,
			DateCol:      1,
			SlotCol:      2,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:            SourceTieLineForecast,
			FileName:       "日前联络线计划_REPORT0.xlsx",
			Join:           domain.JoinOuter,
			DateCol:        2,
			SlotCol:        3,
			SkipUnitsRow:   true,
			AggregateCol:   1,
			AggregateValue: TieLineAggregateLabel,
		},
		{
			Key:          SourceClearingSummary,
			FileName:     "日前市场出清情况_TABLE.xlsx",
			Join:         domain.JoinOuter, // scalar broadcast, no keyed join
			DateCol:      -1,
			SlotCol:      -1,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:          SourceHydroForecast,
			FileName:     "日前水电计划发电总出力预测_REPORT0.xlsx",
			Join:         domain.JoinOuter,
			DateCol:      1,
			SlotCol:      2,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:          SourceGridActual,
			FileName:     "96点电网运行实际值_REPORT0.xlsx",
			Join:         domain.JoinLeft, // authoritative side of the realtime partition
			DateCol:      1,
			SlotCol:      2,
			SkipUnitsRow: true,
			AggregateCol: -1,
		},
		{
			Key:            SourceTieLineRealtime,
			FileName:       "实时联络线计划_REPORT0.xlsx",
			Join:           domain.JoinLeft,
			DateCol:        2,
			SlotCol:        3,
			SkipUnitsRow:   true,
			AggregateCol:   1,
			AggregateValue: TieLineAggregateLabel,
		},
		{
			Key:          SourceClearingPrice,
			FileName:     "现货出清电价_REPORT0.xlsx",
			Join:         domain.JoinOuter, // outer for forecast, left for realtime
			DateCol:      -1,               // addressed by header name
			SlotCol:      -1,
			SkipUnitsRow: false,
			AggregateCol: -1,
		},
	}
}

// RequiredSourceFiles returns the nine required file names in contract order.
func RequiredSourceFiles() []string {
	specs := RequiredSources()
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.FileName)
	}
	return names
}

// SourceByKey looks up a source contract by key.
func SourceByKey(key SourceKey) (SourceSpec, bool) {
	for _, s := range RequiredSources() {
		if s.Key == key {
			return s, true
		}
	}
	return SourceSpec{}, false
}

// DefaultConversionFactors is the fleet table mapping a company to the
// factor converting its cleared electricity to nameplate-capacity terms.
// Companies not listed use AnalysisConfig.DefaultFactor.
func DefaultConversionFactors() map[string]float64 {
	return map[string]float64{
		"同华": 660.0 / 660.0,
		"塔山": 660.0 / 600.0,
		"阳高": 660.0 / 350.0,
		"同达": 660.0 / 330.0,
		"王坪": 660.0 / 200.0,
		"蒲洲": 660.0 / 350.0,
		"河津": 660.0 / 350.0,
		"临汾": 660.0 / 300.0,
		"侯马": 660.0 / 300.0,
	}
}
