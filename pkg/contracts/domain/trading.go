package domain

import (
	"time"
)

// Trading workbook column labels. These are the named-column contract of the
// merged "交易量价数据汇总" sheet; the loader maps headers to record fields
// through them and the filter/metrics layers reference columns by label.
const (
	ColCompany           = "公司名称"
	ColUnit              = "机组名称"
	ColUnitGroup         = "机组维度"
	ColDate              = "日期"
	ColTimeSlot          = "时点"
	ColForecastNodePrice = "日前出清节点价格"
	ColIntradayNodePrice = "日内出清节点价格"
	ColCrossDAPower      = "省间日前出清电力"
	ColCrossDAPrice      = "省间日前出清价格"
	ColCrossRTPower      = "省间实时出清电力"
	ColCrossRTPrice      = "省间实时出清价格"
	ColCrossTotal        = "省间中标总量"
	ColDACommitted       = "日前中标出力"
	ColIntradayActual    = "日内实际出力"
	ColIntraMLTVolume    = "省内中长期上网电量"
	ColIntraMLTPrice     = "省内中长期均价"
	ColCrossMLTVolume    = "省间中长期上网电量"
	ColCrossMLTPrice     = "省间中长期均价"
)

// Unit group labels derived from the numeric suffix of a unit name.
// Units 1 and 3 fold into one group, 2 and 4 into the other.
const (
	UnitGroup13      = "units 1&3"
	UnitGroup24      = "units 2&4"
	UnitGroupOther   = "other"
	UnitGroupUnknown = "unknown"
)

// TradingRecord is one quarter-hour trading interval for one generating
// unit. Four rows make one hour. Nullable quantities are pointers: a nil
// value means the cell was empty or failed numeric coercion.
type TradingRecord struct {
	Company   string    `json:"company"`
	Unit      string    `json:"unit"`
	UnitGroup string    `json:"unit_group"`
	Date      time.Time `json:"date"`
	TimeSlot  string    `json:"time_slot"`

	ForecastNodePrice *float64 `json:"forecast_node_price"`
	IntradayNodePrice *float64 `json:"intraday_node_price"`

	CrossDAPower *float64 `json:"cross_da_power"`
	CrossDAPrice *float64 `json:"cross_da_price"`
	CrossRTPower *float64 `json:"cross_rt_power"`
	CrossRTPrice *float64 `json:"cross_rt_price"`
	CrossTotal   *float64 `json:"cross_total"`

	DACommitted    *float64 `json:"da_committed"`
	IntradayActual *float64 `json:"intraday_actual"`

	IntraMLTVolume *float64 `json:"intra_mlt_volume"`
	IntraMLTPrice  *float64 `json:"intra_mlt_price"`
	CrossMLTVolume *float64 `json:"cross_mlt_volume"`
	CrossMLTPrice  *float64 `json:"cross_mlt_price"`
}

// ColumnSet records which named columns were present in the loaded workbook.
// Filters and metrics degrade to no-ops or fallbacks when a referenced
// column never existed, instead of failing.
type ColumnSet map[string]bool

// Has reports whether the named column existed in the source workbook.
func (c ColumnSet) Has(name string) bool {
	return c[name]
}

// Clone returns an independent copy of the column set.
func (c ColumnSet) Clone() ColumnSet {
	out := make(ColumnSet, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// TradingDataset is the loaded trading table plus its column presence map.
// Filtered views share the column set and copy the record slice header only;
// records themselves are never mutated.
type TradingDataset struct {
	Records []TradingRecord `json:"records"`
	Columns ColumnSet       `json:"columns"`
}

// Len returns the number of quarter-hour rows in the dataset.
func (d *TradingDataset) Len() int {
	return len(d.Records)
}

// Companies returns the distinct company names in first-appearance order.
func (d *TradingDataset) Companies() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		if !seen[r.Company] {
			seen[r.Company] = true
			out = append(out, r.Company)
		}
	}
	return out
}

// Float returns a pointer to v. Convenience for building records and tests.
func Float(v float64) *float64 {
	return &v
}
