package domain

import (
	"time"
)

// Epoch partitions the unified boundary table into the day-ahead forecast
// rows and the realtime telemetry rows. Forecast sorts before realtime.
type Epoch string

const (
	EpochForecast Epoch = "日前"
	EpochRealtime Epoch = "实时"
)

// SortKey returns the ordering rank of the epoch in the unified table.
func (e Epoch) SortKey() int {
	if e == EpochForecast {
		return 0
	}
	return 1
}

// JoinMode selects the row-cardinality semantics used when a normalized
// source is merged into an epoch partition. Outer joins keep every
// (date, time-slot) key seen on either side; left joins only supplement
// columns of keys already present on the authoritative side.
type JoinMode string

const (
	JoinOuter JoinMode = "outer"
	JoinLeft  JoinMode = "left"
)

// UnifiedRecord is one reconciled row of the boundary table. The column set
// is fixed: quantities never populated by any source (bidding space, load
// rate) are carried as nil rather than omitted, so every run exports the
// same 15-column sheet.
type UnifiedRecord struct {
	Date                  time.Time `json:"date"`
	TimeSlot              string    `json:"time_slot"`
	Epoch                 Epoch     `json:"epoch"`
	BiddingSpace          *float64  `json:"bidding_space"`
	GridLoad              *float64  `json:"grid_load"`
	Wind                  *float64  `json:"wind"`
	Solar                 *float64  `json:"solar"`
	RenewableLoad         *float64  `json:"renewable_load"`
	NonMarketOutput       *float64  `json:"non_market_output"`
	HydroOutput           *float64  `json:"hydro_output"`
	TieLinePlan           *float64  `json:"tie_line_plan"`
	OnlineCapacity        *float64  `json:"online_capacity"`
	ForecastClearingPrice *float64  `json:"forecast_clearing_price"`
	RealtimeClearingPrice *float64  `json:"realtime_clearing_price"`
	LoadRate              *float64  `json:"load_rate"`
}

// UnifiedColumns lists the exported boundary sheet headers in contract order.
// The Chinese labels are the schema of the downstream workbook, not UI text.
var UnifiedColumns = []string{
	"日期",
	"时点",
	"边界数据类型",
	"竞价空间(MW)",
	"省调负荷(MW)",
	"风电(MW)",
	"光伏(MW)",
	"新能源负荷(MW)",
	"非市场化出力(MW)",
	"水电出力(MW)",
	"联络线计划(MW)",
	"在线机组容量(MW)",
	"日前出清价格(元/MWh)",
	"实时出清价格(元/MWh)",
	"负荷率(%)",
}
