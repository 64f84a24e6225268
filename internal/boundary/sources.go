package boundary

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/sheet"
)

// Quantity column identifiers contributed by the normalized sources.
// These name UnifiedRecord fields, not raw sheet headers.
const (
	colGridLoad        = "grid_load"
	colWind            = "wind"
	colSolar           = "solar"
	colRenewableLoad   = "renewable_load"
	colNonMarketOutput = "non_market_output"
	colHydroOutput     = "hydro_output"
	colTieLinePlan     = "tie_line_plan"
	colForecastPrice   = "forecast_clearing_price"
	colRealtimePrice   = "realtime_clearing_price"
)

// Named-column headers of the clearing-price source, the only source
// addressed by header name instead of position.
const (
	priceHeaderSeq      = "序号"
	priceHeaderDate     = "日期"
	priceHeaderSlot     = "时点"
	priceHeaderRealtime = "实时出清价格(元/MWh)"
	priceHeaderForecast = "日前出清价格(元/MWh)"
)

// quantityCol binds one positional sheet column to a quantity identifier.
type quantityCol struct {
	name string
	col  int
}

// quantityContract fixes which sheet columns each positional source
// contributes. Part of the upstream file format, like the key columns in
// config.SourceSpec.
var quantityContract = map[config.SourceKey][]quantityCol{
	config.SourceLoadForecast: {
		{colGridLoad, 3},
	},
	config.SourceRenewableForecast: {
		{colRenewableLoad, 3},
		{colWind, 4},
		{colSolar, 5},
	},
	config.SourceDisclosure: {
		{colNonMarketOutput, 3},
	},
	config.SourceTieLineForecast: {
		{colTieLinePlan, 4},
	},
	config.SourceHydroForecast: {
		{colHydroOutput, 3},
	},
	config.SourceGridActual: {
		{colGridLoad, 3},
		{colWind, 5},
		{colSolar, 6},
		{colRenewableLoad, 7},
		{colHydroOutput, 8},
		{colNonMarketOutput, 11},
	},
	config.SourceTieLineRealtime: {
		{colTieLinePlan, 4},
	},
}

// slotKey is the (date, time-slot) join key. The date is carried as an
// ISO string so the key is directly comparable.
type slotKey struct {
	Date string
	Slot string
}

// quantityRow holds the quantity values one or more sources contributed
// for a single join key. Missing or uncoercible cells stay absent.
type quantityRow map[string]*float64

// SourceTable is one normalized source: a keyed table of quantity rows.
// Duplicate (date, time-slot) keys keep the first occurrence.
type SourceTable struct {
	Key   config.SourceKey
	rows  map[slotKey]quantityRow
	dates map[slotKey]time.Time
	order []slotKey
}

func newSourceTable(key config.SourceKey) *SourceTable {
	return &SourceTable{
		Key:   key,
		rows:  make(map[slotKey]quantityRow),
		dates: make(map[slotKey]time.Time),
	}
}

// Len returns the number of retained (date, time-slot) keys.
func (t *SourceTable) Len() int {
	return len(t.rows)
}

func (t *SourceTable) add(date time.Time, slot string, values quantityRow) {
	key := slotKey{Date: date.Format("2006-01-02"), Slot: slot}
	if _, exists := t.rows[key]; exists {
		return
	}
	t.rows[key] = values
	t.dates[key] = date
	t.order = append(t.order, key)
}

// sheetRows returns the rows of the first sheet in the workbook.
func sheetRows(f *excelize.File) ([][]string, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// NormalizeSource reads one positional source workbook and produces its
// keyed table. Rows with an unparseable date or an empty time-slot are
// dropped; numeric coercion failures become nulls. The first data row
// under the header is a repeated units row and is skipped when the
// contract says so.
func NormalizeSource(path string, spec config.SourceSpec) (*SourceTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open source %s", spec.FileName), err)
	}
	defer f.Close()

	rows, err := sheetRows(f)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read source %s", spec.FileName), err)
	}

	table := newSourceTable(spec.Key)

	start := 1 // header row consumed
	if spec.SkipUnitsRow {
		start = 2
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]

		if spec.AggregateCol >= 0 && sheet.CellAt(row, spec.AggregateCol) != spec.AggregateValue {
			continue
		}

		date, ok := sheet.ParseDate(sheet.CellAt(row, spec.DateCol))
		if !ok {
			continue
		}
		slot := sheet.CellAt(row, spec.SlotCol)
		if slot == "" {
			continue
		}

		values := make(quantityRow)
		for _, qc := range quantityContract[spec.Key] {
			values[qc.name] = sheet.ParseFloat(sheet.CellAt(row, qc.col))
		}
		table.add(date, slot, values)
	}

	return table, nil
}

// NormalizeClearingPrice reads the clearing-price source. Columns are
// addressed by header name, and interleaved daily-average summary rows
// (those whose sequence number is non-numeric) are discarded.
func NormalizeClearingPrice(path string, spec config.SourceSpec) (*SourceTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open source %s", spec.FileName), err)
	}
	defer f.Close()

	rows, err := sheetRows(f)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read source %s", spec.FileName), err)
	}
	if len(rows) == 0 {
		return newSourceTable(spec.Key), nil
	}

	headerIdx := make(map[string]int)
	for j := range rows[0] {
		headerIdx[sheet.CellAt(rows[0], j)] = j
	}
	for _, required := range []string{priceHeaderSeq, priceHeaderDate, priceHeaderSlot, priceHeaderRealtime, priceHeaderForecast} {
		if _, ok := headerIdx[required]; !ok {
			return nil, errors.NewParsingError(
				fmt.Sprintf("source %s is missing column %q", spec.FileName, required), nil)
		}
	}

	table := newSourceTable(spec.Key)

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// Daily-average summary rows carry a non-numeric sequence number
		if sheet.ParseFloat(sheet.CellAt(row, headerIdx[priceHeaderSeq])) == nil {
			continue
		}

		date, ok := sheet.ParseDate(sheet.CellAt(row, headerIdx[priceHeaderDate]))
		if !ok {
			continue
		}
		slot := sheet.CellAt(row, headerIdx[priceHeaderSlot])
		if slot == "" {
			continue
		}

		table.add(date, slot, quantityRow{
			colRealtimePrice: sheet.ParseFloat(sheet.CellAt(row, headerIdx[priceHeaderRealtime])),
			colForecastPrice: sheet.ParseFloat(sheet.CellAt(row, headerIdx[priceHeaderForecast])),
		})
	}

	return table, nil
}

// ReadClearingSummaryCapacity reads the clearing-summary source and
// extracts the single online-capacity scalar from the first remaining
// data row. Returns nil when the cell carries no capacity figure.
func ReadClearingSummaryCapacity(path string, spec config.SourceSpec) (*float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open source %s", spec.FileName), err)
	}
	defer f.Close()

	rows, err := sheetRows(f)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read source %s", spec.FileName), err)
	}

	// Header row, then the repeated units row, then the summary row
	if len(rows) < 3 {
		return nil, nil
	}
	return ExtractOnlineCapacity(sheet.CellAt(rows[2], 2)), nil
}
