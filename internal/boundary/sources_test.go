package boundary

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
)

// writeWorkbook saves rows into a single-sheet workbook under dir and
// returns its path. Nil cells stay empty.
func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			if val == nil {
				continue
			}
			col, err := excelize.ColumnNumberToName(j + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, col+strconv.Itoa(i+1), val))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func mustSpec(t *testing.T, key config.SourceKey) config.SourceSpec {
	t.Helper()
	spec, ok := config.SourceByKey(key)
	require.True(t, ok)
	return spec
}

func TestNormalizeSourceLoadForecast(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceLoadForecast)

	path := writeWorkbook(t, dir, spec.FileName, [][]interface{}{
		{"序号", "日期", "时点", "统调负荷"},
		{nil, nil, nil, "MW"}, // repeated units row
		{"1", "2025-08-30", "00:15", "23456.7"},
		{"2", "2025-08-30", "00:30", "not a number"},
		{"3", "合计", "00:45", "100"},            // unparseable date, dropped
		{"4", "2025-08-30", "00:15", "999.9"}, // duplicate key, first wins
	})

	table, err := NormalizeSource(path, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	first := table.rows[slotKey{Date: "2025-08-30", Slot: "00:15"}]
	require.NotNil(t, first[colGridLoad])
	assert.InDelta(t, 23456.7, *first[colGridLoad], 1e-9)

	// Uncoercible quantity degrades to null, row survives
	second := table.rows[slotKey{Date: "2025-08-30", Slot: "00:30"}]
	assert.Nil(t, second[colGridLoad])
}

func TestNormalizeSourceTieLineAggregateFilter(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceTieLineForecast)

	path := writeWorkbook(t, dir, spec.FileName, [][]interface{}{
		{"序号", "联络线", "日期", "时点", "计划值"},
		{nil, nil, nil, nil, "MW"},
		{"1", "雁淮直流", "2025-08-30", "00:15", "1200"},
		{"2", "总加", "2025-08-30", "00:15", "4321.5"},
		{"3", "雁泉直流", "2025-08-30", "00:30", "800"},
		{"4", "总加", "2025-08-30", "00:30", "4400"},
	})

	table, err := NormalizeSource(path, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	row := table.rows[slotKey{Date: "2025-08-30", Slot: "00:15"}]
	require.NotNil(t, row[colTieLinePlan])
	assert.InDelta(t, 4321.5, *row[colTieLinePlan], 1e-9)
}

func TestNormalizeSourceRenewableColumns(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceRenewableForecast)

	path := writeWorkbook(t, dir, spec.FileName, [][]interface{}{
		{"序号", "日期", "时点", "新能源负荷", "风电", "光伏"},
		{nil, nil, nil, "MW", "MW", "MW"},
		{"1", "2025-08-30", "00:15", "5000", "3200", "1800"},
	})

	table, err := NormalizeSource(path, spec)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.rows[slotKey{Date: "2025-08-30", Slot: "00:15"}]
	assert.InDelta(t, 5000, *row[colRenewableLoad], 1e-9)
	assert.InDelta(t, 3200, *row[colWind], 1e-9)
	assert.InDelta(t, 1800, *row[colSolar], 1e-9)
}

func TestNormalizeClearingPrice(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceClearingPrice)

	path := writeWorkbook(t, dir, spec.FileName, [][]interface{}{
		{"序号", "日期", "时点", "实时出清价格(元/MWh)", "日前出清价格(元/MWh)"},
		{"1", "2025-08-30", "00:15", "312.4", "298.1"},
		{"2", "2025-08-30", "00:30", "330.0", "bad"},
		{"日均价", "2025-08-30", "", "321.2", "299.5"}, // summary row, dropped
	})

	table, err := NormalizeClearingPrice(path, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	first := table.rows[slotKey{Date: "2025-08-30", Slot: "00:15"}]
	assert.InDelta(t, 312.4, *first[colRealtimePrice], 1e-9)
	assert.InDelta(t, 298.1, *first[colForecastPrice], 1e-9)

	second := table.rows[slotKey{Date: "2025-08-30", Slot: "00:30"}]
	assert.Nil(t, second[colForecastPrice])
}

func TestNormalizeClearingPriceMissingHeader(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceClearingPrice)

	path := writeWorkbook(t, dir, spec.FileName, [][]interface{}{
		{"序号", "日期", "时点", "实时出清价格(元/MWh)"},
		{"1", "2025-08-30", "00:15", "312.4"},
	})

	_, err := NormalizeClearingPrice(path, spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "日前出清价格")
}

func TestReadClearingSummaryCapacity(t *testing.T) {
	dir := t.TempDir()
	spec := mustSpec(t, config.SourceClearingSummary)

	t.Run("capacity present", func(t *testing.T) {
		path := writeWorkbook(t, dir, "summary.xlsx", [][]interface{}{
			{"序号", "日期", "出清情况"},
			{nil, nil, nil},
			{"1", "2025-08-30", "本日运行机组容量42340.00MW，出清电量123456MWh"},
		})

		got, err := ReadClearingSummaryCapacity(path, spec)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 42340.00, *got, 1e-9)
	})

	t.Run("too few rows", func(t *testing.T) {
		path := writeWorkbook(t, dir, "short.xlsx", [][]interface{}{
			{"序号", "日期", "出清情况"},
		})

		got, err := ReadClearingSummaryCapacity(path, spec)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestNormalizeSourceOpenFailure(t *testing.T) {
	spec := mustSpec(t, config.SourceLoadForecast)
	_, err := NormalizeSource(filepath.Join(t.TempDir(), "absent.xlsx"), spec)
	require.Error(t, err)
}
