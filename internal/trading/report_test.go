package trading

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotcli/pkg/contracts/domain"
)

func reportDataset() *domain.TradingDataset {
	ds := &domain.TradingDataset{Columns: fullColumns()}

	add := func(company, unit string, price float64, n int) {
		for i := 0; i < n; i++ {
			ds.Records = append(ds.Records, domain.TradingRecord{
				Company:           company,
				Unit:              unit,
				UnitGroup:         DeriveUnitGroup(unit),
				ForecastNodePrice: domain.Float(price),
			})
		}
	}

	add("塔山", "1号机组", 250, 4)
	add("塔山", "3号机组", 250, 4)
	add("塔山", "2号机组", 250, 4)
	add("河津", "1号机组", 310, 4)
	return ds
}

func TestByCompany(t *testing.T) {
	b := NewBuilder(testAnalysisConfig(), nil)
	reports, err := b.ByCompany(context.Background(), reportDataset(), FilterCriteria{})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// First-appearance order
	assert.Equal(t, "塔山", reports[0].Company)
	assert.Equal(t, "河津", reports[1].Company)

	assert.InDelta(t, 3.0, reports[0].Metrics.ForecastHours, 1e-9)
	assert.InDelta(t, 1.0, reports[1].Metrics.ForecastHours, 1e-9)
}

func TestByCompanyRespectsSharedFilter(t *testing.T) {
	b := NewBuilder(testAnalysisConfig(), nil)
	reports, err := b.ByCompany(context.Background(), reportDataset(), FilterCriteria{
		MaxPrice: domain.Float(300),
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.InDelta(t, 3.0, reports[0].Metrics.ForecastHours, 1e-9)
	// 河津 rows priced at 310 all fail the shared bound
	assert.Zero(t, reports[1].Metrics.ForecastHours)
}

func TestByCompanyWithoutCompanyColumn(t *testing.T) {
	ds := &domain.TradingDataset{Columns: domain.ColumnSet{domain.ColUnit: true}}
	b := NewBuilder(testAnalysisConfig(), nil)

	reports, err := b.ByCompany(context.Background(), ds, FilterCriteria{})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestByUnitGrouped(t *testing.T) {
	b := NewBuilder(testAnalysisConfig(), nil)
	reports, err := b.ByUnit(context.Background(), reportDataset(), FilterCriteria{}, true)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, "塔山", reports[0].Company)
	assert.Equal(t, domain.UnitGroup13, reports[0].UnitGroup)
	assert.ElementsMatch(t, []string{"1号机组", "3号机组"}, reports[0].UnitNames)
	assert.InDelta(t, 2.0, reports[0].Metrics.ForecastHours, 1e-9)

	assert.Equal(t, domain.UnitGroup24, reports[1].UnitGroup)
	assert.Equal(t, []string{"2号机组"}, reports[1].UnitNames)

	assert.Equal(t, "河津", reports[2].Company)
	assert.Equal(t, domain.UnitGroup13, reports[2].UnitGroup)
}

func TestByUnitUngrouped(t *testing.T) {
	b := NewBuilder(testAnalysisConfig(), nil)
	reports, err := b.ByUnit(context.Background(), reportDataset(), FilterCriteria{}, false)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, "1号机组", reports[0].Unit)
	assert.Empty(t, reports[0].UnitGroup)
	assert.InDelta(t, 1.0, reports[0].Metrics.ForecastHours, 1e-9)
}

func TestByUnitWithoutUnitColumn(t *testing.T) {
	ds := &domain.TradingDataset{Columns: domain.ColumnSet{domain.ColCompany: true}}
	b := NewBuilder(testAnalysisConfig(), nil)

	reports, err := b.ByUnit(context.Background(), ds, FilterCriteria{}, true)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
