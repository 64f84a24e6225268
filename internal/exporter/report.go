package exporter

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"spotcli/internal/errors"
	"spotcli/internal/trading"
	"spotcli/pkg/contracts/domain"
)

// Report sheet names and index-column headers.
const (
	metricsSheetName   = "分析结果"
	byCompanySheetName = "按公司汇总"
	byUnitSheetName    = "按机组汇总"

	metricValueHeader = "数值"
	unitListHeader    = "机组名称列表"
)

// WriteMetricsWorkbook writes a single ten-metric result as a two-column
// sheet: metric label, value.
func WriteMetricsWorkbook(path string, m trading.Metrics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), metricsSheetName); err != nil {
		return errors.NewStorageError("failed to rename metrics sheet", err)
	}

	if err := writeHeaderRow(f, metricsSheetName, []string{"", metricValueHeader}); err != nil {
		return err
	}

	values := m.Values()
	for i, label := range trading.MetricLabels {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address metric row", err)
		}
		row := []interface{}{label, values[i]}
		if err := f.SetSheetRow(metricsSheetName, addr, &row); err != nil {
			return errors.NewStorageError("failed to write metric row", err)
		}
	}

	return saveWorkbook(f, path)
}

// WriteCompanyReportWorkbook writes the by-company summary: one row per
// company, one column per metric.
func WriteCompanyReportWorkbook(path string, reports []trading.CompanyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), byCompanySheetName); err != nil {
		return errors.NewStorageError("failed to rename company report sheet", err)
	}

	headers := append([]string{domain.ColCompany}, trading.MetricLabels...)
	if err := writeHeaderRow(f, byCompanySheetName, headers); err != nil {
		return err
	}

	for i, rep := range reports {
		row := make([]interface{}, 0, len(headers))
		row = append(row, rep.Company)
		for _, v := range rep.Metrics.Values() {
			row = append(row, v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address company report row", err)
		}
		if err := f.SetSheetRow(byCompanySheetName, addr, &row); err != nil {
			return errors.NewStorageError("failed to write company report row", err)
		}
	}

	return saveWorkbook(f, path)
}

// WriteUnitReportWorkbook writes the by-unit summary. Grouped rows carry
// the unit-group label and the folded unit names; ungrouped rows carry
// the single unit name.
func WriteUnitReportWorkbook(path string, reports []trading.UnitReport, grouped bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), byUnitSheetName); err != nil {
		return errors.NewStorageError("failed to rename unit report sheet", err)
	}

	headers := []string{domain.ColCompany}
	if grouped {
		headers = append(headers, domain.ColUnitGroup, unitListHeader)
	} else {
		headers = append(headers, domain.ColUnit)
	}
	headers = append(headers, trading.MetricLabels...)

	if err := writeHeaderRow(f, byUnitSheetName, headers); err != nil {
		return err
	}

	for i, rep := range reports {
		row := make([]interface{}, 0, len(headers))
		row = append(row, rep.Company)
		if grouped {
			row = append(row, rep.UnitGroup, strings.Join(rep.UnitNames, ","))
		} else {
			row = append(row, rep.Unit)
		}
		for _, v := range rep.Metrics.Values() {
			row = append(row, v)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address unit report row", err)
		}
		if err := f.SetSheetRow(byUnitSheetName, addr, &row); err != nil {
			return errors.NewStorageError("failed to write unit report row", err)
		}
	}

	return saveWorkbook(f, path)
}
