package exporter

import (
	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/pkg/contracts/domain"
)

// mergedColumns is the export order of the merged trading workbook. Only
// columns present in the dataset are written, keyed off its column set,
// so a merge over sparse workbooks round-trips without inventing data.
var mergedColumns = []string{
	domain.ColCompany,
	domain.ColUnit,
	domain.ColUnitGroup,
	domain.ColDate,
	domain.ColTimeSlot,
	domain.ColForecastNodePrice,
	domain.ColIntradayNodePrice,
	domain.ColCrossDAPower,
	domain.ColCrossDAPrice,
	domain.ColCrossRTPower,
	domain.ColCrossRTPrice,
	domain.ColCrossTotal,
	domain.ColDACommitted,
	domain.ColIntradayActual,
	domain.ColIntraMLTVolume,
	domain.ColIntraMLTPrice,
	domain.ColCrossMLTVolume,
	domain.ColCrossMLTPrice,
}

// tradingCell reads the named column from one record.
func tradingCell(rec *domain.TradingRecord, column string) interface{} {
	switch column {
	case domain.ColCompany:
		return rec.Company
	case domain.ColUnit:
		return rec.Unit
	case domain.ColUnitGroup:
		return rec.UnitGroup
	case domain.ColDate:
		if rec.Date.IsZero() {
			return nil
		}
		return rec.Date.Format(dateLayout)
	case domain.ColTimeSlot:
		return rec.TimeSlot
	case domain.ColForecastNodePrice:
		return cell(rec.ForecastNodePrice)
	case domain.ColIntradayNodePrice:
		return cell(rec.IntradayNodePrice)
	case domain.ColCrossDAPower:
		return cell(rec.CrossDAPower)
	case domain.ColCrossDAPrice:
		return cell(rec.CrossDAPrice)
	case domain.ColCrossRTPower:
		return cell(rec.CrossRTPower)
	case domain.ColCrossRTPrice:
		return cell(rec.CrossRTPrice)
	case domain.ColCrossTotal:
		return cell(rec.CrossTotal)
	case domain.ColDACommitted:
		return cell(rec.DACommitted)
	case domain.ColIntradayActual:
		return cell(rec.IntradayActual)
	case domain.ColIntraMLTVolume:
		return cell(rec.IntraMLTVolume)
	case domain.ColIntraMLTPrice:
		return cell(rec.IntraMLTPrice)
	case domain.ColCrossMLTVolume:
		return cell(rec.CrossMLTVolume)
	case domain.ColCrossMLTPrice:
		return cell(rec.CrossMLTPrice)
	default:
		return nil
	}
}

// WriteMergedWorkbook writes the merged trading dataset to an xlsx
// workbook on the merged-sheet contract, ready for LoadMerged.
func WriteMergedWorkbook(path string, ds *domain.TradingDataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.MergedTradingSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.NewStorageError("failed to rename merged sheet", err)
	}

	var columns []string
	for _, name := range mergedColumns {
		if ds.Columns.Has(name) {
			columns = append(columns, name)
		}
	}

	if err := writeHeaderRow(f, sheet, columns); err != nil {
		return err
	}

	for i := range ds.Records {
		row := make([]interface{}, len(columns))
		for j, name := range columns {
			row[j] = tradingCell(&ds.Records[i], name)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address merged row", err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return errors.NewStorageError("failed to write merged row", err)
		}
	}

	return saveWorkbook(f, path)
}
