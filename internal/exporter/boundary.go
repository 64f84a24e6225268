package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// boundaryRow renders one unified record into the fixed 15-column layout.
// Null quantities become empty cells.
func boundaryRow(rec domain.UnifiedRecord) []interface{} {
	return []interface{}{
		rec.Date.Format(dateLayout),
		rec.TimeSlot,
		string(rec.Epoch),
		cell(rec.BiddingSpace),
		cell(rec.GridLoad),
		cell(rec.Wind),
		cell(rec.Solar),
		cell(rec.RenewableLoad),
		cell(rec.NonMarketOutput),
		cell(rec.HydroOutput),
		cell(rec.TieLinePlan),
		cell(rec.OnlineCapacity),
		cell(rec.ForecastClearingPrice),
		cell(rec.RealtimeClearingPrice),
		cell(rec.LoadRate),
	}
}

func cell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// WriteBoundaryWorkbook writes the unified boundary table to an xlsx
// workbook with the contract's column order and Chinese headers.
func WriteBoundaryWorkbook(path string, records []domain.UnifiedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.BoundarySheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.NewStorageError("failed to rename boundary sheet", err)
	}

	if err := writeHeaderRow(f, sheet, domain.UnifiedColumns); err != nil {
		return err
	}

	for i, rec := range records {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address boundary row", err)
		}
		row := boundaryRow(rec)
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return errors.NewStorageError("failed to write boundary row", err)
		}
	}

	return saveWorkbook(f, path)
}

// WriteBoundaryCSV writes the unified boundary table as UTF-8 CSV with a
// BOM so Excel recognizes the encoding.
func WriteBoundaryCSV(path string, records []domain.UnifiedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to create %s", filepath.Base(path)), err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.NewStorageError("failed to write BOM", err)
	}

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(domain.UnifiedColumns); err != nil {
		return errors.NewStorageError("failed to write CSV header", err)
	}

	for _, rec := range records {
		row := boundaryRow(rec)
		out := make([]string, len(row))
		for i, v := range row {
			switch t := v.(type) {
			case nil:
				out[i] = ""
			case string:
				out[i] = t
			case float64:
				out[i] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
		if err := w.Write(out); err != nil {
			return errors.NewStorageError("failed to write CSV row", err)
		}
	}

	return nil
}

// writeHeaderRow writes headers across the first row of the sheet.
func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return errors.NewStorageError("failed to write header row", err)
	}
	return nil
}

// saveWorkbook persists the workbook, creating the target directory.
func saveWorkbook(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create export directory", err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to save %s", filepath.Base(path)), err)
	}
	return nil
}
