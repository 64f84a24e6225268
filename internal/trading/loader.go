package trading

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"spotcli/internal/config"
	"spotcli/internal/errors"
	"spotcli/internal/infrastructure"
	"spotcli/internal/sheet"
	"spotcli/pkg/contracts/domain"
)

// quantitySetters maps a sheet header to the record field it populates.
var quantitySetters = map[string]func(*domain.TradingRecord, *float64){
	domain.ColForecastNodePrice: func(r *domain.TradingRecord, v *float64) { r.ForecastNodePrice = v },
	domain.ColIntradayNodePrice: func(r *domain.TradingRecord, v *float64) { r.IntradayNodePrice = v },
	domain.ColCrossDAPower:      func(r *domain.TradingRecord, v *float64) { r.CrossDAPower = v },
	domain.ColCrossDAPrice:      func(r *domain.TradingRecord, v *float64) { r.CrossDAPrice = v },
	domain.ColCrossRTPower:      func(r *domain.TradingRecord, v *float64) { r.CrossRTPower = v },
	domain.ColCrossRTPrice:      func(r *domain.TradingRecord, v *float64) { r.CrossRTPrice = v },
	domain.ColCrossTotal:        func(r *domain.TradingRecord, v *float64) { r.CrossTotal = v },
	domain.ColDACommitted:       func(r *domain.TradingRecord, v *float64) { r.DACommitted = v },
	domain.ColIntradayActual:    func(r *domain.TradingRecord, v *float64) { r.IntradayActual = v },
	domain.ColIntraMLTVolume:    func(r *domain.TradingRecord, v *float64) { r.IntraMLTVolume = v },
	domain.ColIntraMLTPrice:     func(r *domain.TradingRecord, v *float64) { r.IntraMLTPrice = v },
	domain.ColCrossMLTVolume:    func(r *domain.TradingRecord, v *float64) { r.CrossMLTVolume = v },
	domain.ColCrossMLTPrice:     func(r *domain.TradingRecord, v *float64) { r.CrossMLTPrice = v },
}

// CompanyFromPath derives the company name from a per-company workbook
// file name: the stem up to the first dash, e.g.
// "河津-电力营销信息统计1.10-20260112.xlsx" yields "河津".
func CompanyFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(stem, "-"); i >= 0 {
		return stem[:i]
	}
	return stem
}

// readTradingSheet turns the rows of a trading sheet into a dataset.
// headerRow is the 0-based index of the header row; data starts on the
// next row. company overrides the company column when non-empty.
func readTradingSheet(rows [][]string, headerRow int, company string) *domain.TradingDataset {
	ds := &domain.TradingDataset{Columns: make(domain.ColumnSet)}
	if len(rows) <= headerRow {
		return ds
	}

	header := rows[headerRow]
	headerIdx := make(map[string]int, len(header))
	for j := range header {
		name := sheet.CellAt(header, j)
		if name == "" {
			continue
		}
		headerIdx[name] = j
		ds.Columns[name] = true
	}

	if company != "" {
		ds.Columns[domain.ColCompany] = true
	}
	hasUnit := ds.Columns.Has(domain.ColUnit)
	if hasUnit {
		ds.Columns[domain.ColUnitGroup] = true
	}

	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		rec := domain.TradingRecord{Company: company}

		if idx, ok := headerIdx[domain.ColCompany]; ok && company == "" {
			rec.Company = sheet.CellAt(row, idx)
		}
		if idx, ok := headerIdx[domain.ColUnit]; ok {
			rec.Unit = sheet.CellAt(row, idx)
		}
		if idx, ok := headerIdx[domain.ColUnitGroup]; ok {
			rec.UnitGroup = sheet.CellAt(row, idx)
		}
		if rec.UnitGroup == "" && hasUnit {
			rec.UnitGroup = DeriveUnitGroup(rec.Unit)
		}
		if idx, ok := headerIdx[domain.ColDate]; ok {
			// Unparseable dates stay zero; such rows fail date filters
			// but survive everything else.
			if d, ok := sheet.ParseDate(sheet.CellAt(row, idx)); ok {
				rec.Date = d
			} else {
				rec.Date = time.Time{}
			}
		}
		if idx, ok := headerIdx[domain.ColTimeSlot]; ok {
			rec.TimeSlot = sheet.CellAt(row, idx)
		}

		empty := rec.Unit == "" && rec.TimeSlot == "" && rec.Date.IsZero()
		for name, set := range quantitySetters {
			idx, ok := headerIdx[name]
			if !ok {
				continue
			}
			v := sheet.ParseFloat(sheet.CellAt(row, idx))
			set(&rec, v)
			if v != nil {
				empty = false
			}
		}
		if empty {
			continue
		}

		ds.Records = append(ds.Records, rec)
	}

	return ds
}

// LoadCompanyWorkbook reads one per-company workbook. The trading sheet
// carries a title row above the header, so the header sits on the second
// row. The company name comes from the file name, not the sheet.
func LoadCompanyWorkbook(path string) (*domain.TradingDataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open trading workbook %s", filepath.Base(path)), err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.TradingSheetName)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("workbook %s has no sheet %q", filepath.Base(path), config.TradingSheetName), err)
	}

	return readTradingSheet(rows, 1, CompanyFromPath(path)), nil
}

// LoadMerged reads a previously merged trading workbook, where the
// header is the first row and the company column is part of the sheet.
func LoadMerged(path string) (*domain.TradingDataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open merged workbook %s", filepath.Base(path)), err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.MergedTradingSheetName)
	if err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("workbook %s has no sheet %q", filepath.Base(path), config.MergedTradingSheetName), err)
	}

	return readTradingSheet(rows, 0, ""), nil
}

// MergeWorkbooks loads every per-company workbook and concatenates them
// into one dataset. The column set is the union of all inputs. A
// workbook that fails to load is skipped with a warning rather than
// failing the merge, so one malformed upload cannot sink the batch.
func MergeWorkbooks(ctx context.Context, paths []string, logger *slog.Logger) (*domain.TradingDataset, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	merged := &domain.TradingDataset{Columns: make(domain.ColumnSet)}
	loaded := 0

	for _, path := range paths {
		ds, err := LoadCompanyWorkbook(path)
		if err != nil {
			logger.WarnContext(ctx, "skipping trading workbook",
				slog.String("file", filepath.Base(path)),
				slog.String("error", err.Error()))
			continue
		}

		merged.Records = append(merged.Records, ds.Records...)
		for name := range ds.Columns {
			merged.Columns[name] = true
		}
		loaded++

		logger.InfoContext(ctx, "merged trading workbook",
			slog.String("company", CompanyFromPath(path)),
			slog.Int("rows", ds.Len()))
	}

	if loaded == 0 {
		return nil, errors.NewAppValidationError("no trading workbooks could be loaded")
	}

	logger.InfoContext(ctx, "trading merge complete",
		slog.Int("workbooks", loaded),
		slog.Int("rows", merged.Len()))

	return merged, nil
}
