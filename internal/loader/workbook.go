package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/bankcap/internal/model"
)

// LoadToWorkbook writes records to an .xlsx file with one sheet named sheet.
func LoadToWorkbook(records []model.EnrichedRecord, path, sheet string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating output dir: %w", model.ErrIO, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%w: naming sheet %q: %w", model.ErrIO, sheet, err)
	}

	for i, name := range model.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("%w: writing header: %w", model.ErrIO, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("%w: creating header style: %w", model.ErrIO, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(model.Columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("%w: styling header: %w", model.ErrIO, err)
	}

	for i, rec := range records {
		values := []any{rec.Name}
		for _, c := range model.MarketCapCurrencies {
			v, _ := rec.MarketCap(c)
			values = append(values, v.InexactFloat64())
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", model.ErrIO, i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: saving %s: %w", model.ErrIO, path, err)
	}
	return nil
}
