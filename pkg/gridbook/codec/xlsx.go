package codec

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gridbook/gridbook-go/pkg/gridbook/models"
)

// ImportXLSX reads an XLSX workbook into sheets. The first row of each
// worksheet provides the column keys; blank header cells get positional
// "col<n>" keys. Remaining rows become data rows keyed by those columns.
func ImportXLSX(r io.Reader) ([]*models.Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []*models.Sheet
	for i, name := range f.GetSheetList() {
		raw, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		sheet := models.NewSheet(name, i)
		if len(raw) > 0 {
			keys := headerKeys(raw[0])
			for _, cells := range raw[1:] {
				row := models.NewRow()
				for ci, key := range keys {
					value := ""
					if ci < len(cells) {
						value = cells[ci]
					}
					row.SetValue(key, value)
				}
				sheet.Rows = append(sheet.Rows, row)
			}
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func headerKeys(header []string) []string {
	keys := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("col%d", i+1)
		}
		keys[i] = h
	}
	return keys
}

// ExportXLSX renders sheets to an XLSX workbook, one worksheet per sheet
// with the derived column list as the header row. The caller owns writing
// and closing the returned file.
func ExportXLSX(sheets []*models.Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = models.DefaultSheetName(i)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		cols := sheet.Columns()
		for ci, col := range cols {
			cell, err := excelize.CoordinatesToCellName(ci+1, 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(name, cell, col); err != nil {
				return nil, err
			}
		}
		for ri, row := range sheet.Rows {
			for ci, col := range cols {
				cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(name, cell, row.Value(col)); err != nil {
					return nil, err
				}
			}
		}
	}
	return f, nil
}
