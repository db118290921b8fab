// Package workbook turns spreadsheet bytes into named sheets of string cell
// matrices for the tabular extractors. Rows are returned ragged, exactly as
// the file stores them; extractors tolerate short rows themselves.
package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet rendered as rows of trimmed-width string cells.
type Sheet struct {
	Name string
	Rows [][]string
}

// Read opens workbook bytes in memory and renders every sheet in file
// order. Raw cell values are used so date/time cells keep their stored
// text instead of display formatting.
func Read(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// Names returns the sheet names in file order.
func Names(sheets []Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}
