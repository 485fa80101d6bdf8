package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// ReadXLSX parses the first sheet of a workbook into records, using the first non-empty row as headers.
// Fully empty rows are skipped; short rows are padded with empty cells.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	table := &Table{}
	for _, cells := range rows {
		if blank(cells) {
			continue
		}
		if table.Headers == nil {
			table.Headers = cells
			continue
		}
		if len(cells) > len(table.Headers) {
			table.Malformed++
		}
		table.Records = append(table.Records, recordFromCells(table.Headers, cells))
	}
	return table, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ToXLSX writes records to a single-sheet workbook named sheet (default "Sheet1").
// Columns follow the key order of the first record, like [ToCSV].
func ToXLSX(records []Record, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	if len(records) > 0 {
		headers := records[0].Keys()
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return nil, fmt.Errorf("failed to write XLSX headers: %w", err)
		}

		for i, rec := range records {
			row := make([]any, len(headers))
			for j, h := range headers {
				row[j] = rec.Get(h)
			}
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write XLSX row %d: %w", i+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
