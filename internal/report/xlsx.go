package report

import (
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"candidate-tracker/internal/domain"
)

const sheetName = "Candidates"

const (
	minColWidth = 8
	maxColWidth = 60
)

// WriteXLSX writes the same columns as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, cands []domain.Candidate) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	header := make([]any, len(Columns))
	widths := make([]int, len(Columns))
	for i, h := range Columns {
		header[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}

	for i, c := range cands {
		rec := record(c)
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
			if n := utf8.RuneCountInString(v); n > widths[j] {
				widths[j] = n
			}
		}
		// keep the ID numeric so the sheet sorts properly
		row[0] = c.ID

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	for i, n := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(n+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func ExportXLSX(path string, cands []domain.Candidate) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, cands) })
}
