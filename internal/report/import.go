package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"candidate-tracker/internal/domain"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptySheet     = errors.New("worksheet is empty")
)

// RequiredColumns must all be present in the header row of an import.
var RequiredColumns = []string{"Name", "Position", "Email", "Phone", "Date", "Status", "Priority", "Notes"}

// Adder receives each imported row.
type Adder interface {
	AddCandidate(ctx context.Context, c domain.Candidate) (domain.Candidate, error)
}

// RowError explains why one spreadsheet row was skipped. Row is 1-based and
// counts the header.
type RowError struct {
	Row   int
	Email string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Email, e.Err)
}

type ImportResult struct {
	Added   int
	Skipped []RowError
}

// ImportXLSX reads candidates from the first sheet of a workbook. A missing
// required column rejects the whole file before any row is added. Rows the
// adder refuses (duplicate email, invalid values) are recorded in Skipped
// and the import carries on.
func ImportXLSX(ctx context.Context, r io.Reader, add Adder) (ImportResult, error) {
	var res ImportResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		return res, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return res, errors.New("no worksheet found")
	}
	// raw values keep date cells as serial numbers instead of whatever
	// display format the sheet applies to them
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, ErrEmptySheet
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		if key := normalizeHeader(h); key != "" {
			if _, dup := idx[key]; !dup {
				idx[key] = i
			}
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return res, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	col := func(row []string, name string) string {
		i, ok := idx[normalizeHeader(name)]
		if !ok {
			return ""
		}
		return cellValue(row, i)
	}

	for n, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if blankRow(row) {
			continue
		}

		c := domain.Candidate{
			FullName:    col(row, "Name"),
			Position:    col(row, "Position"),
			Email:       col(row, "Email"),
			Phone:       col(row, "Phone"),
			AppliedOn:   normalizeDate(col(row, "Date")),
			Status:      domain.Status(col(row, "Status")),
			Priority:    domain.Priority(col(row, "Priority")),
			Notes:       col(row, "Notes"),
			ResumePath:  col(row, "Resume"),
			Attachments: domain.SplitAttachments(col(row, "Attachments")),
			PhotoPath:   col(row, "Photo"),
			Source:      col(row, "Source"),
		}
		if c.Status == "" {
			c.Status = domain.StatusPending
		}
		if c.Priority == "" {
			c.Priority = domain.PriorityMedium
		}

		if _, err := add.AddCandidate(ctx, c); err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: n + 2, Email: c.Email, Err: err})
			continue
		}
		res.Added++
	}
	return res, nil
}

func ImportXLSXFile(ctx context.Context, path string, add Adder) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, err
	}
	defer f.Close()
	return ImportXLSX(ctx, f, add)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// dateLayouts are tried on text dates. Slash dates are day first, the
// convention of the French-language sheets this tracker imports. Real date
// cells never reach these layouts: they arrive as Excel serials.
var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// normalizeDate turns spreadsheet dates into YYYY-MM-DD. Excel serial numbers
// are converted; anything unrecognized is kept as written.
func normalizeDate(v string) string {
	if v == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		// plain years like "2025" are not serials
		if serial >= 20000 && serial <= 80000 {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.Format(domain.DateLayout)
			}
		}
		return v
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(domain.DateLayout)
		}
	}
	return v
}
