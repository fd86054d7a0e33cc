package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/report"
	"candidate-tracker/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "candidates.db"))
	require.NoError(t, s.Init(context.Background()))
	return s
}

func candidates() []domain.Candidate {
	return []domain.Candidate{
		{
			ID: 2, FullName: "Ada Lovelace", Position: "Analyst", Email: "ada@example.com",
			Phone: "+44 20 7946 0958", AppliedOn: "2025-05-20", Status: domain.StatusInterview,
			Priority: domain.PriorityUrgent, Notes: "Très motivée", Source: "Referral",
			ResumePath: "attachments/ada.pdf", Attachments: []string{"attachments/a.pdf", "attachments/b.pdf"},
		},
		{
			ID: 1, FullName: "Grace Hopper", Position: "Compiler Engineer", Email: "grace@example.com",
			Phone: "0612345678", AppliedOn: "2025-06-02", Status: domain.StatusPending,
			Priority: domain.PriorityHigh,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, candidates()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, report.Columns, rows[0])
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "Ada Lovelace", rows[1][1])
	assert.Equal(t, "Très motivée", rows[1][8])
	assert.Equal(t, "attachments/a.pdf;attachments/b.pdf", rows[1][10])
	assert.Equal(t, "", rows[2][10])
}

func TestXLSXRoundTrip(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf, candidates()))

	s := newStore(t)
	res, err := report.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Empty(t, res.Skipped)

	got, err := s.SearchCandidates(ctx, domain.Filter{Email: "ada@example.com"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	want := candidates()[0]
	g := got[0]
	assert.Equal(t, want.FullName, g.FullName)
	assert.Equal(t, want.Phone, g.Phone)
	assert.Equal(t, want.AppliedOn, g.AppliedOn)
	assert.Equal(t, want.Status, g.Status)
	assert.Equal(t, want.Priority, g.Priority)
	assert.Equal(t, want.Notes, g.Notes)
	assert.Equal(t, want.Source, g.Source)
	assert.Equal(t, want.ResumePath, g.ResumePath)
	assert.Equal(t, want.Attachments, g.Attachments)
}

func TestImportSkipsDuplicatesAndBadRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.AddCandidate(ctx, candidates()[1])
	require.NoError(t, err)

	rows := [][]any{
		{"Name", "Position", "Email", "Phone", "Date", "Status", "Priority", "Notes"},
		{"Grace Hopper", "Compiler Engineer", "grace@example.com", "", "2025-06-02", "Pending", "High", ""},
		{"Alan Turing", "Researcher", "alan@example.com", "", "", "", "", ""},
		{},
		{"Bad Status", "Dev", "bad@example.com", "", "", "Hired", "Low", ""},
	}
	res, err := report.ImportXLSX(ctx, workbook(t, rows), s)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 2, res.Skipped[0].Row)
	assert.ErrorIs(t, res.Skipped[0].Err, store.ErrDuplicateEmail)
	assert.Equal(t, 5, res.Skipped[1].Row)
	assert.ErrorIs(t, res.Skipped[1].Err, domain.ErrInvalidStatus)

	alan, err := s.SearchCandidates(ctx, domain.Filter{Email: "alan@example.com"})
	require.NoError(t, err)
	require.Len(t, alan, 1)
	assert.Equal(t, domain.StatusPending, alan[0].Status)
	assert.Equal(t, domain.PriorityMedium, alan[0].Priority)
}

func TestImportMissingColumnsAddsNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	rows := [][]any{
		{"Name", "Position", "Email", "Date", "Status", "Priority"},
		{"Alan Turing", "Researcher", "alan@example.com", "2025-01-01", "Pending", "Low"},
	}
	_, err := report.ImportXLSX(ctx, workbook(t, rows), s)
	require.ErrorIs(t, err, report.ErrMissingColumns)
	assert.Contains(t, err.Error(), "Phone")
	assert.Contains(t, err.Error(), "Notes")

	all, err := s.ListCandidates(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportHeaderIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	rows := [][]any{
		{" notes", "PRIORITY", "status", "date", "phone", "email", "position", "name "},
		{"", "Low", "Accepted", "2025-02-03", "", "x@example.com", "Dev", "X Y"},
	}
	res, err := report.ImportXLSX(ctx, workbook(t, rows), s)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
}

func TestImportReadsDateCells(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := []any{"Name", "Position", "Email", "Phone", "Date", "Status", "Priority", "Notes"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []any{"Alan Turing", "Researcher", "alan@example.com", "", "", "Pending", "Low", ""}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	require.NoError(t, f.SetCellValue(sheet, "E2", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	res, err := report.ImportXLSX(ctx, bytes.NewReader(buf.Bytes()), s)
	require.NoError(t, err)
	require.Equal(t, 1, res.Added)

	got, err := s.SearchCandidates(ctx, domain.Filter{Email: "alan@"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-02", got[0].AppliedOn)
}

func TestWriteCandidatePDF(t *testing.T) {
	c := candidates()[0]

	var buf bytes.Buffer
	require.NoError(t, report.WriteCandidatePDF(&buf, c))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	plain := buf.Len()
	c.PhotoPath = writePNG(t)
	buf.Reset()
	require.NoError(t, report.WriteCandidatePDF(&buf, c))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), plain)
}

func TestPDFIgnoresUnreadablePhoto(t *testing.T) {
	c := candidates()[1]
	c.PhotoPath = filepath.Join(t.TempDir(), "missing.png")

	var buf bytes.Buffer
	require.NoError(t, report.WriteCandidatePDF(&buf, c))

	junk := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	c.PhotoPath = junk
	buf.Reset()
	require.NoError(t, report.WriteCandidatePDF(&buf, c))
}

func TestExportBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundle")
	paths, err := report.ExportBundle(context.Background(), dir, candidates())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "candidate-1.pdf"),
		filepath.Join(dir, "candidate-2.pdf"),
		filepath.Join(dir, report.BundleCSV),
		filepath.Join(dir, report.BundleXLSX),
	}, paths)
	for _, p := range paths {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, st.Size())
	}
	tmp, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, tmp)
}

func TestExportBundleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := report.ExportBundle(ctx, t.TempDir(), candidates())
	require.ErrorIs(t, err, context.Canceled)
}

func workbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 50))
	for x := 0; x < 40; x++ {
		for y := 0; y < 50; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 80, B: uint8(y * 5), A: 255})
		}
	}
	p := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return p
}
