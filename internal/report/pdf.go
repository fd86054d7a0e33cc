package report

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"candidate-tracker/internal/domain"
)

const (
	photoX     = 160.0
	photoY     = 12.0
	photoWidth = 35.0
	labelWidth = 42.0
)

// WriteCandidatePDF renders a one-candidate report. A photo that cannot be
// read or decoded is left out instead of failing the report.
func WriteCandidatePDF(w io.Writer, c domain.Candidate) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Candidate report - "+c.FullName, true)
	pdf.SetCreator("candidate-tracker", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	headWidth := 0.0
	photoType := photoImageType(c.PhotoPath)
	if photoType != "" {
		headWidth = photoX - 15
		pdf.ImageOptions(c.PhotoPath, photoX, photoY, photoWidth, 0, false,
			fpdf.ImageOptions{ImageType: photoType, ReadDpi: true}, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(headWidth, 10, tr(c.FullName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(headWidth, 8, tr(c.Position), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if photoType != "" && pdf.GetY() < photoY+photoWidth+5 {
		pdf.SetY(photoY + photoWidth + 5)
	} else {
		pdf.Ln(4)
	}
	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(4)

	fields := []struct{ label, value string }{
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Applied on", c.AppliedOn},
		{"Status", string(c.Status)},
		{"Priority", string(c.Priority)},
		{"Source", c.Source},
		{"Resume", baseName(c.ResumePath)},
		{"Attachments", attachmentNames(c.Attachments)},
	}
	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(labelWidth, 7, tr(f.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, tr(orDash(f.value)), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(orDash(c.Notes)), "", "L", false)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Candidate #%d - generated %s", c.ID, time.Now().Format(domain.DateLayout)),
		"", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func ExportCandidatePDF(path string, c domain.Candidate) error {
	return writeFile(path, func(w io.Writer) error { return WriteCandidatePDF(w, c) })
}

// photoImageType returns the fpdf image type for a decodable photo, or "".
func photoImageType(path string) string {
	if path == "" {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		return ""
	}
	switch format {
	case "jpeg":
		return "JPG"
	case "png":
		return "PNG"
	}
	return ""
}

func baseName(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Base(p)
}

func attachmentNames(paths []string) string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
