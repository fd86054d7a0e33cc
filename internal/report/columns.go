// Package report turns candidates into files (CSV, XLSX, PDF) and reads
// candidates back from spreadsheets.
package report

import (
	"strconv"
	"time"

	"candidate-tracker/internal/domain"
)

// Columns is the header shared by every tabular export. The import side
// reads the same names, so an exported sheet can be imported again.
var Columns = []string{
	"ID", "Name", "Position", "Email", "Phone", "Date", "Status", "Priority",
	"Notes", "Resume", "Attachments", "Photo", "Source", "Created At",
}

func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func record(c domain.Candidate) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.FullName,
		c.Position,
		c.Email,
		c.Phone,
		c.AppliedOn,
		string(c.Status),
		string(c.Priority),
		c.Notes,
		c.ResumePath,
		domain.JoinAttachments(c.Attachments),
		c.PhotoPath,
		c.Source,
		formatCreatedAt(c.CreatedAt),
	}
}
