package domain

import (
	"strings"
	"time"
)

// DateLayout is the format of Candidate.AppliedOn.
const DateLayout = "2006-01-02"

// Candidate is one tracked job application.
type Candidate struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"fullName" validate:"required"`
	Position    string    `json:"position" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       string    `json:"phone"`
	AppliedOn   string    `json:"appliedOn" validate:"required,datetime=2006-01-02"`
	Status      Status    `json:"status" validate:"status"`
	Priority    Priority  `json:"priority" validate:"priority"`
	Notes       string    `json:"notes"`
	ResumePath  string    `json:"resumePath"`
	Attachments []string  `json:"attachments"`
	PhotoPath   string    `json:"photoPath"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Filter narrows a candidate search. Empty fields impose no constraint and
// all supplied fields must match.
type Filter struct {
	Name     string   // case-insensitive substring of FullName
	Position string   // case-insensitive substring of Position
	Email    string   // case-insensitive substring of Email
	Status   Status   // exact
	Priority Priority // exact
	Source   string   // exact
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Position) == "" &&
		strings.TrimSpace(f.Email) == "" &&
		f.Status == "" && f.Priority == "" && f.Source == ""
}

// Stats are aggregate counts over all candidates.
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Interview int `json:"interview"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	ThisMonth int `json:"thisMonth"`
}

// Count returns the per-status count for one of the known statuses.
func (s Stats) Count(st Status) int {
	switch st {
	case StatusPending:
		return s.Pending
	case StatusInterview:
		return s.Interview
	case StatusAccepted:
		return s.Accepted
	case StatusRejected:
		return s.Rejected
	}
	return 0
}

// AttachmentSeparator joins attachment paths in their stored form.
const AttachmentSeparator = ";"

// JoinAttachments flattens attachment paths for storage, dropping blanks.
func JoinAttachments(paths []string) string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, AttachmentSeparator)
}

// SplitAttachments is the inverse of JoinAttachments. It returns nil when
// there are no paths.
func SplitAttachments(s string) []string {
	var out []string
	for _, p := range strings.Split(s, AttachmentSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
