package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Status is the stage an application has reached.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusInterview Status = "Interview"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusPending, StatusInterview, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInterview, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a raw string to a Status, returning an error wrapping
// ErrInvalidStatus for anything outside the closed set. Matching is exact.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Priority ranks how urgently an application should be handled.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidPriority, s)
	}
	return p, nil
}
