package events

import (
	"encoding/json"
	"time"
)

// Event types published after successful mutations.
const (
	CandidateAdded     = "candidate_added"
	CandidateUpdated   = "candidate_updated"
	CandidateDeleted   = "candidate_deleted"
	CandidatesImported = "candidates_imported"
	UserCreated        = "user_created"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	Actor   string          `json:"actor,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(actor, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		Actor:   actor,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Parse decodes an envelope produced by MakeEvent.
func Parse(s string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(s), &e)
	return e, err
}
