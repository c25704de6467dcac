package publishers

import (
	"time"

	"github.com/gai-kavia/kavia-console/internal/storage"
)

// Event represents a call report published downstream.
type Event struct {
	Call        string    `json:"call"`
	APIBase     string    `json:"api_base"`
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	Output      string    `json:"output,omitempty"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event for a finished call.
func NewEvent(apiBase string, rec storage.CallRecord) Event {
	return Event{
		Call:        rec.Call,
		APIBase:     apiBase,
		URL:         rec.URL,
		StatusCode:  rec.StatusCode,
		Kind:        rec.Kind,
		Output:      rec.Output,
		Error:       rec.Error,
		DurationMs:  rec.DurationMs,
		CompletedAt: time.Now().UTC(),
	}
}

// Outcome labels the event for message attributes.
func (e Event) Outcome() string {
	if e.Error != "" {
		return "failure"
	}
	return "success"
}
