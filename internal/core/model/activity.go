package model

import "time"

// Heartbeat is one periodic sample of the foreground window state, delivered
// by an OS-level sensor at a fixed interval.
type Heartbeat struct {
	AppName     string    `json:"appName"`
	BundleID    string    `json:"bundleId"`
	WindowTitle string    `json:"windowTitle"`
	URL         string    `json:"url,omitempty"`
	Context     string    `json:"context,omitempty"` // extra context, e.g. terminal working directory or design file
	Idle        bool      `json:"idle"`
	Timestamp   time.Time `json:"timestamp"`
}

// WindowIdentity is the tuple that defines one tracking session. Comparison is
// exact and case-sensitive; any field change ends the session.
type WindowIdentity struct {
	AppName     string
	WindowTitle string
	URL         string
	Context     string
}

// Identity returns the session identity tuple for the heartbeat.
func (h Heartbeat) Identity() WindowIdentity {
	return WindowIdentity{
		AppName:     h.AppName,
		WindowTitle: h.WindowTitle,
		URL:         h.URL,
		Context:     h.Context,
	}
}

// ActivityRecord is one merged usage session: a contiguous span of an
// unchanged window identity. Duration grows while the session is open and is
// immutable once it closes; only the project assignment may change afterwards.
type ActivityRecord struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	AppName         string    `json:"appName"`
	BundleID        string    `json:"bundleId"`
	WindowTitle     string    `json:"windowTitle"`
	URL             string    `json:"url,omitempty"`
	Context         string    `json:"context,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	Date            string    `json:"date"` // local calendar date, "2006-01-02"
	ProjectID       *int64    `json:"projectId,omitempty"`
}

// Identity returns the session identity tuple the record was merged under.
func (r ActivityRecord) Identity() WindowIdentity {
	return WindowIdentity{
		AppName:     r.AppName,
		WindowTitle: r.WindowTitle,
		URL:         r.URL,
		Context:     r.Context,
	}
}
