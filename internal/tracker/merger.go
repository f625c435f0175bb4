package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// ActivityStore is the slice of the persistent store the merger writes to.
type ActivityStore interface {
	InsertActivity(rec *model.ActivityRecord) (int64, error)
	UpdateActivityDuration(id int64, seconds int) error
}

// openSession is the single session currently being tracked.
type openSession struct {
	handle   string // uuid for log correlation, never persisted
	recordID int64
	identity model.WindowIdentity
	date     string
	duration int
	// failed is set when the opening insert was lost; duration updates for
	// this session are skipped but state transitions still happen, so one
	// bad write never stalls tracking.
	failed bool
}

// Merger folds the heartbeat stream into persisted activity records. It is
// the sole writer of duration and timestamp fields. Not safe for concurrent
// use; the sampling loop is its only caller.
type Merger struct {
	store           ActivityStore
	intervalSeconds int
	idleThreshold   time.Duration

	current    *openSession
	idleSince  time.Time
	dayChanges chan string
}

// NewMerger creates a merger accounting one sampling interval of duration per
// matching heartbeat.
func NewMerger(store ActivityStore, intervalSeconds int, idleThreshold time.Duration) *Merger {
	if intervalSeconds < 1 {
		intervalSeconds = 1
	}
	return &Merger{
		store:           store,
		intervalSeconds: intervalSeconds,
		idleThreshold:   idleThreshold,
		dayChanges:      make(chan string, 8),
	}
}

// DayChanges delivers the completed date string once per local-midnight
// rollover observed by the heartbeat stream.
func (m *Merger) DayChanges() <-chan string {
	return m.dayChanges
}

// Ingest processes one heartbeat. Store failures are logged and swallowed:
// losing a record must never stop future tracking.
func (m *Merger) Ingest(hb model.Heartbeat) {
	if hb.Idle {
		m.ingestIdle(hb)
		return
	}
	m.idleSince = time.Time{}

	date := util.DateOf(hb.Timestamp)

	if m.current != nil && m.current.date != date {
		completed := m.current.date
		m.closeSession()
		m.notifyDayChange(completed)
	}

	if m.current == nil {
		m.openSession(hb, date)
		return
	}

	if m.current.identity == hb.Identity() {
		m.extendSession()
		return
	}

	m.closeSession()
	m.openSession(hb, date)
}

// Flush closes any open session, e.g. on shutdown.
func (m *Merger) Flush() {
	if m.current != nil {
		m.closeSession()
	}
}

func (m *Merger) ingestIdle(hb model.Heartbeat) {
	if m.idleSince.IsZero() {
		m.idleSince = hb.Timestamp
	}
	if m.current == nil {
		return
	}
	// Short idle keeps the session open but never adds duration; the gap is
	// a hole in the timeline. Idle past the threshold ends the session.
	if hb.Timestamp.Sub(m.idleSince) >= m.idleThreshold {
		util.LogDebugf("Idle threshold reached, closing session %s", m.current.handle)
		m.closeSession()
	}
}

func (m *Merger) openSession(hb model.Heartbeat, date string) {
	rec := &model.ActivityRecord{
		Timestamp:       hb.Timestamp,
		AppName:         hb.AppName,
		BundleID:        hb.BundleID,
		WindowTitle:     hb.WindowTitle,
		URL:             hb.URL,
		Context:         hb.Context,
		DurationSeconds: m.intervalSeconds,
		Date:            date,
	}

	session := &openSession{
		handle:   uuid.New().String(),
		identity: hb.Identity(),
		date:     date,
		duration: m.intervalSeconds,
	}

	id, err := m.store.InsertActivity(rec)
	if err != nil {
		util.LogError(fmt.Sprintf("Failed to open session for %s: %v", hb.AppName, err))
		session.failed = true
	} else {
		session.recordID = id
	}

	m.current = session
	util.LogDebugf("Opened session %s: app=%s title=%s", session.handle, hb.AppName, hb.WindowTitle)
}

func (m *Merger) extendSession() {
	m.current.duration += m.intervalSeconds
	if m.current.failed {
		return
	}
	if err := m.store.UpdateActivityDuration(m.current.recordID, m.current.duration); err != nil {
		util.LogError(fmt.Sprintf("Failed to extend session %s: %v", m.current.handle, err))
	}
}

// closeSession performs the final duration write and clears the open state.
// The write is idempotent: the stored value already matches unless an extend
// was lost along the way.
func (m *Merger) closeSession() {
	session := m.current
	m.current = nil

	if session.failed {
		return
	}
	if err := m.store.UpdateActivityDuration(session.recordID, session.duration); err != nil {
		util.LogError(fmt.Sprintf("Failed to close session %s: %v", session.handle, err))
	}
	util.LogDebugf("Closed session %s at %ds", session.handle, session.duration)
}

func (m *Merger) notifyDayChange(completedDate string) {
	select {
	case m.dayChanges <- completedDate:
	default:
		util.LogWarn("Day-change subscriber is lagging, dropping notification for " + completedDate)
	}
}
