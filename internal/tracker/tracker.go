package tracker

import (
	"context"

	"github.com/penwyp/go-focus-monitor/internal/util"
)

// Tracker runs the sampling loop: it drains heartbeats from a Sampler into
// the Merger until the context is cancelled or the source runs dry, then
// flushes the open session.
type Tracker struct {
	sampler Sampler
	merger  *Merger
}

// NewTracker wires a sampler to a merger.
func NewTracker(sampler Sampler, merger *Merger) *Tracker {
	return &Tracker{sampler: sampler, merger: merger}
}

// DayChanges exposes the merger's day rollover notifications.
func (t *Tracker) DayChanges() <-chan string {
	return t.merger.DayChanges()
}

// Run blocks until ctx is cancelled or the sampler's channel closes. The open
// session is flushed on the way out so partial time is never lost.
func (t *Tracker) Run(ctx context.Context) error {
	util.LogInfo("Tracking started")
	defer t.merger.Flush()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Tracking stopped")
			return ctx.Err()

		case hb, ok := <-t.sampler.Heartbeats():
			if !ok {
				util.LogInfo("Heartbeat source exhausted")
				return nil
			}
			t.merger.Ingest(hb)
		}
	}
}
