package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	nextID    int64
	inserts   []model.ActivityRecord
	durations map[int64]int

	failInserts bool
	failUpdates bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{durations: make(map[int64]int)}
}

func (f *fakeStore) InsertActivity(rec *model.ActivityRecord) (int64, error) {
	if f.failInserts {
		return 0, errors.New("disk full")
	}
	f.nextID++
	rec.ID = f.nextID
	f.inserts = append(f.inserts, *rec)
	f.durations[f.nextID] = rec.DurationSeconds
	return f.nextID, nil
}

func (f *fakeStore) UpdateActivityDuration(id int64, seconds int) error {
	if f.failUpdates {
		return errors.New("disk full")
	}
	f.durations[id] = seconds
	return nil
}

func heartbeatAt(app, title string, ts time.Time) model.Heartbeat {
	return model.Heartbeat{
		AppName:     app,
		WindowTitle: title,
		Timestamp:   ts,
	}
}

func TestMergerAccumulatesMatchingHeartbeats(t *testing.T) {
	store := newFakeStore()
	merger := NewMerger(store, 2, 3*time.Minute)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		merger.Ingest(heartbeatAt("Code", "main.go", start.Add(time.Duration(i)*2*time.Second)))
	}
	merger.Flush()

	require.Len(t, store.inserts, 1)
	assert.Equal(t, 30, store.durations[1], "15 heartbeats at 2s each should sum to 30s")
	assert.Equal(t, "2026-08-28", store.inserts[0].Date)
}

func TestMergerSplitsOnIdentityChange(t *testing.T) {
	store := newFakeStore()
	merger := NewMerger(store, 2, 3*time.Minute)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	merger.Ingest(heartbeatAt("Code", "main.go", start))
	merger.Ingest(heartbeatAt("Code", "main.go", start.Add(2*time.Second)))
	merger.Ingest(heartbeatAt("Code", "merger.go", start.Add(4*time.Second)))
	merger.Ingest(heartbeatAt("Safari", "merger.go", start.Add(6*time.Second)))
	merger.Flush()

	require.Len(t, store.inserts, 3)
	assert.Equal(t, 4, store.durations[1])
	assert.Equal(t, 2, store.durations[2])
	assert.Equal(t, 2, store.durations[3])
	assert.Equal(t, "main.go", store.inserts[0].WindowTitle)
	assert.Equal(t, "merger.go", store.inserts[1].WindowTitle)
	assert.Equal(t, "Safari", store.inserts[2].AppName)
}

func TestMergerIdentityIsCaseSensitive(t *testing.T) {
	store := newFakeStore()
	merger := NewMerger(store, 2, 3*time.Minute)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	merger.Ingest(heartbeatAt("Code", "Main.go", start))
	merger.Ingest(heartbeatAt("Code", "main.go", start.Add(2*time.Second)))
	merger.Flush()

	assert.Len(t, store.inserts, 2)
}

func TestMergerIdleHandling(t *testing.T) {
	t.Run("short idle keeps session open without adding time", func(t *testing.T) {
		store := newFakeStore()
		merger := NewMerger(store, 2, 3*time.Minute)

		start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
		merger.Ingest(heartbeatAt("Code", "main.go", start))
		merger.Ingest(heartbeatAt("Code", "main.go", start.Add(2*time.Second)))

		idle := heartbeatAt("Code", "main.go", start.Add(4*time.Second))
		idle.Idle = true
		merger.Ingest(idle)

		merger.Ingest(heartbeatAt("Code", "main.go", start.Add(6*time.Second)))
		merger.Flush()

		require.Len(t, store.inserts, 1)
		assert.Equal(t, 6, store.durations[1], "idle heartbeat contributes no duration")
	})

	t.Run("idle past threshold closes the session", func(t *testing.T) {
		store := newFakeStore()
		merger := NewMerger(store, 2, 10*time.Second)

		start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
		merger.Ingest(heartbeatAt("Code", "main.go", start))

		for i := 1; i <= 6; i++ {
			idle := heartbeatAt("Code", "main.go", start.Add(time.Duration(i)*2*time.Second))
			idle.Idle = true
			merger.Ingest(idle)
		}

		// Activity resumes with the same window: a fresh session opens.
		merger.Ingest(heartbeatAt("Code", "main.go", start.Add(20*time.Second)))
		merger.Flush()

		require.Len(t, store.inserts, 2)
		assert.Equal(t, 2, store.durations[1])
		assert.Equal(t, 2, store.durations[2])
	})
}

func TestMergerDayRollover(t *testing.T) {
	store := newFakeStore()
	merger := NewMerger(store, 2, 3*time.Minute)

	beforeMidnight := time.Date(2026, 8, 28, 23, 59, 58, 0, time.UTC)
	merger.Ingest(heartbeatAt("Code", "main.go", beforeMidnight))
	merger.Ingest(heartbeatAt("Code", "main.go", beforeMidnight.Add(2*time.Second)))

	require.Len(t, store.inserts, 2, "crossing midnight must split the session")
	assert.Equal(t, "2026-08-28", store.inserts[0].Date)
	assert.Equal(t, "2026-08-29", store.inserts[1].Date)

	select {
	case completed := <-merger.DayChanges():
		assert.Equal(t, "2026-08-28", completed)
	default:
		t.Fatal("expected a day-change notification")
	}
}

func TestMergerSurvivesStoreFailures(t *testing.T) {
	store := newFakeStore()
	store.failInserts = true
	merger := NewMerger(store, 2, 3*time.Minute)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	merger.Ingest(heartbeatAt("Code", "main.go", start))
	merger.Ingest(heartbeatAt("Code", "main.go", start.Add(2*time.Second)))

	// The store recovers; the next identity switch opens a working session.
	store.failInserts = false
	merger.Ingest(heartbeatAt("Safari", "docs", start.Add(4*time.Second)))
	merger.Ingest(heartbeatAt("Safari", "docs", start.Add(6*time.Second)))
	merger.Flush()

	require.Len(t, store.inserts, 1)
	assert.Equal(t, "Safari", store.inserts[0].AppName)
	assert.Equal(t, 4, store.durations[1])
}

func TestMergerFlushIsIdempotent(t *testing.T) {
	store := newFakeStore()
	merger := NewMerger(store, 2, 3*time.Minute)

	merger.Ingest(heartbeatAt("Code", "main.go", time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)))
	merger.Flush()
	merger.Flush()

	assert.Len(t, store.inserts, 1)
	assert.Equal(t, 2, store.durations[1])
}
