package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
)

// HeartbeatEntry is one JSONL line in the spool format the native window
// sensor writes, mirrored here for generating test and simulation data.
type HeartbeatEntry struct {
	AppName     string `json:"app"`
	BundleID    string `json:"bundleId"`
	WindowTitle string `json:"title"`
	URL         string `json:"url,omitempty"`
	Context     string `json:"context,omitempty"`
	Idle        bool   `json:"idle,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// HeartbeatGenerator writes synthetic heartbeat streams as JSONL spool files.
type HeartbeatGenerator struct {
	baseDir  string
	interval time.Duration
}

// NewHeartbeatGenerator creates a generator emitting heartbeats every
// interval into baseDir.
func NewHeartbeatGenerator(baseDir string, interval time.Duration) *HeartbeatGenerator {
	return &HeartbeatGenerator{baseDir: baseDir, interval: interval}
}

// GenerateSteadySession appends count heartbeats for one unchanged window,
// starting at startTime, and returns the spool file path.
func (g *HeartbeatGenerator) GenerateSteadySession(file, app, title string, startTime time.Time, count int) (string, error) {
	entries := make([]HeartbeatEntry, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, HeartbeatEntry{
			AppName:     app,
			WindowTitle: title,
			Timestamp:   startTime.Add(time.Duration(i) * g.interval).Format(time.RFC3339),
		})
	}
	return g.append(file, entries)
}

// GenerateAppSwitch appends a stream that changes window identity midway:
// beforeCount heartbeats on the first window, then afterCount on the second.
func (g *HeartbeatGenerator) GenerateAppSwitch(file string, startTime time.Time,
	firstApp, firstTitle string, beforeCount int,
	secondApp, secondTitle string, afterCount int) (string, error) {

	entries := make([]HeartbeatEntry, 0, beforeCount+afterCount)
	at := startTime
	for i := 0; i < beforeCount; i++ {
		entries = append(entries, HeartbeatEntry{
			AppName: firstApp, WindowTitle: firstTitle, Timestamp: at.Format(time.RFC3339),
		})
		at = at.Add(g.interval)
	}
	for i := 0; i < afterCount; i++ {
		entries = append(entries, HeartbeatEntry{
			AppName: secondApp, WindowTitle: secondTitle, Timestamp: at.Format(time.RFC3339),
		})
		at = at.Add(g.interval)
	}
	return g.append(file, entries)
}

// GenerateIdleGap appends activity, then idle heartbeats spanning gap, then
// resumed activity on the same window.
func (g *HeartbeatGenerator) GenerateIdleGap(file, app, title string, startTime time.Time,
	activeCount int, gap time.Duration, resumedCount int) (string, error) {

	entries := make([]HeartbeatEntry, 0, activeCount+resumedCount)
	at := startTime
	for i := 0; i < activeCount; i++ {
		entries = append(entries, HeartbeatEntry{
			AppName: app, WindowTitle: title, Timestamp: at.Format(time.RFC3339),
		})
		at = at.Add(g.interval)
	}
	idleEnd := at.Add(gap)
	for ; at.Before(idleEnd); at = at.Add(g.interval) {
		entries = append(entries, HeartbeatEntry{
			AppName: app, WindowTitle: title, Idle: true, Timestamp: at.Format(time.RFC3339),
		})
	}
	for i := 0; i < resumedCount; i++ {
		entries = append(entries, HeartbeatEntry{
			AppName: app, WindowTitle: title, Timestamp: at.Format(time.RFC3339),
		})
		at = at.Add(g.interval)
	}
	return g.append(file, entries)
}

// GenerateBrowsing appends URL-bearing heartbeats cycling through the given
// URLs, useful for exercising classification and suggestions.
func (g *HeartbeatGenerator) GenerateBrowsing(file, app string, startTime time.Time, urls []string, perURL int) (string, error) {
	var entries []HeartbeatEntry
	at := startTime
	for _, url := range urls {
		for i := 0; i < perURL; i++ {
			entries = append(entries, HeartbeatEntry{
				AppName:     app,
				WindowTitle: url,
				URL:         url,
				Timestamp:   at.Format(time.RFC3339),
			})
			at = at.Add(g.interval)
		}
	}
	return g.append(file, entries)
}

func (g *HeartbeatGenerator) append(file string, entries []HeartbeatEntry) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", fmt.Errorf("create fixture directory: %w", err)
	}
	path := filepath.Join(g.baseDir, file)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open fixture file: %w", err)
	}
	defer f.Close()

	for _, entry := range entries {
		line, err := sonic.Marshal(entry)
		if err != nil {
			return "", fmt.Errorf("marshal heartbeat: %w", err)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return "", fmt.Errorf("write heartbeat: %w", err)
		}
	}
	return path, nil
}
