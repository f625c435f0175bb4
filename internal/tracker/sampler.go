package tracker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-focus-monitor/internal/core/model"
	"github.com/penwyp/go-focus-monitor/internal/util"
)

// Sampler is a source of foreground-window heartbeats. The OS-level sensor
// itself lives outside this process; samplers adapt whatever feed it provides
// into the heartbeat channel the tracker consumes.
type Sampler interface {
	Heartbeats() <-chan model.Heartbeat
	Close() error
}

// heartbeatLine is the JSONL wire format the native sensor appends to spool
// files, one sample per line.
type heartbeatLine struct {
	AppName     string `json:"app"`
	BundleID    string `json:"bundleId"`
	WindowTitle string `json:"title"`
	URL         string `json:"url,omitempty"`
	Context     string `json:"context,omitempty"`
	Idle        bool   `json:"idle,omitempty"`
	Timestamp   string `json:"timestamp"`
}

func (l heartbeatLine) toHeartbeat() (model.Heartbeat, error) {
	ts, err := time.Parse(time.RFC3339, l.Timestamp)
	if err != nil {
		return model.Heartbeat{}, fmt.Errorf("parse heartbeat timestamp %q: %w", l.Timestamp, err)
	}
	return model.Heartbeat{
		AppName:     l.AppName,
		BundleID:    l.BundleID,
		WindowTitle: l.WindowTitle,
		URL:         l.URL,
		Context:     l.Context,
		Idle:        l.Idle,
		Timestamp:   ts,
	}, nil
}

// SpoolSampler tails JSONL spool files the native window sensor writes into a
// directory, emitting each appended line as a heartbeat. Malformed lines are
// logged and skipped.
type SpoolSampler struct {
	watcher    *fsnotify.Watcher
	heartbeats chan model.Heartbeat

	mu      sync.Mutex
	offsets map[string]int64

	closing chan struct{}
	done    chan struct{}
}

// NewSpoolSampler starts watching dir (created if missing) for spool writes.
func NewSpoolSampler(dir string) (*SpoolSampler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create spool watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch spool directory: %w", err)
	}

	s := &SpoolSampler{
		watcher:    watcher,
		heartbeats: make(chan model.Heartbeat, 100),
		offsets:    make(map[string]int64),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
	}

	go s.run(dir)
	return s, nil
}

// Heartbeats returns the heartbeat channel.
func (s *SpoolSampler) Heartbeats() <-chan model.Heartbeat {
	return s.heartbeats
}

// Close stops watching and closes the heartbeat channel.
func (s *SpoolSampler) Close() error {
	close(s.closing)
	err := s.watcher.Close()
	<-s.done
	close(s.heartbeats)
	return err
}

// run catches up on lines already spooled, then follows watcher events.
// Everything happens on one goroutine so a file is never drained twice
// concurrently.
func (s *SpoolSampler) run(dir string) {
	defer close(s.done)

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".jsonl" {
				s.drainFile(filepath.Join(dir, entry.Name()))
			}
		}
	}

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".jsonl" {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				s.drainFile(event.Name)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Spool watcher error: " + err.Error())
		}
	}
}

// drainFile reads lines appended since the last drain and emits them.
func (s *SpoolSampler) drainFile(path string) {
	s.mu.Lock()
	offset := s.offsets[path]
	s.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		util.LogWarnf("Failed to open spool file %s: %v", path, err)
		return
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil && info.Size() < offset {
		// Spool file was rotated or truncated; start over.
		offset = 0
	}
	if _, err := file.Seek(offset, 0); err != nil {
		util.LogWarnf("Failed to seek spool file %s: %v", path, err)
		return
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	read := offset
	for scanner.Scan() {
		read += int64(len(scanner.Bytes())) + 1
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var line heartbeatLine
		if err := sonic.Unmarshal(scanner.Bytes(), &line); err != nil {
			util.LogDebugf("Skip invalid spool line in %s: %v", path, err)
			continue
		}
		hb, err := line.toHeartbeat()
		if err != nil {
			util.LogDebugf("Skip spool line in %s: %v", path, err)
			continue
		}
		select {
		case s.heartbeats <- hb:
		case <-s.closing:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		util.LogWarnf("Failed to read spool file %s: %v", path, err)
		return
	}

	s.mu.Lock()
	s.offsets[path] = read
	s.mu.Unlock()
}

// ReplaySampler replays a JSONL heartbeat file in order, then closes its
// channel. Used for simulation and debugging recorded streams.
type ReplaySampler struct {
	heartbeats chan model.Heartbeat
}

// NewReplaySampler reads the whole file up front and streams it.
func NewReplaySampler(path string) (*ReplaySampler, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer file.Close()

	var heartbeats []model.Heartbeat
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var line heartbeatLine
		if err := sonic.Unmarshal(scanner.Bytes(), &line); err != nil {
			util.LogDebugf("Skip invalid replay line %s:%d: %v", path, lineNo, err)
			continue
		}
		hb, err := line.toHeartbeat()
		if err != nil {
			util.LogDebugf("Skip replay line %s:%d: %v", path, lineNo, err)
			continue
		}
		heartbeats = append(heartbeats, hb)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	s := &ReplaySampler{heartbeats: make(chan model.Heartbeat, len(heartbeats))}
	for _, hb := range heartbeats {
		s.heartbeats <- hb
	}
	close(s.heartbeats)
	return s, nil
}

// Heartbeats returns the replay channel; it is closed after the last sample.
func (s *ReplaySampler) Heartbeats() <-chan model.Heartbeat {
	return s.heartbeats
}

// Close is a no-op for replays.
func (s *ReplaySampler) Close() error {
	return nil
}
