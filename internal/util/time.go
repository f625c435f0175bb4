package util

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the local calendar date format used everywhere a report or
// record carries a date string.
const DateLayout = "2006-01-02"

// TimeProvider is a global time utility that handles timezone-aware time operations
type TimeProvider struct {
	location *time.Location
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// InitializeTimeProvider initializes the global time provider with the specified timezone
func InitializeTimeProvider(timezone string) error {
	mu.Lock()
	defer mu.Unlock()

	provider := &TimeProvider{}
	if err := provider.SetTimezone(timezone); err != nil {
		return err
	}

	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global time provider instance
// If not initialized, it defaults to Local timezone
func GetTimeProvider() *TimeProvider {
	if globalTimeProvider == nil {
		InitializeTimeProvider("Local")
	}
	return globalTimeProvider
}

// SetTimezone updates the timezone for the time provider
func (tp *TimeProvider) SetTimezone(timezone string) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London", timezone, err)
		}
		loc = l
	}
	tp.location = loc
	return nil
}

// Now returns the current time in the configured timezone
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return time.Now().In(tp.location)
}

// In converts a time to the configured timezone
func (tp *TimeProvider) In(t time.Time) time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location)
}

// Format formats a time according to the layout in the configured timezone
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}

// DateOf returns the local calendar date string for t.
func (tp *TimeProvider) DateOf(t time.Time) string {
	return tp.Format(t, DateLayout)
}

// Today returns the local calendar date string for the current time.
func (tp *TimeProvider) Today() string {
	return tp.DateOf(time.Now())
}

// DateOf returns the local calendar date string for t using the global provider.
func DateOf(t time.Time) string {
	return GetTimeProvider().DateOf(t)
}

// ParseDate parses a "2006-01-02" date string in the configured timezone.
func (tp *TimeProvider) ParseDate(date string) (time.Time, error) {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	t, err := time.ParseInLocation(DateLayout, date, tp.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': %w (expected %s)", date, err, DateLayout)
	}
	return t, nil
}
