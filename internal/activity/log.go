// Package activity provides the bounded, newest-first activity log shown
// alongside the device list.
package activity

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries retained when no capacity is configured.
const DefaultCapacity = 50

// timeOfDayLayout renders the wall-clock time of an entry for display.
const timeOfDayLayout = "3:04:05 PM"

// Entry is a single timestamped activity record.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// String formats the entry as "<time of day> - <message>".
func (e Entry) String() string {
	return e.Time.Format(timeOfDayLayout) + " - " + e.Message
}

// Log is a capped sequence of activity entries, most recent first.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

// NewLog creates an empty log that keeps at most capacity entries.
// A capacity below 1 falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock replaces the time source used to stamp new entries.
func (l *Log) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Add stamps message with the current time and places it at the front of the
// log, discarding the oldest entries beyond capacity. The stored entry is returned.
func (l *Log) Add(message string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{Time: l.now(), Message: message}

	l.entries = append(l.entries, Entry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = entry

	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
	return entry
}

// Entries returns a copy of the log, most recent first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines returns the log formatted for display, most recent first.
func (l *Log) Lines() []string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return lines
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Capacity returns the maximum number of retained entries.
func (l *Log) Capacity() int {
	return l.capacity
}
