// Package activity is the append-only log of notable scan events: warnings
// about missing sources, duplicate resolutions, and completed writes. It is
// distinct from the structured debug/trace logging in pkg/logger, which is
// operator-facing; activity entries are user-facing history.
package activity

import (
	"sync"
	"time"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// defaultCapacity bounds the in-memory ring so a long-running engine doesn't
// grow its activity log without limit.
const defaultCapacity = 500

// Sink is a bounded, append-only, thread-safe log of ActivityEntry values.
type Sink struct {
	mu       sync.Mutex
	entries  []entity.ActivityEntry
	capacity int
}

// NewSink returns a Sink holding at most capacity entries; capacity <= 0
// uses defaultCapacity.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Sink{capacity: capacity}
}

// Log appends one entry, evicting the oldest entry if the sink is full.
func (s *Sink) Log(level entity.ActivityLevel, message string, payload map[string]any, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := entity.ActivityEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Payload:   payload,
		JobID:     jobID,
	}
	s.entries = append(s.entries, entry)
	if overflow := len(s.entries) - s.capacity; overflow > 0 {
		s.entries = s.entries[overflow:]
	}
}

// Recent returns up to limit of the most recent entries, newest last. A
// limit <= 0 returns every retained entry.
func (s *Sink) Recent(limit int) []entity.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit >= len(s.entries) {
		out := make([]entity.ActivityEntry, len(s.entries))
		copy(out, s.entries)
		return out
	}
	start := len(s.entries) - limit
	out := make([]entity.ActivityEntry, limit)
	copy(out, s.entries[start:])
	return out
}
