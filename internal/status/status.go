// Package status publishes a single point-in-time EngineStatus snapshot that
// any number of readers can poll concurrently with the one writer driving a
// scan or auto-scan tick.
package status

import (
	"sync"
	"time"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Reporter is a mutex-protected publisher of the engine's current state.
type Reporter struct {
	mu      sync.RWMutex
	current entity.EngineStatus
}

// NewReporter returns a Reporter starting in StateStandby.
func NewReporter() *Reporter {
	return &Reporter{current: entity.EngineStatus{State: entity.StateStandby, UpdatedAt: time.Now()}}
}

// Current returns the most recently published snapshot.
func (r *Reporter) Current() entity.EngineStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Set publishes a new snapshot, replacing whatever was there before.
func (r *Reporter) Set(state entity.EngineState, message string, progress *float64, meta map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = entity.EngineStatus{
		State:     state,
		Message:   message,
		Progress:  progress,
		Meta:      meta,
		UpdatedAt: time.Now(),
	}
}

// Progress publishes a scanning-state snapshot computed from a completed/planned
// pair, matching the original service's min(1.0, completed/planned) clamp.
func (r *Reporter) Progress(completed, planned int, message string, dryRun bool) {
	var p *float64
	if planned > 0 {
		v := float64(completed) / float64(planned)
		if v > 1.0 {
			v = 1.0
		}
		p = &v
	}
	r.Set(entity.StateScanning, message, p, map[string]any{
		"dry_run":   dryRun,
		"completed": completed,
		"planned":   planned,
	})
}

// Standby returns the reporter to its idle state.
func (r *Reporter) Standby(message string) {
	r.Set(entity.StateStandby, message, nil, nil)
}

// Error publishes a terminal error state.
func (r *Reporter) Error(message string, meta map[string]any) {
	r.Set(entity.StateError, message, nil, meta)
}
