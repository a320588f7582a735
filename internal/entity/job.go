package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// JobProgress is a snapshot of one job's state, returned by the Job Queue
// and surfaced through the status endpoint.
type JobProgress struct {
	ID          uuid.UUID
	Name        string
	Status      JobStatus
	Err         string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// JobContext carries the identity of the job currently executing through
// the Planner/Executor call chain instead of relying on ambient
// goroutine-local state.
type JobContext struct {
	JobID string
}
