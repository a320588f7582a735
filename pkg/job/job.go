// Package job implements a single-worker, FIFO job queue: callers enqueue a
// named unit of work, a single background goroutine drains the queue one
// job at a time, and JobProgress snapshots let callers poll status without
// blocking on completion.
package job

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/entity"
)

// Func is the unit of work a caller submits. ctx carries cancellation for
// Queue.Stop; the returned error, if any, marks the job Failed.
type Func func(ctx context.Context) error

type job struct {
	id          uuid.UUID
	name        string
	fn          Func
	status      entity.JobStatus
	err         error
	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time
}

func (j *job) snapshot() entity.JobProgress {
	p := entity.JobProgress{
		ID:          j.id,
		Name:        j.name,
		Status:      j.status,
		CreatedAt:   j.createdAt,
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
	}
	if j.err != nil {
		p.Err = j.err.Error()
	}
	return p
}

// ErrAlreadyRunning is returned by Enqueue when a job with the same name is
// already queued or running. Names are compared exactly, so the auto-scan
// driver's fixed "scan_auto_<reason>" names keep the same trigger from being
// queued twice; jobs with other names are not affected.
type ErrAlreadyRunning struct {
	Name string
}

func (e *ErrAlreadyRunning) Error() string {
	return fmt.Sprintf("job %q is already queued or running", e.Name)
}

// Queue runs submitted jobs one at a time, in submission order.
type Queue struct {
	mu       sync.Mutex
	jobs     *list.List // of *job, oldest first
	byID     map[uuid.UUID]*job
	notify   chan struct{}
	log      *zap.SugaredLogger
	cancel   context.CancelFunc
	stopped  chan struct{}
	running  *job
}

// NewQueue creates a queue and starts its background worker. Call Stop to
// shut the worker down and wait for any in-flight job to return.
func NewQueue(log *zap.SugaredLogger) *Queue {
	if log == nil {
		log = zap.S()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:    list.New(),
		byID:    make(map[uuid.UUID]*job),
		notify:  make(chan struct{}, 1),
		log:     log.Named("job_queue"),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go q.worker(ctx)
	return q
}

// Enqueue adds fn under name to the back of the queue and returns its id.
// If a job named name is already queued or currently running, Enqueue
// returns ErrAlreadyRunning and does not enqueue a duplicate.
func (q *Queue) Enqueue(name string, fn Func) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running != nil && q.running.name == name {
		return uuid.Nil, &ErrAlreadyRunning{Name: name}
	}
	for e := q.jobs.Front(); e != nil; e = e.Next() {
		if e.Value.(*job).name == name {
			return uuid.Nil, &ErrAlreadyRunning{Name: name}
		}
	}

	j := &job{
		id:        uuid.New(),
		name:      name,
		fn:        fn,
		status:    entity.JobQueued,
		createdAt: time.Now(),
	}
	q.jobs.PushBack(j)
	q.byID[j.id] = j

	select {
	case q.notify <- struct{}{}:
	default:
	}

	return j.id, nil
}

// Status returns a snapshot of one job by id, or false if unknown.
func (q *Queue) Status(id uuid.UUID) (entity.JobProgress, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.byID[id]
	if !ok {
		return entity.JobProgress{}, false
	}
	return j.snapshot(), true
}

// Running reports the currently executing job, if any.
func (q *Queue) Running() (entity.JobProgress, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running == nil {
		return entity.JobProgress{}, false
	}
	return q.running.snapshot(), true
}

// All returns a snapshot of the running job, if any, followed by the queued
// jobs in submission order. Finished jobs are not included; Status still
// reports them by id.
func (q *Queue) All() []entity.JobProgress {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []entity.JobProgress
	if q.running != nil {
		out = append(out, q.running.snapshot())
	}
	for e := q.jobs.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*job).snapshot())
	}
	return out
}

// Stop cancels any in-flight job's context and waits for the worker to
// return. It does not drain or run remaining queued jobs.
func (q *Queue) Stop() {
	q.cancel()
	<-q.stopped
}

func (q *Queue) worker(ctx context.Context) {
	defer close(q.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		}

		for {
			j := q.pop()
			if j == nil {
				break
			}

			q.mu.Lock()
			now := time.Now()
			j.startedAt = &now
			j.status = entity.JobRunning
			q.running = j
			q.mu.Unlock()

			jobCtx := context.WithValue(ctx, jobContextKey{}, entity.JobContext{JobID: j.id.String()})
			q.log.Infow("job started", "job_id", j.id, "name", j.name)
			err := j.fn(jobCtx)

			q.mu.Lock()
			completed := time.Now()
			j.completedAt = &completed
			if err != nil {
				j.status = entity.JobFailed
				j.err = err
				q.log.Errorw("job failed", "job_id", j.id, "name", j.name, "error", err)
			} else {
				j.status = entity.JobDone
				q.log.Infow("job completed", "job_id", j.id, "name", j.name)
			}
			q.running = nil
			q.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}
}

func (q *Queue) pop() *job {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.jobs.Front()
	if front == nil {
		return nil
	}
	q.jobs.Remove(front)
	return front.Value.(*job)
}

type jobContextKey struct{}

// FromContext extracts the JobContext a Queue attaches to the context it
// passes a running job's Func, for components several calls deep (the
// Planner, the Executor) that want to tag log lines or activity entries
// with the job currently driving them.
func FromContext(ctx context.Context) (entity.JobContext, bool) {
	jc, ok := ctx.Value(jobContextKey{}).(entity.JobContext)
	return jc, ok
}
