package job

import (
    "encoding/json"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"

    "shipquote/internal/rate"
)

// ErrNotFound is returned when polling an unknown job identifier.
var ErrNotFound = errors.New("job not found")

// Status is a job's lifecycle state. There are exactly two: a job is
// created processing and transitions once to completed, never back.
type Status string

const (
    StatusProcessing Status = "processing"
    StatusCompleted  Status = "completed"
)

// Compute is the deferred unit of work that produces a job's result.
type Compute func() ([]rate.Quote, error)

// The poll view models the pipeline as two coarse steps, so a
// processing job reports one of two complete.
const progressSteps = 2

// Job is one rating request's lifecycle entry. The original request is
// retained for audit. done is closed exactly once, on completion.
type Job struct {
    ID        uuid.UUID
    Status    Status
    Request   json.RawMessage
    Result    []rate.Quote
    Err       error
    CreatedAt time.Time

    done chan struct{}
}

// View is what a poll observes, atomically pre- or post-transition.
type View struct {
    Done     bool
    Total    int
    Complete int
    Rates    []rate.Quote
    Err      error
}

// Store is the asynchronous request/poll facade over the rating
// pipeline. Entries live until process restart; there is no expiry,
// no cancellation and no failure state beyond a recorded compute error.
type Store struct {
    mu    sync.RWMutex
    jobs  map[uuid.UUID]*Job
    delay time.Duration
}

// NewStore creates a store whose scheduled computations complete after
// the given simulated delay. The delay must stay well under any
// round-trip deadline the caller imposes.
func NewStore(delay time.Duration) *Store {
    return &Store{
        jobs:  make(map[uuid.UUID]*Job),
        delay: delay,
    }
}

// Submit stores a processing job under a fresh random identifier,
// schedules compute to run off the calling goroutine, and returns the
// identifier immediately. Concurrent submissions never interfere: each
// call owns its own entry under a collision-free id.
func (s *Store) Submit(request json.RawMessage, compute Compute) uuid.UUID {
    j := &Job{
        ID:        uuid.New(),
        Status:    StatusProcessing,
        Request:   request,
        CreatedAt: time.Now().UTC(),
        done:      make(chan struct{}),
    }
    s.mu.Lock()
    s.jobs[j.ID] = j
    s.mu.Unlock()

    go s.run(j, compute)
    return j.ID
}

// run performs the job's single deferred unit of work and makes the
// processing-to-completed transition, the only mutation a job ever sees.
func (s *Store) run(j *Job, compute Compute) {
    time.Sleep(s.delay)
    result, err := compute()

    s.mu.Lock()
    j.Result = result
    j.Err = err
    j.Status = StatusCompleted
    s.mu.Unlock()

    close(j.done)
}

// Poll reports a job's current state. Unknown identifiers are a
// distinct not-found condition.
func (s *Store) Poll(id uuid.UUID) (View, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    j, ok := s.jobs[id]
    if !ok {
        return View{}, ErrNotFound
    }
    if j.Status != StatusCompleted {
        return View{Done: false, Total: progressSteps, Complete: progressSteps - 1}, nil
    }
    return View{
        Done:     true,
        Total:    progressSteps,
        Complete: progressSteps,
        Rates:    j.Result,
        Err:      j.Err,
    }, nil
}

// Done exposes the job's completion signal: the returned channel is
// closed when the scheduled computation finishes.
func (s *Store) Done(id uuid.UUID) (<-chan struct{}, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    j, ok := s.jobs[id]
    if !ok {
        return nil, ErrNotFound
    }
    return j.done, nil
}
