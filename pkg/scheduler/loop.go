// Package scheduler runs interval jobs and arbitrary closures on a single
// goroutine, so job callbacks never overlap.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New("scheduler stopped")

type job struct {
	id     interfaces.JobID
	period time.Duration
	fn     func()
	stop   chan struct{}
}

// Loop is an interfaces.Scheduler backed by one dispatch goroutine.
// Cancel called from a callback (or a Do closure) guarantees that the job
// never fires again.
type Loop struct {
	mu     sync.Mutex
	logger *slog.Logger
	nextID interfaces.JobID
	jobs   map[interfaces.JobID]*job

	fired chan interfaces.JobID
	calls chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop. Call Run to start dispatching.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		jobs:   make(map[interfaces.JobID]*job),
		fired:  make(chan interfaces.JobID),
		calls:  make(chan func()),
		done:   make(chan struct{}),
	}
}

// Interval schedules fn every period until the job is cancelled.
func (l *Loop) Interval(period time.Duration, fn func()) interfaces.JobID {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	j := &job{
		id:     l.nextID,
		period: period,
		fn:     fn,
		stop:   make(chan struct{}),
	}
	l.jobs[j.id] = j

	go l.tick(j)

	l.logger.Debug("job scheduled", "job", j.id, "period", period)
	return j.id
}

// Cancel stops a job. Cancelling an unknown or zero id is a no-op.
func (l *Loop) Cancel(id interfaces.JobID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	j, ok := l.jobs[id]
	if !ok {
		return
	}
	delete(l.jobs, id)
	close(j.stop)
	l.logger.Debug("job cancelled", "job", id)
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.calls <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}

	<-finished
	return nil
}

// Run dispatches job callbacks and Do closures until ctx is done.
// All remaining jobs are cancelled before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	for {
		select {
		case id := <-l.fired:
			l.dispatch(id)
		case fn := <-l.calls:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending returns the number of scheduled jobs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

func (l *Loop) dispatch(id interfaces.JobID) {
	l.mu.Lock()
	j, ok := l.jobs[id]
	l.mu.Unlock()

	// Cancelled between the tick and dispatch.
	if !ok {
		return
	}
	j.fn()
}

// tick forwards a job's ticks to the loop goroutine. Ticks that arrive while
// the loop is busy are dropped by the ticker rather than queued.
func (l *Loop) tick(j *job) {
	ticker := time.NewTicker(j.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case l.fired <- j.id:
			case <-j.stop:
				return
			case <-l.done:
				return
			}
		case <-j.stop:
			return
		case <-l.done:
			return
		}
	}
}

func (l *Loop) stop() {
	l.once.Do(func() {
		close(l.done)

		l.mu.Lock()
		defer l.mu.Unlock()
		for id, j := range l.jobs {
			close(j.stop)
			delete(l.jobs, id)
		}
	})
}

// Ensure Loop implements Scheduler
var _ interfaces.Scheduler = (*Loop)(nil)
