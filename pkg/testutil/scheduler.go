package testutil

import (
	"sync"
	"time"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// FakeClock is a manually advanced clock for testing
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a fake clock starting at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements interfaces.Clock
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t if t is not in the past
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}

type manualJob struct {
	id     interfaces.JobID
	period time.Duration
	next   time.Time
	fn     func()
}

// ManualScheduler is a deterministic interfaces.Scheduler driven by Advance.
// Jobs fire in time order, one at a time, on the goroutine calling Advance.
type ManualScheduler struct {
	mu       sync.Mutex
	clock    *FakeClock
	nextID   interfaces.JobID
	jobs     map[interfaces.JobID]*manualJob
	started  int
	canceled int
}

// NewManualScheduler creates a scheduler that advances clock as jobs fire
func NewManualScheduler(clock *FakeClock) *ManualScheduler {
	return &ManualScheduler{
		clock: clock,
		jobs:  make(map[interfaces.JobID]*manualJob),
	}
}

// Interval implements interfaces.Scheduler
func (s *ManualScheduler) Interval(period time.Duration, fn func()) interfaces.JobID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.started++
	s.jobs[s.nextID] = &manualJob{
		id:     s.nextID,
		period: period,
		next:   s.clock.Now().Add(period),
		fn:     fn,
	}
	return s.nextID
}

// Cancel implements interfaces.Scheduler
func (s *ManualScheduler) Cancel(id interfaces.JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; ok {
		delete(s.jobs, id)
		s.canceled++
	}
}

// Advance moves time forward by d, firing every job that comes due
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)

	for {
		s.mu.Lock()
		var due *manualJob
		for _, j := range s.jobs {
			if j.next.After(target) {
				continue
			}
			if due == nil || j.next.Before(due.next) || (j.next.Equal(due.next) && j.id < due.id) {
				due = j
			}
		}
		if due == nil {
			s.mu.Unlock()
			break
		}
		at := due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		s.mu.Unlock()

		s.clock.Set(at)
		fn()
	}

	s.clock.Set(target)
}

// IsActive returns true if the job is scheduled
func (s *ManualScheduler) IsActive(id interfaces.JobID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// ActiveCount returns the number of scheduled jobs
func (s *ManualScheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// StartedCount returns how many jobs were ever scheduled
func (s *ManualScheduler) StartedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// CanceledCount returns how many scheduled jobs were canceled
func (s *ManualScheduler) CanceledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Ensure ManualScheduler implements Scheduler
var _ interfaces.Scheduler = (*ManualScheduler)(nil)
