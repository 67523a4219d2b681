// Package idle tracks how recently the user showed signs of activity.
package idle

import (
	"sync"
	"time"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock. time.Now readings carry a monotonic
// component, so differences between them never go backwards.
var SystemClock interfaces.Clock = systemClock{}

// ActivityTracker records the last activity time and counts activity signals
// accumulated since the counter was last reset.
type ActivityTracker struct {
	mu           sync.RWMutex
	clock        interfaces.Clock
	lastActivity time.Time
	count        int
}

// NewActivityTracker creates a tracker that considers the user active now.
func NewActivityTracker(clock interfaces.Clock) *ActivityTracker {
	if clock == nil {
		clock = SystemClock
	}
	return &ActivityTracker{
		clock:        clock,
		lastActivity: clock.Now(),
	}
}

// MarkActivity sets the last activity time to now and returns the number of
// signals accumulated since the last reset, including this one.
func (t *ActivityTracker) MarkActivity() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if now.After(t.lastActivity) {
		t.lastActivity = now
	}
	t.count++
	return t.count
}

// ResetCount clears the accumulated signal count.
func (t *ActivityTracker) ResetCount() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = 0
}

// Count returns the accumulated signal count.
func (t *ActivityTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// SinceActivity returns the time elapsed since the last activity.
func (t *ActivityTracker) SinceActivity() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clock.Now().Sub(t.lastActivity)
}

// IsUserIdle returns true once the time since the last activity exceeds
// the threshold.
func (t *ActivityTracker) IsUserIdle(threshold time.Duration) (bool, error) {
	return t.SinceActivity() > threshold, nil
}

// LastActivity returns the last time activity was marked.
func (t *ActivityTracker) LastActivity() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastActivity
}

// Ensure ActivityTracker implements IdleDetector
var _ interfaces.IdleDetector = (*ActivityTracker)(nil)
