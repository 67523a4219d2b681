package host

import (
	"sync"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// StaticScope holds tags and modes set from configuration. It is updated
// from the config watcher goroutine and read from the scheduler goroutine.
type StaticScope struct {
	mu    sync.RWMutex
	tags  []string
	modes []string
}

// NewStaticScope creates a scope with the given tags and modes.
func NewStaticScope(tags, modes []string) *StaticScope {
	s := &StaticScope{}
	s.Update(tags, modes)
	return s
}

// Update replaces the tags and modes.
func (s *StaticScope) Update(tags, modes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append([]string(nil), tags...)
	s.modes = append([]string(nil), modes...)
}

// Tags returns the active tags.
func (s *StaticScope) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tags...)
}

// Modes returns the active modes.
func (s *StaticScope) Modes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.modes...)
}

// Ensure StaticScope implements ScopeProvider
var _ interfaces.ScopeProvider = (*StaticScope)(nil)
