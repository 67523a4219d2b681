package poller

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

var (
	// ErrDuplicatePoller is returned when a name is already registered.
	ErrDuplicatePoller = errors.New("poller already registered")
	// ErrUnknownPoller is returned when no poller is registered under a name.
	ErrUnknownPoller = errors.New("poller not registered")
)

// Registry holds the named pollers of the application.
// Like the pollers themselves, its mutating methods belong on the scheduler goroutine.
type Registry struct {
	mu      sync.Mutex
	logger  *slog.Logger
	pollers map[string]interfaces.Poller
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		pollers: make(map[string]interfaces.Poller),
	}
}

// Add registers p under name and enables it if active is true.
func (r *Registry) Add(name string, p interfaces.Poller, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pollers[name]; exists {
		return fmt.Errorf("add %q: %w", name, ErrDuplicatePoller)
	}

	r.pollers[name] = p
	r.order = append(r.order, name)
	if active {
		p.Enable()
	}

	r.logger.Debug("poller registered", "name", name, "active", active)
	return nil
}

// Remove destroys and unregisters the poller registered under name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pollers[name]
	if !exists {
		return fmt.Errorf("remove %q: %w", name, ErrUnknownPoller)
	}

	p.Destroy()
	delete(r.pollers, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Enable enables the poller registered under name.
func (r *Registry) Enable(name string) error {
	p, err := r.get(name)
	if err != nil {
		return err
	}
	p.Enable()
	return nil
}

// Disable disables the poller registered under name.
func (r *Registry) Disable(name string) error {
	p, err := r.get(name)
	if err != nil {
		return err
	}
	p.Disable()
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// DestroyAll destroys every poller in reverse registration order and empties the registry.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		r.pollers[r.order[i]].Destroy()
	}
	r.pollers = make(map[string]interfaces.Poller)
	r.order = nil
}

func (r *Registry) get(name string) (interfaces.Poller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, exists := r.pollers[name]
	if !exists {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPoller)
	}
	return p, nil
}
