package host

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// processListTTL bounds how often the process table is walked.
const processListTTL = 5 * time.Second

// ProcessModes adds modes to a scope while matching processes run, for
// example sleep while a screen locker is up.
type ProcessModes struct {
	base   interfaces.ScopeProvider
	logger *slog.Logger
	rules  []modeRule
	names  func() ([]string, error)
	clock  interfaces.Clock

	mu       sync.Mutex
	cached   []string
	cachedAt time.Time
}

type modeRule struct {
	mode     string
	patterns []string
}

// NewProcessModes wraps base. rules maps a mode to process name patterns; a
// pattern matches a process whose lowercased name starts with it.
func NewProcessModes(base interfaces.ScopeProvider, rules map[string][]string, logger *slog.Logger) *ProcessModes {
	return newProcessModes(base, rules, runningProcessNames, wallClock{}, logger)
}

func newProcessModes(base interfaces.ScopeProvider, rules map[string][]string, names func() ([]string, error), clock interfaces.Clock, logger *slog.Logger) *ProcessModes {
	p := &ProcessModes{
		base:   base,
		logger: loggerOrDefault(logger),
		names:  names,
		clock:  clock,
	}

	for mode, patterns := range rules {
		rule := modeRule{mode: mode}
		for _, pattern := range patterns {
			if pattern = strings.ToLower(strings.TrimSpace(pattern)); pattern != "" {
				rule.patterns = append(rule.patterns, pattern)
			}
		}
		if len(rule.patterns) > 0 {
			p.rules = append(p.rules, rule)
		}
	}
	// Stable mode order regardless of map iteration
	sort.Slice(p.rules, func(i, j int) bool { return p.rules[i].mode < p.rules[j].mode })

	return p
}

// Tags returns the base tags.
func (p *ProcessModes) Tags() []string {
	return p.base.Tags()
}

// Modes returns the base modes plus every mode with a matching process.
func (p *ProcessModes) Modes() []string {
	modes := p.base.Modes()
	if len(p.rules) == 0 {
		return modes
	}

	names, err := p.processNames()
	if err != nil {
		p.logger.Debug("process list unavailable", "error", err)
		return modes
	}

	for _, rule := range p.rules {
		if slices.Contains(modes, rule.mode) {
			continue
		}
		if matchesAny(names, rule.patterns) {
			modes = append(modes, rule.mode)
		}
	}
	return modes
}

// processNames returns the process list, reading it at most once per
// processListTTL. Failures are not cached.
func (p *ProcessModes) processNames() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if p.cached != nil && now.Sub(p.cachedAt) < processListTTL {
		return p.cached, nil
	}

	names, err := p.names()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	p.cached = names
	p.cachedAt = now
	return names, nil
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func matchesAny(names, patterns []string) bool {
	for _, name := range names {
		name = strings.ToLower(name)
		for _, pattern := range patterns {
			if strings.HasPrefix(name, pattern) {
				return true
			}
		}
	}
	return false
}

func runningProcessNames() ([]string, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(processes))
	for _, proc := range processes {
		name, err := proc.Name()
		if err != nil {
			// Exited or not ours to inspect
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Ensure ProcessModes implements ScopeProvider
var _ interfaces.ScopeProvider = (*ProcessModes)(nil)
