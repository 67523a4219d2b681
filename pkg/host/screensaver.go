package host

import (
	"log/slog"
	"slices"

	"github.com/godbus/dbus/v5"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/poller"
)

const (
	screenSaverName = "org.freedesktop.ScreenSaver"
	screenSaverPath = "/org/freedesktop/ScreenSaver"
)

// ScreenSaverModes adds the sleep mode to a scope while the session
// screensaver is active.
type ScreenSaverModes struct {
	base   interfaces.ScopeProvider
	logger *slog.Logger
	active func() (bool, error)
}

// NewScreenSaverModes wraps base with a screensaver query over conn.
func NewScreenSaverModes(base interfaces.ScopeProvider, conn *dbus.Conn, logger *slog.Logger) *ScreenSaverModes {
	obj := conn.Object(screenSaverName, dbus.ObjectPath(screenSaverPath))
	return newScreenSaverModes(base, func() (bool, error) {
		var active bool
		err := obj.Call(screenSaverName+".GetActive", 0).Store(&active)
		return active, err
	}, logger)
}

func newScreenSaverModes(base interfaces.ScopeProvider, active func() (bool, error), logger *slog.Logger) *ScreenSaverModes {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenSaverModes{
		base:   base,
		logger: logger,
		active: active,
	}
}

// Tags returns the base tags.
func (s *ScreenSaverModes) Tags() []string {
	return s.base.Tags()
}

// Modes returns the base modes plus the sleep mode while the screensaver runs.
func (s *ScreenSaverModes) Modes() []string {
	modes := s.base.Modes()
	if slices.Contains(modes, poller.SleepMode) {
		return modes
	}

	active, err := s.active()
	if err != nil {
		s.logger.Debug("screensaver state unavailable", "error", err)
		return modes
	}
	if active {
		modes = append(modes, poller.SleepMode)
	}
	return modes
}

// Ensure ScreenSaverModes implements ScopeProvider
var _ interfaces.ScopeProvider = (*ScreenSaverModes)(nil)
