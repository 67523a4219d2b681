package host

import (
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// DBusOverlay forwards visibility changes to the overlay process over D-Bus.
// Calls are fire-and-forget; the overlay does not reply.
type DBusOverlay struct {
	logger *slog.Logger
	method string
	call   func(visible bool) error
}

// NewDBusOverlay creates an overlay controller calling iface.method(visible)
// on the object at path owned by dest.
func NewDBusOverlay(conn *dbus.Conn, dest, path, iface, method string, logger *slog.Logger) *DBusOverlay {
	obj := conn.Object(dest, dbus.ObjectPath(path))
	member := iface + "." + method
	return newDBusOverlay(member, func(visible bool) error {
		return obj.Go(member, dbus.FlagNoReplyExpected, nil, visible).Err
	}, logger)
}

func newDBusOverlay(method string, call func(bool) error, logger *slog.Logger) *DBusOverlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &DBusOverlay{
		logger: logger,
		method: method,
		call:   call,
	}
}

// SetOverlayVisibility implements interfaces.OverlayController.
func (o *DBusOverlay) SetOverlayVisibility(visible bool) {
	if err := o.call(visible); err != nil {
		o.logger.Warn("failed to set overlay visibility", "method", o.method, "visible", visible, "error", err)
		return
	}
	o.logger.Debug("overlay visibility sent", "method", o.method, "visible", visible)
}

// LogOverlay only logs visibility changes. It is used when no overlay
// process is attached.
type LogOverlay struct {
	logger *slog.Logger
}

// NewLogOverlay creates a logging overlay controller.
func NewLogOverlay(logger *slog.Logger) *LogOverlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogOverlay{logger: logger}
}

// SetOverlayVisibility implements interfaces.OverlayController.
func (o *LogOverlay) SetOverlayVisibility(visible bool) {
	o.logger.Info("overlay visibility", "visible", visible)
}

// Ensure overlays implement OverlayController
var (
	_ interfaces.OverlayController = (*DBusOverlay)(nil)
	_ interfaces.OverlayController = (*LogOverlay)(nil)
)
