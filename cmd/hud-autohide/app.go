package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Veraticus/hud-autohide/pkg/config"
	"github.com/Veraticus/hud-autohide/pkg/host"
	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/poller"
	"github.com/Veraticus/hud-autohide/pkg/scheduler"
	"github.com/Veraticus/hud-autohide/pkg/status"
)

// shutdownTimeout bounds how long shutdown waits for the loop to destroy pollers.
const shutdownTimeout = 2 * time.Second

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config          *config.Config
	Logger          *slog.Logger
	Scope           *host.StaticScope
	Environment     poller.Environment
	Loop            *scheduler.Loop
	Registry        *poller.Registry
	Poller          *poller.FullScreenPoller
	StatusIndicator *status.Indicator
	ConfigWatcher   *config.Watcher
	MQTT            *host.MQTTOverlay

	bus      *dbus.Conn
	stopChan chan struct{}
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = slog.Default()
	}

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		stopChan: make(chan struct{}),
	}

	// The session bus is only needed for the dbus overlay and the screensaver query
	if cfg.Overlay.Backend == config.BackendDBus || cfg.ScreenSaver {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}
		deps.bus = conn
	}

	// Status badge on stderr, only when there is a terminal to draw on
	isTerminal := isatty(os.Stderr.Fd())
	deps.StatusIndicator = status.NewIndicator(os.Stderr, isTerminal)
	deps.StatusIndicator.StartAutoRefresh(deps.stopChan)

	if cfg.Overlay.Backend == config.BackendMQTT {
		deps.MQTT = host.NewMQTTOverlay(host.MQTTOptions{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		}, logger)
		if err := deps.MQTT.Connect(); err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to connect to mqtt broker: %w", err)
		}
	}

	overlay, err := newOverlay(cfg, deps.bus, deps.MQTT, deps.StatusIndicator, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}

	deps.Scope = host.NewStaticScope(cfg.Tags, cfg.Modes)
	var scope interfaces.ScopeProvider = deps.Scope
	if cfg.ScreenSaver {
		scope = host.NewScreenSaverModes(scope, deps.bus, logger)
	}
	if len(cfg.ModeProcesses) > 0 {
		scope = host.NewProcessModes(scope, cfg.ModeProcesses, logger)
	}

	x11 := host.NewX11(logger)
	deps.Environment = poller.Environment{
		Windows:    x11,
		Screens:    x11,
		Scope:      scope,
		Microphone: host.NewPulseMicrophone(logger),
		Mouse:      x11,
		Overlay:    overlay,
		Platform:   host.CurrentPlatform(),
	}

	deps.Loop = scheduler.NewLoop(logger)
	deps.Registry = poller.NewRegistry(logger)
	deps.Poller = poller.NewFullScreenPoller(deps.Environment, deps.Loop,
		poller.WithEnablingTag(cfg.EnablingTag),
		poller.WithLogger(logger),
	)

	// Config reloads only update the scope; everything else needs a restart
	watcher, err := config.NewWatcher(config.Path(), logger)
	if err != nil {
		logger.Warn("config hot reload unavailable", "error", err)
	} else {
		watcher.SetChangeCallback(deps.applyConfig)
		deps.ConfigWatcher = watcher
	}

	return deps, nil
}

// applyConfig pushes reloaded tags and modes into the scope and redraws the
// badge so a terminal user sees the reload took effect.
func (d *Dependencies) applyConfig(updated *config.Config) {
	d.Scope.Update(updated.Tags, updated.Modes)
	if d.StatusIndicator != nil {
		d.StatusIndicator.Refresh()
	}
	d.Logger.Debug("scope reloaded", "tags", updated.Tags, "modes", updated.Modes)
}

// newOverlay builds the overlay controller for the configured backend
func newOverlay(cfg *config.Config, bus *dbus.Conn, broker *host.MQTTOverlay, indicator *status.Indicator, logger *slog.Logger) (interfaces.OverlayController, error) {
	switch cfg.Overlay.Backend {
	case config.BackendTerminal:
		// The badge itself is the overlay
		return indicator, nil
	case config.BackendLog:
		return status.NewReporter(host.NewLogOverlay(logger), indicator), nil
	case config.BackendDBus:
		if bus == nil {
			return nil, errors.New("dbus overlay requires a session bus connection")
		}
		o := cfg.Overlay
		next := host.NewDBusOverlay(bus, o.Destination, o.Path, o.Interface, o.Method, logger)
		return status.NewReporter(next, indicator), nil
	case config.BackendMQTT:
		if broker == nil {
			return nil, errors.New("mqtt overlay requires a broker connection")
		}
		return status.NewReporter(broker, indicator), nil
	default:
		return nil, fmt.Errorf("unknown overlay backend %q", cfg.Overlay.Backend)
	}
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.ConfigWatcher != nil {
		if err := d.ConfigWatcher.Stop(); err != nil {
			d.Logger.Debug("config watcher stop failed", "error", err)
		}
		d.ConfigWatcher = nil
	}

	// Stop status indicator refresh
	if d.stopChan != nil {
		select {
		case <-d.stopChan:
			// Already closed
		default:
			close(d.stopChan)
		}
		d.stopChan = nil
	}

	// Clean up status indicator
	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}

	if d.MQTT != nil {
		d.MQTT.Close()
		d.MQTT = nil
	}

	if d.bus != nil {
		_ = d.bus.Close()
		d.bus = nil
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run registers the poller and dispatches its jobs until ctx is done.
// Pollers are destroyed before Run returns so the overlay is left visible.
func (a *Application) Run(ctx context.Context) error {
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- a.deps.Loop.Run(loopCtx)
	}()

	if a.deps.ConfigWatcher != nil {
		if err := a.deps.ConfigWatcher.Start(); err != nil {
			a.deps.Logger.Warn("config hot reload unavailable", "path", config.Path(), "error", err)
		}
	}

	var addErr error
	if err := a.deps.Loop.Do(ctx, func() {
		addErr = a.deps.Registry.Add(a.deps.Config.PollerName, a.deps.Poller, a.deps.Config.ActiveByDefault)
	}); err != nil {
		return a.shutdown(cancelLoop, loopErr, err)
	}
	if addErr != nil {
		return a.shutdown(cancelLoop, loopErr, addErr)
	}

	// Set once the poller is registered; a command retained on the broker
	// is replayed here and overrides active_by_default.
	if a.deps.MQTT != nil {
		a.deps.MQTT.SetCommandHandler(func(enabled bool) {
			if err := a.SetEnabled(ctx, enabled); err != nil {
				a.deps.Logger.Warn("failed to apply poller command", "enabled", enabled, "error", err)
			}
		})
	}

	a.deps.Logger.Info("poller started",
		"name", a.deps.Config.PollerName,
		"active", a.deps.Config.ActiveByDefault,
		"platform", a.deps.Environment.Platform,
	)

	select {
	case <-ctx.Done():
	case err := <-loopErr:
		// Loop exited on its own; nothing left to destroy on it
		return err
	}

	return a.shutdown(cancelLoop, loopErr, nil)
}

// SetEnabled enables or disables the registered poller from outside the loop.
func (a *Application) SetEnabled(ctx context.Context, enabled bool) error {
	var opErr error
	err := a.deps.Loop.Do(ctx, func() {
		if enabled {
			opErr = a.deps.Registry.Enable(a.deps.Config.PollerName)
		} else {
			opErr = a.deps.Registry.Disable(a.deps.Config.PollerName)
		}
	})
	if err != nil {
		return err
	}
	if opErr == nil && a.deps.StatusIndicator != nil {
		a.deps.StatusIndicator.Refresh()
	}
	return opErr
}

func (a *Application) shutdown(cancelLoop context.CancelFunc, loopErr <-chan error, cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.deps.Loop.Do(ctx, a.deps.Registry.DestroyAll); err != nil {
		a.deps.Logger.Warn("failed to destroy pollers", "error", err)
	}

	cancelLoop()
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) && cause == nil {
		cause = err
	}
	return cause
}

// newLogger builds the process logger from the log config
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
