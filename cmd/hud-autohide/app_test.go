package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/hud-autohide/pkg/config"
	"github.com/Veraticus/hud-autohide/pkg/host"
	"github.com/Veraticus/hud-autohide/pkg/poller"
	"github.com/Veraticus/hud-autohide/pkg/scheduler"
	"github.com/Veraticus/hud-autohide/pkg/status"
	"github.com/Veraticus/hud-autohide/pkg/testutil"
	"github.com/Veraticus/hud-autohide/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDependencies builds dependencies around mocks instead of X11 and PulseAudio
func newTestDependencies(t *testing.T, threshold time.Duration) (*Dependencies, *testutil.MockOverlay) {
	t.Helper()

	screen := types.Rect{Width: 1920, Height: 1080}
	overlay := testutil.NewMockOverlay()
	env := poller.Environment{
		Windows:    testutil.NewMockWindowService(screen),
		Screens:    testutil.NewMockScreenService(screen),
		Scope:      testutil.NewMockScope([]string{poller.DefaultEnablingTag}, []string{poller.SleepMode}),
		Microphone: testutil.NewMockMicrophone("Built-in Microphone"),
		Mouse:      testutil.NewMockMouse(types.Point{X: 10, Y: 10}),
		Overlay:    overlay,
		Platform:   types.PlatformOther,
	}

	cfg := config.DefaultConfig()
	cfg.Overlay.Backend = config.BackendLog
	logger := discardLogger()
	loop := scheduler.NewLoop(logger)

	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Environment: env,
		Loop:        loop,
		Registry:    poller.NewRegistry(logger),
		Poller: poller.NewFullScreenPoller(env, loop,
			poller.WithInactivityThreshold(threshold),
			poller.WithLogger(logger),
		),
	}
	return deps, overlay
}

func TestNewDependencies(t *testing.T) {
	t.Setenv("HUD_AUTOHIDE_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	cfg := config.DefaultConfig()
	cfg.Overlay.Backend = config.BackendLog
	cfg.Tags = []string{poller.DefaultEnablingTag}

	deps, err := NewDependencies(cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if deps.Config != cfg {
		t.Error("expected config to be set")
	}
	if deps.Loop == nil || deps.Registry == nil || deps.Poller == nil {
		t.Error("expected loop, registry and poller to be created")
	}
	if deps.StatusIndicator == nil {
		t.Error("expected status indicator to be created")
	}
	if deps.ConfigWatcher == nil {
		t.Error("expected config watcher to be created")
	}
	if deps.bus != nil {
		t.Error("log backend should not connect to the session bus")
	}
	if _, ok := deps.Environment.Overlay.(*status.Reporter); !ok {
		t.Errorf("expected overlay to be a status reporter, got %T", deps.Environment.Overlay)
	}
	if got := deps.Scope.Tags(); len(got) != 1 || got[0] != poller.DefaultEnablingTag {
		t.Errorf("scope tags = %v", got)
	}
}

func TestNewDependencies_ProcessModes(t *testing.T) {
	t.Setenv("HUD_AUTOHIDE_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	cfg := config.DefaultConfig()
	cfg.Overlay.Backend = config.BackendLog
	cfg.ModeProcesses = map[string][]string{poller.SleepMode: {"swaylock"}}

	deps, err := NewDependencies(cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Environment.Scope.(*host.ProcessModes); !ok {
		t.Errorf("expected process modes scope, got %T", deps.Environment.Scope)
	}
}

func TestNewOverlay(t *testing.T) {
	indicator := status.NewIndicator(&bytes.Buffer{}, false)

	tests := []struct {
		name    string
		backend string
		wantErr bool
		check   func(t *testing.T, got any)
	}{
		{
			name:    "terminal backend uses the indicator",
			backend: config.BackendTerminal,
			check: func(t *testing.T, got any) {
				if got != indicator {
					t.Errorf("expected indicator, got %T", got)
				}
			},
		},
		{
			name:    "log backend is reported",
			backend: config.BackendLog,
			check: func(t *testing.T, got any) {
				if _, ok := got.(*status.Reporter); !ok {
					t.Errorf("expected reporter, got %T", got)
				}
			},
		},
		{
			name:    "dbus backend without a bus",
			backend: config.BackendDBus,
			wantErr: true,
		},
		{
			name:    "mqtt backend without a broker",
			backend: config.BackendMQTT,
			wantErr: true,
		},
		{
			name:    "unknown backend",
			backend: "carrier-pigeon",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Overlay.Backend = tt.backend

			got, err := newOverlay(cfg, nil, nil, indicator, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("newOverlay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestDependenciesClose(t *testing.T) {
	t.Setenv("HUD_AUTOHIDE_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	cfg := config.DefaultConfig()
	cfg.Overlay.Backend = config.BackendTerminal

	deps, err := NewDependencies(cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Closing twice must not panic
	deps.Close()
	deps.Close()
}

func TestApplicationRun(t *testing.T) {
	deps, overlay := newTestDependencies(t, time.Millisecond)
	app := NewApplication(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	// First primary tick at 500ms hides the overlay
	deadline := time.Now().Add(3 * time.Second)
	for overlay.CountCalls(false) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("overlay was never hidden")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	calls := overlay.GetCalls()
	if len(calls) != 2 || calls[0] || !calls[1] {
		t.Errorf("overlay calls = %v, want [false true]", calls)
	}
	if names := deps.Registry.Names(); len(names) != 0 {
		t.Errorf("expected registry to be emptied, got %v", names)
	}
	if pending := deps.Loop.Pending(); pending != 0 {
		t.Errorf("expected no pending jobs, got %d", pending)
	}
}

func TestApplicationRunInactiveByDefault(t *testing.T) {
	deps, overlay := newTestDependencies(t, time.Millisecond)
	deps.Config.ActiveByDefault = false
	app := NewApplication(deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	// Registration happens on the loop; wait for it
	deadline := time.Now().Add(time.Second)
	for len(deps.Registry.Names()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("poller was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(700 * time.Millisecond)
	if n := len(overlay.GetCalls()); n != 0 {
		t.Errorf("expected no overlay calls from a disabled poller, got %d", n)
	}

	if err := app.SetEnabled(ctx, true); err != nil {
		t.Fatalf("SetEnabled(true) error = %v", err)
	}

	deadline = time.Now().Add(3 * time.Second)
	for overlay.CountCalls(false) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("overlay was never hidden after enabling")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := app.SetEnabled(ctx, false); err != nil {
		t.Fatalf("SetEnabled(false) error = %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestApplicationRunDuplicateName(t *testing.T) {
	deps, _ := newTestDependencies(t, time.Millisecond)
	// Registered before Run so Add fails
	if err := deps.Registry.Add(deps.Config.PollerName, testutil.NewMockPoller(), false); err != nil {
		t.Fatalf("setup: %v", err)
	}

	app := NewApplication(deps)
	err := app.Run(context.Background())
	if !errors.Is(err, poller.ErrDuplicatePoller) {
		t.Errorf("Run() error = %v, want ErrDuplicatePoller", err)
	}
}

func TestApplicationSetEnabledUnknown(t *testing.T) {
	deps, _ := newTestDependencies(t, time.Millisecond)
	app := NewApplication(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = deps.Loop.Run(ctx)
	}()

	err := app.SetEnabled(ctx, true)
	if !errors.Is(err, poller.ErrUnknownPoller) {
		t.Errorf("SetEnabled() error = %v, want ErrUnknownPoller", err)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "text", format: "text", want: "msg=hello"},
		{name: "json", format: "json", want: `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Log.Format = tt.format
			cfg.Log.Level = "warn"

			buf := &bytes.Buffer{}
			logger := newLogger(buf, cfg)
			logger.Info("dropped")
			logger.Warn("hello")

			out := buf.String()
			if strings.Contains(out, "dropped") {
				t.Errorf("info record should be filtered at warn level: %q", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in %q", tt.want, out)
			}
		})
	}
}

// syncBuffer is written by the indicator's refresh goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForBadge(t *testing.T, buf *syncBuffer) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !strings.Contains(buf.String(), "HUD") {
		if time.Now().After(deadline) {
			t.Fatal("badge was not redrawn")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDependenciesApplyConfig(t *testing.T) {
	deps, _ := newTestDependencies(t, time.Millisecond)
	buf := &syncBuffer{}
	deps.Scope = host.NewStaticScope(nil, nil)
	deps.StatusIndicator = status.NewIndicator(buf, true)

	stop := make(chan struct{})
	defer close(stop)
	deps.StatusIndicator.StartAutoRefresh(stop)

	updated := config.DefaultConfig()
	updated.Tags = []string{poller.DefaultEnablingTag}
	updated.Modes = []string{poller.SleepMode}
	deps.applyConfig(updated)

	if got := deps.Scope.Tags(); len(got) != 1 || got[0] != poller.DefaultEnablingTag {
		t.Errorf("scope tags = %v", got)
	}
	if got := deps.Scope.Modes(); len(got) != 1 || got[0] != poller.SleepMode {
		t.Errorf("scope modes = %v", got)
	}

	// Redrawn well before the periodic refresh
	waitForBadge(t, buf)
}

func TestApplicationSetEnabledRedrawsBadge(t *testing.T) {
	deps, _ := newTestDependencies(t, time.Minute)
	buf := &syncBuffer{}
	deps.StatusIndicator = status.NewIndicator(buf, true)

	stop := make(chan struct{})
	defer close(stop)
	deps.StatusIndicator.StartAutoRefresh(stop)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = deps.Loop.Run(ctx)
	}()

	if err := deps.Loop.Do(ctx, func() {
		_ = deps.Registry.Add(deps.Config.PollerName, deps.Poller, false)
	}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	app := NewApplication(deps)
	if err := app.SetEnabled(ctx, true); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}

	waitForBadge(t, buf)
}
