// Package poller hides the overlay while the user is inactive in a fullscreen
// application and restores it as soon as activity resumes.
//
// All methods of FullScreenPoller must be called from the scheduler's
// callback goroutine; the poller holds no locks of its own.
package poller

import (
	"log/slog"
	"slices"
	"time"

	"github.com/Veraticus/hud-autohide/pkg/geometry"
	"github.com/Veraticus/hud-autohide/pkg/idle"
	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/types"
)

const (
	// InactivityThreshold is how long the user must be inactive before the
	// overlay is hidden. About the same delay video players use to fade controls.
	InactivityThreshold = 3500 * time.Millisecond

	// PollInterval is the period of the primary state check.
	PollInterval = 500 * time.Millisecond

	// MouseCheckInterval is the period of the mouse watch while hidden.
	MouseCheckInterval = 300 * time.Millisecond

	// ActivityBurstLimit is the number of indirect activity signals tolerated
	// while hidden. Popups and tooltips in fullscreen applications produce a
	// few of these without the user doing anything.
	ActivityBurstLimit = 3

	// DefaultEnablingTag is the scope tag that turns the feature on.
	DefaultEnablingTag = "user.hud_automatic_hide"

	// SleepMode is the scope mode reported while speech input is asleep.
	SleepMode = "sleep"

	// NoMicrophone is the microphone name reported when no input is active.
	NoMicrophone = "None"
)

// Environment bundles the host collaborators the poller queries each tick.
type Environment struct {
	Windows    interfaces.WindowService
	Screens    interfaces.ScreenService
	Scope      interfaces.ScopeProvider
	Microphone interfaces.MicrophoneProvider
	Mouse      interfaces.MouseProvider
	Overlay    interfaces.OverlayController
	Platform   types.Platform
}

// Option configures a FullScreenPoller.
type Option func(*FullScreenPoller)

// WithInactivityThreshold overrides InactivityThreshold.
func WithInactivityThreshold(d time.Duration) Option {
	return func(p *FullScreenPoller) {
		p.threshold = d
	}
}

// WithEnablingTag overrides DefaultEnablingTag.
func WithEnablingTag(tag string) Option {
	return func(p *FullScreenPoller) {
		p.enablingTag = tag
	}
}

// WithClock sets the clock used for activity tracking.
func WithClock(clock interfaces.Clock) Option {
	return func(p *FullScreenPoller) {
		p.clock = clock
	}
}

// WithIdleDetector replaces the built-in activity tracker. WithClock has no
// effect on a supplied detector.
func WithIdleDetector(detector interfaces.IdleDetector) Option {
	return func(p *FullScreenPoller) {
		p.tracker = detector
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *FullScreenPoller) {
		p.logger = logger
	}
}

// State is a snapshot of the poller's mutable state.
type State struct {
	Enabled            bool
	VisibilityDisabled bool
	ActivityCount      int
	LastActivity       time.Time
	LastMousePos       *types.Point
	PrimaryJob         interfaces.JobID
	MouseJob           interfaces.JobID
}

// FullScreenPoller checks every PollInterval whether the overlay should be
// hidden, and watches the mouse every MouseCheckInterval while it is.
type FullScreenPoller struct {
	env       Environment
	scheduler interfaces.Scheduler
	clock     interfaces.Clock
	tracker   interfaces.IdleDetector
	logger    *slog.Logger

	threshold   time.Duration
	enablingTag string

	enabled            bool
	visibilityDisabled bool
	lastMousePos       *types.Point
	primaryJob         interfaces.JobID
	mouseJob           interfaces.JobID
}

// NewFullScreenPoller creates a disabled poller. Call Enable to start polling.
func NewFullScreenPoller(env Environment, scheduler interfaces.Scheduler, opts ...Option) *FullScreenPoller {
	p := &FullScreenPoller{
		env:         env,
		scheduler:   scheduler,
		threshold:   InactivityThreshold,
		enablingTag: DefaultEnablingTag,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.clock == nil {
		p.clock = idle.SystemClock
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.tracker == nil {
		p.tracker = idle.NewActivityTracker(p.clock)
	}

	return p
}

// Enable starts the primary poll job. It is a no-op if already enabled.
func (p *FullScreenPoller) Enable() {
	if p.enabled {
		return
	}
	p.enabled = true
	p.scheduler.Cancel(p.primaryJob)
	p.primaryJob = p.scheduler.Interval(PollInterval, p.tick)
	p.logger.Debug("fullscreen poller enabled", "threshold", p.threshold, "tag", p.enablingTag)
}

// Disable stops the primary poll job. It is a no-op if already disabled.
// A running mouse watch is left in place so a hidden overlay still comes back
// on the next mouse movement.
func (p *FullScreenPoller) Disable() {
	if !p.enabled {
		return
	}
	p.enabled = false
	p.scheduler.Cancel(p.primaryJob)
	p.primaryJob = 0
	p.logger.Debug("fullscreen poller disabled")
}

// Destroy cancels both jobs and, unlike a plain timer teardown, also shows a
// hidden overlay again and clears the activity count and mouse sample.
// Without that a poller destroyed while hidden (shutdown, registry removal)
// would leave the HUD hidden with no job left to bring it back.
func (p *FullScreenPoller) Destroy() {
	p.scheduler.Cancel(p.primaryJob)
	p.primaryJob = 0
	p.scheduler.Cancel(p.mouseJob)
	p.mouseJob = 0
	p.enabled = false

	if p.visibilityDisabled {
		p.env.Overlay.SetOverlayVisibility(true)
		p.visibilityDisabled = false
	}
	p.lastMousePos = nil
	p.tracker.ResetCount()
	p.logger.Debug("fullscreen poller destroyed")
}

// MarkActivity records a sign of user activity. A direct signal (the mouse
// moved) restores a hidden overlay at once; indirect signals must exceed
// ActivityBurstLimit first.
func (p *FullScreenPoller) MarkActivity(direct bool) {
	count := p.tracker.MarkActivity()
	if p.visibilityDisabled && (count > ActivityBurstLimit || direct) {
		p.restore(direct, count)
	}
}

// SinceActivity returns the time elapsed since the last activity.
func (p *FullScreenPoller) SinceActivity() time.Duration {
	return p.tracker.SinceActivity()
}

// State returns a snapshot of the poller state.
func (p *FullScreenPoller) State() State {
	s := State{
		Enabled:            p.enabled,
		VisibilityDisabled: p.visibilityDisabled,
		ActivityCount:      p.tracker.Count(),
		LastActivity:       p.tracker.LastActivity(),
		PrimaryJob:         p.primaryJob,
		MouseJob:           p.mouseJob,
	}
	if p.lastMousePos != nil {
		pos := *p.lastMousePos
		s.LastMousePos = &pos
	}
	return s
}

// tick is the primary state check.
func (p *FullScreenPoller) tick() {
	if !p.isInactive() || !p.isFullScreen() {
		p.MarkActivity(false)
		return
	}

	// Bursts only count while the hide condition is broken.
	p.tracker.ResetCount()

	if p.visibilityDisabled {
		return
	}
	// The tracker never reports an error.
	if isIdle, _ := p.tracker.IsUserIdle(p.threshold); isIdle {
		p.hide(p.tracker.SinceActivity())
	}
}

// checkMouse runs while the overlay is hidden.
func (p *FullScreenPoller) checkMouse() {
	pos, ok := p.env.Mouse.MousePosition()
	if !ok {
		return
	}

	if p.lastMousePos == nil {
		p.lastMousePos = &pos
		return
	}

	if *p.lastMousePos != pos {
		p.lastMousePos = &pos
		p.MarkActivity(true)
	}
}

// isInactive reports whether the enabling tag is active and the user is
// asleep or has no microphone.
func (p *FullScreenPoller) isInactive() bool {
	if !slices.Contains(p.env.Scope.Tags(), p.enablingTag) {
		return false
	}
	if slices.Contains(p.env.Scope.Modes(), SleepMode) {
		return true
	}
	return p.env.Microphone.ActiveMicrophone() == NoMicrophone
}

func (p *FullScreenPoller) isFullScreen() bool {
	window, ok := p.env.Windows.ActiveWindow()
	if !ok {
		return false
	}
	return geometry.IsFullScreen(window, ok, p.env.Screens.Screens(), p.env.Platform)
}

func (p *FullScreenPoller) hide(idleFor time.Duration) {
	p.env.Overlay.SetOverlayVisibility(false)
	p.visibilityDisabled = true
	p.scheduler.Cancel(p.mouseJob)
	p.mouseJob = p.scheduler.Interval(MouseCheckInterval, p.checkMouse)
	p.logger.Info("overlay hidden", "idle", idleFor.Round(time.Millisecond))
}

func (p *FullScreenPoller) restore(direct bool, count int) {
	p.env.Overlay.SetOverlayVisibility(true)
	p.visibilityDisabled = false
	p.scheduler.Cancel(p.mouseJob)
	p.mouseJob = 0
	p.lastMousePos = nil
	p.tracker.ResetCount()
	p.logger.Info("overlay restored", "mouse", direct, "signals", count)
}

// Ensure FullScreenPoller implements Poller
var _ interfaces.Poller = (*FullScreenPoller)(nil)
