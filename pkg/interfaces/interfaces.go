// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"time"

	"github.com/Veraticus/hud-autohide/pkg/types"
)

// IdleDetector detects user activity/inactivity. MarkActivity returns the
// number of signals accumulated since the last ResetCount.
type IdleDetector interface {
	IsUserIdle(threshold time.Duration) (bool, error)
	LastActivity() time.Time
	SinceActivity() time.Duration
	MarkActivity() int
	ResetCount()
	Count() int
}

// Clock returns the current time. Readings must carry a monotonic component.
type Clock interface {
	Now() time.Time
}

// JobID identifies a scheduled interval job. The zero value means "no job".
type JobID uint64

// Scheduler runs interval jobs. All callbacks are serialized.
type Scheduler interface {
	Interval(period time.Duration, fn func()) JobID
	Cancel(id JobID)
}

// WindowService reports the active window geometry.
// The boolean is false when no active window is known.
type WindowService interface {
	ActiveWindow() (types.Rect, bool)
}

// ScreenService lists the physical screen bounds.
// An empty result means the screen layout is currently unavailable.
type ScreenService interface {
	Screens() []types.Rect
}

// ScopeProvider reports the currently active tags and modes.
type ScopeProvider interface {
	Tags() []string
	Modes() []string
}

// MicrophoneProvider reports the active microphone name.
type MicrophoneProvider interface {
	ActiveMicrophone() string
}

// MouseProvider reports the current mouse position.
type MouseProvider interface {
	MousePosition() (types.Point, bool)
}

// OverlayController shows or hides the overlay.
type OverlayController interface {
	SetOverlayVisibility(visible bool)
}

// Poller is a unit driven by periodic timer callbacks.
type Poller interface {
	Enable()
	Disable()
	Destroy()
}
