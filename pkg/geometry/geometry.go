// Package geometry decides whether a window covers a physical screen.
package geometry

import (
	"math"

	"github.com/Veraticus/hud-autohide/pkg/types"
)

// notchedRatio is the width/height ratio (in hundredths, rounded up) of the
// 15.4" class panels whose reported bounds exclude the notch.
const notchedRatio = 154

// MatchesScreenExactly returns true if every field of window rounds to the
// same integer as the corresponding field of screen.
func MatchesScreenExactly(window, screen types.Rect) bool {
	return math.Round(screen.X) == math.Round(window.X) &&
		math.Round(screen.Y) == math.Round(window.Y) &&
		math.Round(screen.Width) == math.Round(window.Width) &&
		math.Round(screen.Height) == math.Round(window.Height)
}

// MatchesNotchEdgeCase returns true if window fills one of the notched screens.
// On those panels a fullscreen window starts below the notch, so its height
// plus its y offset equals the screen height.
func MatchesNotchEdgeCase(window types.Rect, screens []types.Rect) bool {
	for _, screen := range screens {
		if !isNotched(screen) {
			continue
		}

		fullWindowHeight := window.Height + window.Y
		if math.Round(screen.X) == math.Round(window.X) &&
			math.Round(screen.Y) <= math.Round(window.Y) &&
			math.Round(screen.Width) == math.Round(window.Width) &&
			math.Round(screen.Height) == math.Round(fullWindowHeight) {
			return true
		}
	}
	return false
}

// IsFullScreen reports whether window covers any of screens.
// ok is false when the active window could not be determined; that, like an
// empty screen list, counts as not fullscreen.
func IsFullScreen(window types.Rect, ok bool, screens []types.Rect, platform types.Platform) bool {
	if !ok || len(screens) == 0 {
		return false
	}

	if platform == types.PlatformNotched && MatchesNotchEdgeCase(window, screens) {
		return true
	}

	for _, screen := range screens {
		if MatchesScreenExactly(window, screen) {
			return true
		}
	}
	return false
}

func isNotched(screen types.Rect) bool {
	if screen.Height == 0 {
		return false
	}
	return math.Ceil(screen.Width/screen.Height*100) == notchedRatio
}
