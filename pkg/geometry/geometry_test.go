package geometry

import (
	"testing"

	"github.com/Veraticus/hud-autohide/pkg/types"
)

func TestMatchesScreenExactly(t *testing.T) {
	screen := types.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		window   types.Rect
		expected bool
	}{
		{
			name:     "Identical bounds",
			window:   types.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			expected: true,
		},
		{
			name:     "Fractional bounds round to screen",
			window:   types.Rect{X: 0.4, Y: -0.3, Width: 1919.6, Height: 1080.2},
			expected: true,
		},
		{
			name:     "Width off by one",
			window:   types.Rect{X: 0, Y: 0, Width: 1919, Height: 1080},
			expected: false,
		},
		{
			name:     "Maximized window below a panel",
			window:   types.Rect{X: 0, Y: 32, Width: 1920, Height: 1048},
			expected: false,
		},
		{
			name:     "Offset window",
			window:   types.Rect{X: 10, Y: 0, Width: 1920, Height: 1080},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesScreenExactly(tt.window, screen); got != tt.expected {
				t.Errorf("MatchesScreenExactly(%v, %v) = %v, want %v", tt.window, screen, got, tt.expected)
			}
		})
	}
}

func TestMatchesNotchEdgeCase(t *testing.T) {
	notched := types.Rect{X: 0, Y: 0, Width: 1512, Height: 982}
	regular := types.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		window   types.Rect
		screens  []types.Rect
		expected bool
	}{
		{
			name:     "Window below notch fills the panel",
			window:   types.Rect{X: 0, Y: 12, Width: 1512, Height: 970},
			screens:  []types.Rect{notched},
			expected: true,
		},
		{
			name:     "Window below notch on second screen",
			window:   types.Rect{X: 0, Y: 12, Width: 1512, Height: 970},
			screens:  []types.Rect{regular, notched},
			expected: true,
		},
		{
			name:     "Short window does not reach the bottom",
			window:   types.Rect{X: 0, Y: 12, Width: 1512, Height: 900},
			screens:  []types.Rect{notched},
			expected: false,
		},
		{
			name:     "Narrow window",
			window:   types.Rect{X: 0, Y: 12, Width: 1000, Height: 970},
			screens:  []types.Rect{notched},
			expected: false,
		},
		{
			name:     "Regular ratio screen is never a notch case",
			window:   types.Rect{X: 0, Y: 40, Width: 1920, Height: 1040},
			screens:  []types.Rect{regular},
			expected: false,
		},
		{
			name:     "No screens",
			window:   types.Rect{X: 0, Y: 12, Width: 1512, Height: 970},
			screens:  nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesNotchEdgeCase(tt.window, tt.screens); got != tt.expected {
				t.Errorf("MatchesNotchEdgeCase() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsFullScreen(t *testing.T) {
	notched := types.Rect{X: 0, Y: 0, Width: 1512, Height: 982}
	external := types.Rect{X: 1512, Y: 0, Width: 2560, Height: 1440}
	belowNotch := types.Rect{X: 0, Y: 12, Width: 1512, Height: 970}

	tests := []struct {
		name     string
		window   types.Rect
		ok       bool
		screens  []types.Rect
		platform types.Platform
		expected bool
	}{
		{
			name:     "Exact match on external screen",
			window:   external,
			ok:       true,
			screens:  []types.Rect{notched, external},
			platform: types.PlatformOther,
			expected: true,
		},
		{
			name:     "Notch layout on notched platform",
			window:   belowNotch,
			ok:       true,
			screens:  []types.Rect{notched},
			platform: types.PlatformNotched,
			expected: true,
		},
		{
			name:     "Notch layout ignored on other platforms",
			window:   belowNotch,
			ok:       true,
			screens:  []types.Rect{notched},
			platform: types.PlatformOther,
			expected: false,
		},
		{
			name:     "Exact match still applies on notched platform",
			window:   notched,
			ok:       true,
			screens:  []types.Rect{notched},
			platform: types.PlatformNotched,
			expected: true,
		},
		{
			name:     "No active window",
			window:   external,
			ok:       false,
			screens:  []types.Rect{external},
			platform: types.PlatformOther,
			expected: false,
		},
		{
			name:     "Screens unavailable",
			window:   external,
			ok:       true,
			screens:  nil,
			platform: types.PlatformOther,
			expected: false,
		},
		{
			name:     "Windowed application",
			window:   types.Rect{X: 100, Y: 100, Width: 800, Height: 600},
			ok:       true,
			screens:  []types.Rect{notched, external},
			platform: types.PlatformNotched,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsFullScreen(tt.window, tt.ok, tt.screens, tt.platform)
			if got != tt.expected {
				t.Errorf("IsFullScreen() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsNotched(t *testing.T) {
	tests := []struct {
		screen   types.Rect
		expected bool
	}{
		{types.Rect{Width: 1512, Height: 982}, true},
		{types.Rect{Width: 3024, Height: 1964}, true},
		{types.Rect{Width: 1920, Height: 1080}, false},
		{types.Rect{Width: 1440, Height: 900}, false},
		{types.Rect{Width: 1512, Height: 0}, false},
	}

	for _, tt := range tests {
		if got := isNotched(tt.screen); got != tt.expected {
			t.Errorf("isNotched(%v) = %v, want %v", tt.screen, got, tt.expected)
		}
	}
}
