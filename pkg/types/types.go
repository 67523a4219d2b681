// Package types contains shared data structures used across the application.
package types

import "fmt"

// Rect is a screen-space rectangle as reported by the window system.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// String returns a compact representation used in log output.
func (r Rect) String() string {
	return fmt.Sprintf("%gx%g+%g+%g", r.Width, r.Height, r.X, r.Y)
}

// Point is a mouse position in screen-space coordinates.
type Point struct {
	X float64
	Y float64
}

// Platform identifies the host platform class for geometry edge cases.
type Platform int

const (
	// PlatformOther reports screen bounds that include the full panel.
	PlatformOther Platform = iota
	// PlatformNotched reports screen bounds that exclude a physical notch area.
	PlatformNotched
)

// String returns the string representation of Platform.
func (p Platform) String() string {
	switch p {
	case PlatformNotched:
		return "notched"
	case PlatformOther:
		return "other"
	default:
		return "unknown"
	}
}
