//go:build darwin
// +build darwin

package host

import "github.com/Veraticus/hud-autohide/pkg/types"

// CurrentPlatform reports the notched platform class. macOS reports screen
// bounds that exclude the notch on the panels that have one.
func CurrentPlatform() types.Platform {
	return types.PlatformNotched
}
