//go:build !darwin
// +build !darwin

package host

import "github.com/Veraticus/hud-autohide/pkg/types"

// CurrentPlatform reports the platform class of the host.
func CurrentPlatform() types.Platform {
	return types.PlatformOther
}
