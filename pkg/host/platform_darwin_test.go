//go:build darwin
// +build darwin

package host

import (
	"testing"

	"github.com/Veraticus/hud-autohide/pkg/types"
)

func TestCurrentPlatform(t *testing.T) {
	if got := CurrentPlatform(); got != types.PlatformNotched {
		t.Errorf("CurrentPlatform() = %v, want %v", got, types.PlatformNotched)
	}
}
