package status

import "github.com/Veraticus/hud-autohide/pkg/interfaces"

// Reporter forwards visibility changes to an overlay and mirrors them on
// the indicator
type Reporter struct {
	next      interfaces.OverlayController
	indicator *Indicator
}

// NewReporter creates a new status reporter
func NewReporter(next interfaces.OverlayController, indicator *Indicator) *Reporter {
	return &Reporter{
		next:      next,
		indicator: indicator,
	}
}

// Ensure Reporter implements OverlayController
var _ interfaces.OverlayController = (*Reporter)(nil)

// SetOverlayVisibility forwards the change and updates the badge
func (r *Reporter) SetOverlayVisibility(visible bool) {
	if r.next != nil {
		r.next.SetOverlayVisibility(visible)
	}

	if r.indicator == nil {
		return
	}
	if visible {
		r.indicator.SetStatus(StatusShown)
	} else {
		r.indicator.SetStatus(StatusHidden)
	}
}
