// Package status draws a HUD badge on the last line of the terminal.
package status

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
)

// Status represents the overlay state shown by the badge
type Status int

const (
	StatusShown Status = iota
	StatusHidden
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusShown:
		return "shown"
	case StatusHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Indicator manages the HUD badge in the terminal. Used directly it is a
// terminal overlay: hiding it clears the badge.
type Indicator struct {
	mu      sync.Mutex
	status  Status
	enabled bool
	visible bool
	writer  io.Writer
	changed time.Time

	refreshChan chan struct{}
}

// NewIndicator creates a new status indicator
func NewIndicator(writer io.Writer, enabled bool) *Indicator {
	return &Indicator{
		status:      StatusShown,
		writer:      writer,
		enabled:     enabled,
		visible:     true,
		changed:     time.Now(),
		refreshChan: make(chan struct{}, 1),
	}
}

// SetOverlayVisibility shows or clears the badge.
func (i *Indicator) SetOverlayVisibility(visible bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.visible = visible
	if !visible {
		_ = i.clear() // Best effort
		return
	}
	_ = i.draw()
}

// SetStatus updates the reported overlay state
func (i *Indicator) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if status != i.status {
		i.status = status
		i.changed = time.Now()
	}

	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// draw renders the status indicator
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil || !i.visible {
		return nil
	}

	// \0337 saves the cursor, \033[r resets the scroll region, \033[999;1H
	// moves to the last line, \033[2K clears it and \0338 restores the cursor.
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", i.getStatusText())

	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// getStatusText returns the badge text with color
func (i *Indicator) getStatusText() string {
	parts := []string{"\033[1mHUD\033[0m"}

	switch i.status {
	case StatusHidden:
		parts = append(parts, "\033[33mⓏ hidden\033[0m") // Yellow Z while the overlay is hidden
	default:
		parts = append(parts, "\033[32m▶ shown\033[0m") // Green play while the overlay is shown
	}

	// Relative time; the auto-refresh keeps it current
	parts = append(parts, fmt.Sprintf("\033[90msince %s\033[0m", humanize.Time(i.changed)))

	return strings.Join(parts, " ")
}

// Clear removes the status indicator
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.clear()
}

func (i *Indicator) clear() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	// Clear the status line using DEC save/restore
	sequence := "\0337\033[999;1H\033[2K\0338"
	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// Refresh requests an immediate redraw from the auto-refresh goroutine
func (i *Indicator) Refresh() {
	if !i.enabled {
		return
	}
	select {
	case i.refreshChan <- struct{}{}:
	default:
		// Channel is full, refresh already pending
	}
}

// StartAutoRefresh starts a goroutine that redraws the badge periodically,
// so output from other programs does not scroll it away
func (i *Indicator) StartAutoRefresh(stopChan <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				i.mu.Lock()
				_ = i.draw() // Best effort
				i.mu.Unlock()
			case <-i.refreshChan:
				i.mu.Lock()
				_ = i.draw()
				i.mu.Unlock()
			case <-stopChan:
				_ = i.Clear() // Best effort
				return
			}
		}
	}()
}

// Ensure Indicator implements OverlayController
var _ interfaces.OverlayController = (*Indicator)(nil)
