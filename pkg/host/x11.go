package host

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/types"
)

// monitorGeometry matches the geometry column of `xrandr --listactivemonitors`,
// e.g. "1920/344x1080/194+0+0".
var monitorGeometry = regexp.MustCompile(`(\d+)/\d+x(\d+)/\d+([+-]\d+)([+-]\d+)`)

// X11 queries window, screen and pointer geometry with xdotool and xrandr.
type X11 struct {
	logger      *slog.Logger
	cmdExecutor cmdExecutor
}

// NewX11 creates an X11 geometry service.
func NewX11(logger *slog.Logger) *X11 {
	if logger == nil {
		logger = slog.Default()
	}
	return &X11{
		logger:      logger,
		cmdExecutor: defaultCmdExecutor,
	}
}

// ActiveWindow returns the geometry of the focused window.
// The window can be missing while a fullscreen transition is in progress.
func (x *X11) ActiveWindow() (types.Rect, bool) {
	output, err := x.cmdExecutor("xdotool", "getactivewindow", "getwindowgeometry", "--shell")
	if err != nil {
		x.logger.Debug("active window unavailable", "error", err)
		return types.Rect{}, false
	}

	vars := parseShellVars(output)
	rect, err := rectFromVars(vars)
	if err != nil {
		x.logger.Debug("active window unavailable", "error", err)
		return types.Rect{}, false
	}
	return rect, true
}

// Screens returns the bounds of every active monitor.
func (x *X11) Screens() []types.Rect {
	output, err := x.cmdExecutor("xrandr", "--listactivemonitors")
	if err != nil {
		x.logger.Debug("screens unavailable", "error", err)
		return nil
	}
	return parseMonitors(output)
}

// MousePosition returns the pointer position.
func (x *X11) MousePosition() (types.Point, bool) {
	output, err := x.cmdExecutor("xdotool", "getmouselocation", "--shell")
	if err != nil {
		x.logger.Debug("mouse position unavailable", "error", err)
		return types.Point{}, false
	}

	vars := parseShellVars(output)
	px, errX := strconv.ParseFloat(vars["X"], 64)
	py, errY := strconv.ParseFloat(vars["Y"], 64)
	if errX != nil || errY != nil {
		return types.Point{}, false
	}
	return types.Point{X: px, Y: py}, true
}

func rectFromVars(vars map[string]string) (types.Rect, error) {
	var values [4]float64
	for i, key := range []string{"X", "Y", "WIDTH", "HEIGHT"} {
		raw, ok := vars[key]
		if !ok {
			return types.Rect{}, fmt.Errorf("missing %s in window geometry", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Rect{}, fmt.Errorf("invalid %s in window geometry: %w", key, err)
		}
		values[i] = v
	}
	return types.Rect{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}

func parseMonitors(output []byte) []types.Rect {
	var screens []types.Rect
	for _, m := range monitorGeometry.FindAllSubmatch(output, -1) {
		width, _ := strconv.ParseFloat(string(m[1]), 64)
		height, _ := strconv.ParseFloat(string(m[2]), 64)
		x, _ := strconv.ParseFloat(string(m[3]), 64)
		y, _ := strconv.ParseFloat(string(m[4]), 64)
		screens = append(screens, types.Rect{X: x, Y: y, Width: width, Height: height})
	}
	return screens
}

// Ensure X11 implements the geometry and mouse interfaces
var (
	_ interfaces.WindowService = (*X11)(nil)
	_ interfaces.ScreenService = (*X11)(nil)
	_ interfaces.MouseProvider = (*X11)(nil)
)
