// Package host implements the poller's collaborators on top of the desktop:
// X11 tools for geometry and the mouse, PulseAudio for the microphone and
// D-Bus for the screensaver and the overlay itself.
package host

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"
)

// cmdExecutor runs a command and returns its standard output.
type cmdExecutor func(name string, args ...string) ([]byte, error)

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	return cmd.Output()
}

// parseShellVars parses KEY=VALUE lines as printed by `xdotool --shell`.
func parseShellVars(output []byte) map[string]string {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		vars[key] = value
	}
	return vars
}
