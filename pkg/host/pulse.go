package host

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/poller"
)

// PulseMicrophone reports the default PulseAudio source as the active
// microphone. A monitor source or a muted source counts as no microphone.
type PulseMicrophone struct {
	logger      *slog.Logger
	cmdExecutor cmdExecutor
}

// NewPulseMicrophone creates a microphone provider backed by pactl.
func NewPulseMicrophone(logger *slog.Logger) *PulseMicrophone {
	if logger == nil {
		logger = slog.Default()
	}
	return &PulseMicrophone{
		logger:      logger,
		cmdExecutor: defaultCmdExecutor,
	}
}

// ActiveMicrophone returns the default source name or poller.NoMicrophone.
func (m *PulseMicrophone) ActiveMicrophone() string {
	output, err := m.cmdExecutor("pactl", "get-default-source")
	if err != nil {
		m.logger.Debug("default source unavailable", "error", err)
		return poller.NoMicrophone
	}

	name := strings.TrimSpace(string(output))
	if name == "" || strings.HasSuffix(name, ".monitor") {
		return poller.NoMicrophone
	}

	output, err = m.cmdExecutor("pactl", "get-source-mute", name)
	if err != nil {
		m.logger.Debug("source mute state unavailable", "source", name, "error", err)
		return name
	}
	if strings.Contains(strings.ToLower(string(output)), "mute: yes") {
		return poller.NoMicrophone
	}

	return name
}

// Ensure PulseMicrophone implements MicrophoneProvider
var _ interfaces.MicrophoneProvider = (*PulseMicrophone)(nil)
