// Package config loads hud-autohide configuration from YAML and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/hud-autohide/pkg/poller"
)

// Overlay backends.
const (
	BackendDBus     = "dbus"
	BackendMQTT     = "mqtt"
	BackendTerminal = "terminal"
	BackendLog      = "log"
)

// Config holds all configuration for hud-autohide
type Config struct {
	// Poller registration
	PollerName      string `yaml:"poller_name" toml:"poller_name"`
	ActiveByDefault bool   `yaml:"active_by_default" toml:"active_by_default"`
	EnablingTag     string `yaml:"enabling_tag" toml:"enabling_tag"`

	// Static scope; edited at runtime through the config file
	Tags  []string `yaml:"tags" toml:"tags" env:"HUD_AUTOHIDE_TAGS"`
	Modes []string `yaml:"modes" toml:"modes" env:"HUD_AUTOHIDE_MODES"`

	// Treat an active screensaver as sleep mode
	ScreenSaver bool `yaml:"screensaver" toml:"screensaver" env:"HUD_AUTOHIDE_SCREENSAVER"`

	// Modes switched on while a matching process runs, e.g. sleep: [swaylock]
	ModeProcesses map[string][]string `yaml:"mode_processes" toml:"mode_processes"`

	Overlay OverlayConfig `yaml:"overlay" toml:"overlay"`
	MQTT    MQTTConfig    `yaml:"mqtt" toml:"mqtt"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// OverlayConfig selects how visibility changes reach the overlay.
type OverlayConfig struct {
	Backend     string `yaml:"backend" toml:"backend" env:"HUD_AUTOHIDE_OVERLAY"`
	Destination string `yaml:"destination" toml:"destination"`
	Path        string `yaml:"path" toml:"path"`
	Interface   string `yaml:"interface" toml:"interface"`
	Method      string `yaml:"method" toml:"method"`
}

// MQTTConfig configures the mqtt overlay backend. An empty ClientID gets a
// generated one.
type MQTTConfig struct {
	Broker      string `yaml:"broker" toml:"broker" env:"HUD_AUTOHIDE_MQTT_BROKER"`
	ClientID    string `yaml:"client_id" toml:"client_id"`
	Username    string `yaml:"username" toml:"username"`
	Password    string `yaml:"password" toml:"password"`
	TopicPrefix string `yaml:"topic_prefix" toml:"topic_prefix"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"HUD_AUTOHIDE_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"HUD_AUTOHIDE_LOG_FORMAT"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PollerName:      "inactivity_poller",
		ActiveByDefault: true,
		EnablingTag:     poller.DefaultEnablingTag,
		Tags:            []string{},
		Modes:           []string{},
		Overlay: OverlayConfig{
			Backend:     BackendDBus,
			Destination: "org.hud.Overlay",
			Path:        "/org/hud/Overlay",
			Interface:   "org.hud.Overlay",
			Method:      "SetVisible",
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "hud-autohide",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the default file location and environment
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads configuration from path (if it exists) and environment
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Path returns the config file path
func Path() string {
	// Check for explicit config path
	if path := os.Getenv("HUD_AUTOHIDE_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hud-autohide", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "hud-autohide", "config.yaml")
	}

	return ""
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadFromFile loads configuration from a YAML file, or TOML when the
// path ends in .toml
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var, flag or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if tags, ok := os.LookupEnv("HUD_AUTOHIDE_TAGS"); ok {
		cfg.Tags = splitList(tags)
	}

	if modes, ok := os.LookupEnv("HUD_AUTOHIDE_MODES"); ok {
		cfg.Modes = splitList(modes)
	}

	if backend := os.Getenv("HUD_AUTOHIDE_OVERLAY"); backend != "" {
		cfg.Overlay.Backend = backend
	}

	if broker := os.Getenv("HUD_AUTOHIDE_MQTT_BROKER"); broker != "" {
		cfg.MQTT.Broker = broker
	}

	if level := os.Getenv("HUD_AUTOHIDE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if format := os.Getenv("HUD_AUTOHIDE_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}

	if screensaver := os.Getenv("HUD_AUTOHIDE_SCREENSAVER"); screensaver != "" {
		v, err := parseBool(screensaver)
		if err != nil {
			return fmt.Errorf("invalid HUD_AUTOHIDE_SCREENSAVER value: %w", err)
		}
		cfg.ScreenSaver = v
	}

	if debug := os.Getenv("HUD_AUTOHIDE_DEBUG"); debug != "" {
		v, err := parseBool(debug)
		if err != nil {
			return fmt.Errorf("invalid HUD_AUTOHIDE_DEBUG value: %w", err)
		}
		if v {
			cfg.Log.Level = "debug"
		}
	}

	return nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q (use true/false)", s)
	}
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.PollerName == "" {
		return fmt.Errorf("poller_name must not be empty")
	}

	if cfg.EnablingTag == "" {
		return fmt.Errorf("enabling_tag must not be empty")
	}

	switch cfg.Overlay.Backend {
	case BackendDBus:
		if cfg.Overlay.Destination == "" || cfg.Overlay.Path == "" ||
			cfg.Overlay.Interface == "" || cfg.Overlay.Method == "" {
			return fmt.Errorf("overlay destination, path, interface and method are required for the dbus backend")
		}
		if !strings.HasPrefix(cfg.Overlay.Path, "/") {
			return fmt.Errorf("overlay.path must be an absolute object path, got %q", cfg.Overlay.Path)
		}
	case BackendMQTT:
		if cfg.MQTT.Broker == "" || cfg.MQTT.TopicPrefix == "" {
			return fmt.Errorf("mqtt broker and topic_prefix are required for the mqtt backend")
		}
	case BackendTerminal, BackendLog:
	default:
		return fmt.Errorf("unknown overlay backend %q (use dbus, mqtt, terminal or log)", cfg.Overlay.Backend)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", cfg.Log.Format)
	}

	return nil
}
