package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/hud-autohide/pkg/config"
	flag "github.com/spf13/pflag"
)

func main() {
	var (
		configPath string
		overlay    string
		pollerName string
		debug      bool
		help       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&overlay, "overlay", "", "Overlay backend: dbus, mqtt, terminal or log")
	flag.StringVar(&pollerName, "poller-name", "", "Name the poller is registered under")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	// The config path must be set before loading so the watcher follows the same file
	if configPath != "" {
		if err := os.Setenv("HUD_AUTOHIDE_CONFIG", configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if overlay != "" {
		cfg.Overlay.Backend = overlay
	}
	if pollerName != "" {
		cfg.PollerName = pollerName
	}
	if debug || os.Getenv("HUD_AUTOHIDE_DEBUG") == "1" {
		cfg.Log.Level = "debug"
	}

	logger := newLogger(os.Stderr, cfg)

	deps, err := NewDependencies(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	app := NewApplication(deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGUSR1 enables the poller, SIGUSR2 disables it
	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for {
			select {
			case sig := <-toggle:
				enabled := sig == syscall.SIGUSR1
				if err := app.SetEnabled(ctx, enabled); err != nil {
					logger.Warn("failed to toggle poller", "enabled", enabled, "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := app.Run(ctx); err != nil {
		logger.Error("hud-autohide stopped", "error", err)
		deps.Close()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("hud-autohide - hide the HUD overlay while a full-screen window is idle")
	fmt.Println()
	fmt.Println("Usage: hud-autohide [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Signals:")
	fmt.Println("  SIGUSR1                   Enable the poller")
	fmt.Println("  SIGUSR2                   Disable the poller")
	fmt.Println()
	fmt.Println("With the mqtt backend, ON/OFF published to <topic_prefix>/poller/set")
	fmt.Println("enables or disables the poller as well.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  HUD_AUTOHIDE_CONFIG       Path to config file")
	fmt.Println("  HUD_AUTOHIDE_TAGS         Active tags (comma-separated)")
	fmt.Println("  HUD_AUTOHIDE_MODES        Active modes (comma-separated)")
	fmt.Println("  HUD_AUTOHIDE_OVERLAY      Overlay backend (dbus, mqtt, terminal, log)")
	fmt.Println("  HUD_AUTOHIDE_MQTT_BROKER  MQTT broker URL for the mqtt backend")
	fmt.Println("  HUD_AUTOHIDE_SCREENSAVER  Treat an active screensaver as sleep mode")
	fmt.Println("  HUD_AUTOHIDE_LOG_LEVEL    Log level (debug, info, warn, error)")
	fmt.Println("  HUD_AUTOHIDE_LOG_FORMAT   Log format (text, json)")
	fmt.Println("  HUD_AUTOHIDE_DEBUG        Enable debug logging (1)")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/hud-autohide/config.yaml (TOML when named *.toml)")
}
