// Command feedmux is an interactive demo of keyed subscription
// multiplexing.
//
// It loads a catalogue of named feeds, then lets you attach, move,
// disable, and destroy consumers against them while watching the
// registry keep exactly one live subscription per distinct key.
//
// Usage:
//
//	feedmux [flags]
//
// Flags:
//
//	-config string     Feed catalogue file (YAML); built-in demo feeds if omitted
//	-capture string    Write lifecycle events to a CBOR capture file (.flog)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run with the built-in demo feeds and lifecycle events on console
//	feedmux -log-level debug
//
//	# Run with a catalogue and a capture file for later inspection
//	feedmux -config feeds.yaml -capture registry.flog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/feedmux/feedmux-go/cmd/feedmux/interactive"
	"github.com/feedmux/feedmux-go/pkg/log"
	"github.com/feedmux/feedmux-go/pkg/registry"
)

func main() {
	var (
		configPath  string
		capturePath string
		logLevel    string
	)
	flag.StringVar(&configPath, "config", "", "Feed catalogue file (YAML)")
	flag.StringVar(&capturePath, "capture", "", "Lifecycle capture file (.flog)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := run(configPath, capturePath, logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "feedmux: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, capturePath, logLevel string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(slogger)

	feeds := DefaultCatalog()
	if configPath != "" {
		feeds, err = LoadCatalog(configPath)
		if err != nil {
			return err
		}
	}

	// Lifecycle events go to the console adapter, plus a capture file
	// when requested.
	var lifecycle log.Logger = log.NewSlogAdapter(slogger)
	if capturePath != "" {
		fileLogger, err := log.NewFileLogger(capturePath)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer fileLogger.Close()
		lifecycle = log.NewMultiLogger(lifecycle, fileLogger)
	}

	reg := registry.NewWithConfig(registry.Config{Logger: lifecycle})

	consoleFeeds := make([]interactive.Feed, len(feeds))
	for i, f := range feeds {
		consoleFeeds[i] = interactive.Feed{Name: f.Name, Key: f.Key, Interval: f.Interval}
	}

	console, err := interactive.New(reg, consoleFeeds)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slogger.Info("feedmux starting", "feeds", len(feeds), "registry_id", reg.ID())
	console.Run(ctx, cancel)

	// Tear down anything still live before exit.
	reg.ClearAll()
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
