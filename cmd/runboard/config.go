package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/runboard/config"
)

// loadConfig reads the --config file, if any, and applies --backend on top.
// The result is validated, so a backend URL must come from one of the two.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	backendURL, _ := cmd.Flags().GetString("backend")

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if backendURL != "" {
		if err := cfg.SetBackendURL(backendURL); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the CLI logger described by the log section.
func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	// already validated by config.Load
	level, _ := lc.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
