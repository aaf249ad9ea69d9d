package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/runboard"
	"github.com/jpalmerr/runboard/config"
)

// watchCmd runs the terminal dashboard.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the job in a terminal dashboard",
	Long: `Show the job status and logs full screen in the terminal.

Keys:
  s  start the job       x  stop the job
  c  clear the logs      r  refresh now
  q  quit

Polling pauses while the terminal window loses focus, on terminals that
report focus. Logs are discarded unless --log-file is given, so they do
not draw over the dashboard.

Example:
  runboard watch -b http://localhost:5000
  runboard watch -c runboard.yaml --log-file runboard.log`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("log-file", "", "append logs to this file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	// text reads better when tailing a file next to the terminal
	lc := cfg.Log
	lc.Format = "text"
	logger := newLogger(lc, logOut)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return err
	}
	board, err := runboard.New(append(opts, runboard.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create runboard: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return board.Watch(ctx)
}
