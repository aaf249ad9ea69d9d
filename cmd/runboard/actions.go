package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/runboard/config"
	"github.com/jpalmerr/runboard/internal/backend"
	"github.com/jpalmerr/runboard/internal/controller"
	"github.com/jpalmerr/runboard/internal/tui"
)

// statusCmd prints the job status once.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the job status",
	Long: `Fetch the job status once and print it.

Exits with code 1 when the backend cannot be reached or answers with an
error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, nil, func(ctx context.Context, ctrl *controller.Controller) error {
			return ctrl.RefreshStatus(ctx)
		})
	},
}

// logsCmd prints recent log entries once.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print recent log entries",
	Long: `Fetch the most recent log entries and print them oldest first.

Without --limit the log_limit from the config is used (default 100).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, nil, func(ctx context.Context, ctrl *controller.Controller) error {
			return ctrl.RefreshLogs(ctx)
		})
	},
}

// startCmd asks the backend to start the job.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the job",
	Long: `Ask the backend to start the job, then print the resulting status.

A job that is already running is reported as a warning and is not an
error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, nil, func(ctx context.Context, ctrl *controller.Controller) error {
			return ctrl.Start(ctx)
		})
	},
}

// stopCmd asks the backend to stop the job.
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the job",
	Long:  `Ask the backend to stop the job, then print the resulting status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd, nil, func(ctx context.Context, ctrl *controller.Controller) error {
			return ctrl.Stop(ctx)
		})
	},
}

// clearLogsCmd deletes all backend logs.
var clearLogsCmd = &cobra.Command{
	Use:   "clear-logs",
	Short: "Delete all job logs",
	Long: `Delete all job logs on the backend.

Asks for confirmation on stdin unless --yes is given.`,
	RunE: runClearLogs,
}

func init() {
	rootCmd.AddCommand(statusCmd, logsCmd, startCmd, stopCmd, clearLogsCmd)

	logsCmd.Flags().Int("limit", 0, "number of entries to show (default from config)")
	clearLogsCmd.Flags().BoolP("yes", "y", false, "clear without asking")
}

func runClearLogs(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	var confirmer controller.Confirmer = controller.ConfirmFunc(func(context.Context, string) (bool, error) {
		return true, nil
	})
	if !yes {
		confirmer = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	return runAction(cmd, confirmer, func(ctx context.Context, ctrl *controller.Controller) error {
		return ctrl.ClearLogs(ctx)
	})
}

// runAction builds a controller that prints to the command output and runs
// fn with it once.
func runAction(cmd *cobra.Command, confirmer controller.Confirmer, fn func(context.Context, *controller.Controller) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, cmd.ErrOrStderr())

	limit := cfg.LogLimit
	if cmd.Flags().Lookup("limit") != nil {
		if n, _ := cmd.Flags().GetInt("limit"); n > 0 {
			limit = n
		}
	}

	be, err := config.BuildBackend(cfg)
	if err != nil {
		return err
	}
	client := backend.NewClient(be.URL(), be.Headers(), be.Timeout())
	defer client.Close()

	ctrl := controller.New(client, tui.NewTextRenderer(cmd.OutOrStdout()),
		controller.WithLogLimit(limit),
		controller.WithStartLogDelay(cfg.StartLogDelay.Duration()),
		controller.WithConfirmer(confirmer),
		controller.WithLogger(logger),
	)
	// a one-shot start does not wait for its delayed log refresh
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, ctrl)
}

// promptConfirmer asks a y/N question on out and reads the answer from in.
// Anything but y or yes declines.
func promptConfirmer(in io.Reader, out io.Writer) controller.ConfirmFunc {
	return func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			fmt.Fprintln(out, "Aborted.")
			return false, nil
		}
	}
}
