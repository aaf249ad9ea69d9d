// Package main is the entry point for the runboard CLI.
//
// Runboard can be used either as a library (SDK) or as a standalone binary
// with a YAML or TOML configuration. This CLI provides the standalone
// binary approach.
//
// Usage:
//
//	runboard serve -c runboard.yaml            # Start the web dashboard
//	runboard watch -b http://localhost:5000    # Terminal dashboard
//	runboard status -b http://localhost:5000   # Print the job status once
//	runboard start | stop | logs | clear-logs  # One-shot job controls
//	runboard validate -c runboard.yaml         # Validate configuration
//	runboard version                           # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "runboard",
	Short: "A status and control panel for a download job",
	Long: `Runboard watches a download automation job through its HTTP API.

It polls the job status and recent logs, and lets you start the job,
stop it and clear its logs from a web dashboard, a terminal dashboard
or one-shot commands.

Quick start:
  1. Run your job service (or: go run ./example/cmd/mockbackend)
  2. Run: runboard serve -b http://localhost:5000
  3. Open http://localhost:8080 in your browser

Example config:
  title: Download Job
  poll_interval: 3s
  backend:
    url: ${RUNBOARD_BACKEND:-http://localhost:5000}`,
	SilenceUsage: true,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this runboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "runboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "backend base URL, overrides the config file")

	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
