package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd validates a config file without contacting the backend.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a runboard configuration file without contacting the backend.

This command parses the file (YAML, or TOML for .toml files), expands
environment variables, and validates all fields. It's useful for CI/CD
pipelines or pre-deployment checks. --backend may supply the backend URL
when the file leaves it out.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  runboard validate -c runboard.yaml
  runboard validate --config /etc/runboard/runboard.toml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return errors.New("a config file is required (--config)")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Backend:       %s\n", cfg.Backend.URL)
	fmt.Fprintf(out, "  Port:          %d\n", cfg.Port)
	fmt.Fprintf(out, "  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Fprintf(out, "  Log limit:     %d\n", cfg.LogLimit)

	return nil
}
