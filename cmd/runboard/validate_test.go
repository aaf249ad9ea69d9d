package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeValidateCmd runs the validate command with the given config path
// and returns captured stdout and any error.
func executeValidateCmd(t *testing.T, configPath string, extra ...string) (string, error) {
	t.Helper()
	return executeCmd(t, "", append([]string{"validate", "-c", configPath}, extra...)...)
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
port: 8080
poll_interval: 10s
log_limit: 50
backend:
  url: http://localhost:5000
`)

	output, err := executeValidateCmd(t, configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Backend:       http://localhost:5000",
		"Port:          8080",
		"Poll interval: 10s",
		"Log limit:     50",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_TOMLConfig(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
poll_interval = "5s"

[backend]
url = "http://localhost:5000"
`)

	output, err := executeValidateCmd(t, configPath)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "Poll interval: 5s") {
		t.Errorf("output missing poll interval\nGot: %s", output)
	}
}

func TestRunValidate_BackendFlag(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "title: Downloads\n")

	if _, err := executeValidateCmd(t, configPath); err == nil {
		t.Fatal("validate expected error without a backend URL, got nil")
	}

	output, err := executeValidateCmd(t, configPath, "-b", "http://jobs.internal:5000")
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "http://jobs.internal:5000") {
		t.Errorf("output missing flag backend\nGot: %s", output)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	configPath := writeConfig(t, "invalid.yaml", `
poll_interval: 100ms
backend:
  url: http://localhost:5000
`)

	_, err := executeValidateCmd(t, configPath)
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}

	if !strings.Contains(err.Error(), "poll_interval") {
		t.Errorf("error should mention 'poll_interval', got: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeValidateCmd(t, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}

	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestRunValidate_RequiresConfig(t *testing.T) {
	_, err := executeCmd(t, "", "validate", "-b", "http://localhost:5000")
	if err == nil || !strings.Contains(err.Error(), "--config") {
		t.Errorf("validate error = %v, want config required", err)
	}
}
