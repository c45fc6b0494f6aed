package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dverna/casaflow-core/internal/view"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("CASAFLOW_CONFIG")
	defer os.Setenv("CASAFLOW_CONFIG", originalEnv)

	os.Setenv("CASAFLOW_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingDatabasePath verifies run fails when the database path
// is empty while history is enabled.
func TestRun_MissingDatabasePath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
hub:
  url: "ws://127.0.0.1:8123/api/websocket"
  token: "test-token"

dashboard:
  config_path: "/local/dashboard.json"
  holder_entity: "input_text.dashboard_ui_config"

database:
  path: ""

history:
  enabled: true

presence:
  enabled: false

telemetry:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	originalEnv := os.Getenv("CASAFLOW_CONFIG")
	defer os.Setenv("CASAFLOW_CONFIG", originalEnv)
	os.Setenv("CASAFLOW_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("CASAFLOW_CONFIG")
	defer os.Setenv("CASAFLOW_CONFIG", originalEnv)

	os.Unsetenv("CASAFLOW_CONFIG")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("CASAFLOW_CONFIG")
	defer os.Setenv("CASAFLOW_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("CASAFLOW_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestCountFragments(t *testing.T) {
	if got := countFragments(nil); got != 0 {
		t.Errorf("countFragments(nil) = %d, want 0", got)
	}

	root := &view.Fragment{
		Children: []*view.Fragment{
			{},
			{Children: []*view.Fragment{{}, {}}},
		},
	}
	if got := countFragments(root); got != 5 {
		t.Errorf("countFragments() = %d, want 5", got)
	}
}
