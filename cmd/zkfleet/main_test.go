package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestRun_NoCommand verifies run fails without a subcommand.
func TestRun_NoCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil {
		t.Fatal("run() should fail without a command")
	}
	if !strings.Contains(err.Error(), "no command") {
		t.Errorf("err = %v, want the usage hint", err)
	}
}

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"-config", "/nonexistent/path/config.yaml", "devices"})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("err = %v, want a config loading failure", err)
	}
}

// TestRun_SimulatedSync runs a whole roster sync against scripted terminals.
func TestRun_SimulatedSync(t *testing.T) {
	configPath := writeTestConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, []string{"-config", configPath, "-simulate", "sync-users"}); err != nil {
		t.Fatalf("run(sync-users) error = %v", err)
	}
	if err := run(ctx, []string{"-config", configPath, "-simulate", "sync-attendance"}); err != nil {
		t.Fatalf("run(sync-attendance) error = %v", err)
	}

	// The persisted punch log is printable, and the voice test reaches the
	// scripted terminal.
	if err := run(ctx, []string{"-config", configPath, "-simulate", "attendance", "10.0.0.1"}); err != nil {
		t.Fatalf("run(attendance) error = %v", err)
	}
	if err := run(ctx, []string{"-config", configPath, "-simulate", "test-voice", "10.0.0.1"}); err != nil {
		t.Fatalf("run(test-voice) error = %v", err)
	}
}

// TestRun_WithoutDriver verifies real mode refuses to start without a linked
// protocol driver.
func TestRun_WithoutDriver(t *testing.T) {
	configPath := writeTestConfig(t)

	err := run(context.Background(), []string{"-config", configPath, "sync-users"})
	if err == nil {
		t.Fatal("run() should fail without -simulate")
	}
	if !strings.Contains(err.Error(), "-simulate") {
		t.Errorf("err = %v, want the -simulate hint", err)
	}
}

// TestGetConfigPath verifies the ZKFLEET_CONFIG override.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("ZKFLEET_CONFIG", "/etc/zkfleet/config.yaml")
	if got := getConfigPath(); got != "/etc/zkfleet/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}

	t.Setenv("ZKFLEET_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

// writeTestConfig writes a minimal config plus registry into a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	registryPath := filepath.Join(dir, "devices.yaml")
	registry := `
devices:
  - ip: 10.0.0.1
    name: Gate-A
    location: Test
    status: active
`
	if err := os.WriteFile(registryPath, []byte(registry), 0o600); err != nil {
		t.Fatalf("writing registry: %v", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	cfg := `
database:
  path: ` + filepath.Join(dir, "zkfleet.db") + `
  wal_mode: true
  busy_timeout: 5

fleet:
  registry_path: ` + registryPath + `
  port: 4370
  timeout: 5
  force_udp: true
  chunk_size: 1000

api:
  enabled: false
  host: "127.0.0.1"
  port: 8080
  timeouts:
    read: 30
    write: 60
    idle: 120

mqtt:
  enabled: false

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

export:
  dir: ` + filepath.Join(dir, "exports") + `
`
	if err := os.WriteFile(configPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath
}
