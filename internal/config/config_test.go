package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable applyEnv reads so the developer's shell
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AWX_URL", "AWX_USERNAME", "AWX_MONITOR_INTERVAL", "AWX_MONITOR_AUTO_REFRESH",
		"AWX_MONITOR_STATE", "AWX_MONITOR_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
awx:
  url: "https://awx.example.com"
  username: "ops"
poll:
  interval: 10s
  auto_refresh: false
state_file: /tmp/awx-state.yaml
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.AWX.URL != "https://awx.example.com" {
		t.Errorf("AWX.URL = %q, want %q", cfg.AWX.URL, "https://awx.example.com")
	}
	if cfg.AWX.Username != "ops" {
		t.Errorf("AWX.Username = %q, want %q", cfg.AWX.Username, "ops")
	}
	if cfg.Poll.Interval != 10*time.Second {
		t.Errorf("Poll.Interval = %v, want 10s", cfg.Poll.Interval)
	}
	if cfg.Poll.AutoRefresh {
		t.Error("Poll.AutoRefresh = true, want false")
	}
	if cfg.StateFile != "/tmp/awx-state.yaml" {
		t.Errorf("StateFile = %q, want /tmp/awx-state.yaml", cfg.StateFile)
	}

	// Defaults should still be applied for unspecified fields.
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("HTTP.Timeout = %v, want default 10s", cfg.HTTP.Timeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("Load() on missing file should return error")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_STATE_HOME", "/var/tmp/xdg")

	cfg, err := LoadOrDefault("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}

	if cfg.AWX.URL != "http://localhost:8080" {
		t.Errorf("AWX.URL = %q, want default", cfg.AWX.URL)
	}
	if cfg.AWX.Username != "admin" {
		t.Errorf("AWX.Username = %q, want default admin", cfg.AWX.Username)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("Poll.Interval = %v, want default 5s", cfg.Poll.Interval)
	}
	if !cfg.Poll.AutoRefresh {
		t.Error("Poll.AutoRefresh = false, want default true")
	}
	if want := "/var/tmp/xdg/awx-monitor/state.yaml"; cfg.StateFile != want {
		t.Errorf("StateFile = %q, want %q", cfg.StateFile, want)
	}
	if want := "/var/tmp/xdg/awx-monitor/awx-monitor.log"; cfg.Log.File != want {
		t.Errorf("Log.File = %q, want %q", cfg.Log.File, want)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(cfgPath, []byte(":::not valid yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() with invalid YAML should return error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWX_URL", "https://env.example.com")
	t.Setenv("AWX_USERNAME", "envuser")
	t.Setenv("AWX_MONITOR_INTERVAL", "30s")
	t.Setenv("AWX_MONITOR_AUTO_REFRESH", "no")

	cfg, err := LoadOrDefault("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.AWX.URL != "https://env.example.com" {
		t.Errorf("AWX.URL = %q, want env value", cfg.AWX.URL)
	}
	if cfg.AWX.Username != "envuser" {
		t.Errorf("AWX.Username = %q, want env value", cfg.AWX.Username)
	}
	if cfg.Poll.Interval != 30*time.Second {
		t.Errorf("Poll.Interval = %v, want 30s", cfg.Poll.Interval)
	}
	if cfg.Poll.AutoRefresh {
		t.Error("Poll.AutoRefresh = true, want false from env")
	}
}

func TestNormalizeRejectsNonPositive(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := `
poll:
  interval: 0s
http:
  timeout: -1s
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Poll.Interval != 5*time.Second {
		t.Errorf("Poll.Interval = %v, want fallback 5s", cfg.Poll.Interval)
	}
	if cfg.HTTP.Timeout != 10*time.Second {
		t.Errorf("HTTP.Timeout = %v, want fallback 10s", cfg.HTTP.Timeout)
	}
}

func TestLoadIgnoresPageSize(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWX_MONITOR_PAGE_SIZE", "50")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	// files written for older releases may still carry page_size
	yaml := `
poll:
  interval: 7s
  page_size: 50
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Poll.Interval != 7*time.Second {
		t.Errorf("Poll.Interval = %v, want 7s", cfg.Poll.Interval)
	}
	if cfg.Poll != (PollConfig{Interval: 7 * time.Second, AutoRefresh: true}) {
		t.Errorf("Poll = %+v, want only interval and auto_refresh", cfg.Poll)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		val      string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"1", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("AWX_TEST_BOOL", tt.val)
		if got := Bool("AWX_TEST_BOOL", tt.fallback); got != tt.want {
			t.Errorf("Bool(%q, %v) = %v, want %v", tt.val, tt.fallback, got, tt.want)
		}
	}
}
