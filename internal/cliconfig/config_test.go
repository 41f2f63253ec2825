package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SyncthingPath != "syncthing" {
		t.Errorf("SyncthingPath = %q, want syncthing", cfg.SyncthingPath)
	}
	if cfg.Address != DefaultAddress {
		t.Errorf("Address = %q, want %q", cfg.Address, DefaultAddress)
	}
	if cfg.ConnectTimeout != DefaultConnectTimeout {
		t.Errorf("ConnectTimeout = %v, want %v", cfg.ConnectTimeout, DefaultConnectTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestValidate_GeneratesAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.APIKey == "" {
		t.Fatal("APIKey not generated")
	}
	if strings.Contains(cfg.APIKey, "-") {
		t.Errorf("generated APIKey %q contains dashes", cfg.APIKey)
	}
	if len(cfg.APIKey) != 32 {
		t.Errorf("generated APIKey length = %d, want 32", len(cfg.APIKey))
	}
}

func TestValidate_KeepsProvidedAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "my-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.APIKey != "my-key" {
		t.Errorf("APIKey = %q, want my-key", cfg.APIKey)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"syncthing path", func(c *Config) { c.SyncthingPath = "" }},
		{"address", func(c *Config) { c.Address = "" }},
		{"home dir", func(c *Config) { c.HomeDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.HomeDir = "/tmp/st-home"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted missing required field")
			}
		})
	}
}

func TestApplyFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
syncthing_path = "/opt/syncthing/syncthing"
address = "127.0.0.1:9999"
api_key = "file-key"
extra_flags = ["-verbose"]
debug_facilities = ["api", "scanner"]
connect_timeout = "90s"
deny_upgrade = true
log_level = "debug"

[extra_env]
STTRACE = "model"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.SyncthingPath != "/opt/syncthing/syncthing" {
		t.Errorf("SyncthingPath = %q", cfg.SyncthingPath)
	}
	if cfg.Address != "127.0.0.1:9999" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if !reflect.DeepEqual(cfg.ExtraFlags, []string{"-verbose"}) {
		t.Errorf("ExtraFlags = %v", cfg.ExtraFlags)
	}
	if !reflect.DeepEqual(cfg.DebugFacilities, []string{"api", "scanner"}) {
		t.Errorf("DebugFacilities = %v", cfg.DebugFacilities)
	}
	if cfg.ExtraEnv["STTRACE"] != "model" {
		t.Errorf("ExtraEnv = %v", cfg.ExtraEnv)
	}
	if cfg.ConnectTimeout != 90*time.Second {
		t.Errorf("ConnectTimeout = %v", cfg.ConnectTimeout)
	}
	if !cfg.DenyUpgrade {
		t.Error("DenyUpgrade not applied")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:7777" // set via flag

	fc := FileConfig{Address: "127.0.0.1:9999", LogLevel: "debug"}
	changed := map[string]bool{"address": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.Address != "127.0.0.1:7777" {
		t.Errorf("Address = %q, flag value should win over the file", cfg.Address)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, unflagged file values should still apply", cfg.LogLevel)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{ConnectTimeout: "ninety seconds"}
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Error("ApplyFileConfig accepted an unparseable duration")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("SYNCTRAYD_ADDRESS", "127.0.0.1:8888")
	t.Setenv("SYNCTRAYD_EXTRA_FLAGS", "-verbose, -audit")
	t.Setenv("SYNCTRAYD_CONNECT_TIMEOUT", "2m")
	t.Setenv("SYNCTRAYD_DENY_UPGRADE", "true")
	t.Setenv("SYNCTRAYD_LOW_PRIORITY", "0")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}

	if cfg.Address != "127.0.0.1:8888" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if !reflect.DeepEqual(cfg.ExtraFlags, []string{"-verbose", "-audit"}) {
		t.Errorf("ExtraFlags = %v", cfg.ExtraFlags)
	}
	if cfg.ConnectTimeout != 2*time.Minute {
		t.Errorf("ConnectTimeout = %v", cfg.ConnectTimeout)
	}
	if !cfg.DenyUpgrade {
		t.Error("DenyUpgrade not applied")
	}
	if cfg.LowPriority {
		t.Error(`LowPriority = true for "0"`)
	}
}

func TestApplyEnvConfig_FlagsWin(t *testing.T) {
	t.Setenv("SYNCTRAYD_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LogLevel = "warn" // set via flag
	changed := map[string]bool{"log-level": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, flag value should win over environment", cfg.LogLevel)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := splitList(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoordinatorMapping(t *testing.T) {
	cfg := Config{
		SyncthingPath:  "/usr/bin/syncthing",
		Address:        "127.0.0.1:8384",
		APIKey:         "key",
		HomeDir:        "/home/user/.config/synctrayd/syncthing",
		ConnectTimeout: 30 * time.Second,
		DenyUpgrade:    true,
		HideDeviceIDs:  true,
	}
	got := cfg.Coordinator()

	if got.ExecutablePath != cfg.SyncthingPath {
		t.Errorf("ExecutablePath = %q", got.ExecutablePath)
	}
	if got.APIKey != "key" || got.ConnectTimeout != 30*time.Second {
		t.Errorf("mapped config = %+v", got)
	}
	if !got.DenyUpgrade || !got.HideDeviceIDs {
		t.Errorf("bool fields not mapped: %+v", got)
	}
}
