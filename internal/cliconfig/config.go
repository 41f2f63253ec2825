// Package cliconfig resolves synctrayd's own configuration from defaults,
// a TOML file, SYNCTRAYD_* environment variables, and command-line flags,
// in ascending precedence.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luvmdy/SyncTrayzor/internal/coordinator"
)

// DefaultAddress is where the daemon's API is expected to listen.
const DefaultAddress = "127.0.0.1:8384"

// DefaultConnectTimeout bounds the API probe after a process start.
const DefaultConnectTimeout = 60 * time.Second

// Config holds CLI configuration for synctrayd.
type Config struct {
	SyncthingPath string
	Address       string
	APIKey        string
	HomeDir       string

	ExtraFlags      []string
	ExtraEnv        map[string]string
	DebugFacilities []string

	ConnectTimeout time.Duration

	DenyUpgrade   bool
	LowPriority   bool
	HideDeviceIDs bool

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SyncthingPath:  "syncthing",
		Address:        DefaultAddress,
		HomeDir:        defaultHomeDir(),
		ConnectTimeout: DefaultConnectTimeout,
		LogLevel:       "info",
		APIKey:         os.Getenv("SYNCTRAYD_API_KEY"),
	}
}

func defaultHomeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".config", "synctrayd", "syncthing")
	}
	return ""
}

// Validate checks the configuration and sets derived defaults. A missing
// API key is generated rather than rejected; the daemon is launched with
// whatever key synctrayd holds.
func (c *Config) Validate() error {
	if c.SyncthingPath == "" {
		return fmt.Errorf("syncthing-path is required")
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.HomeDir == "" {
		return fmt.Errorf("home-dir is required")
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.APIKey == "" {
		c.APIKey = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return nil
}

// Coordinator maps the CLI configuration onto the coordinator's.
func (c *Config) Coordinator() coordinator.Config {
	return coordinator.Config{
		ExecutablePath:  c.SyncthingPath,
		Address:         c.Address,
		APIKey:          c.APIKey,
		HomeDir:         c.HomeDir,
		ExtraFlags:      c.ExtraFlags,
		ExtraEnv:        c.ExtraEnv,
		DebugFacilities: c.DebugFacilities,
		ConnectTimeout:  c.ConnectTimeout,
		DenyUpgrade:     c.DenyUpgrade,
		LowPriority:     c.LowPriority,
		HideDeviceIDs:   c.HideDeviceIDs,
	}
}

// configSetter applies configuration values while respecting flag
// precedence: a value is only applied if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a string slice if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setStringMap sets a string map if not empty and flag not changed.
func (s *configSetter) setStringMap(flag string, value map[string]string, dst *map[string]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool. Accepts "true" and "1" as
// true, anything else as false. Used for environment variables.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// splitList splits a comma-separated environment value into a clean slice.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
