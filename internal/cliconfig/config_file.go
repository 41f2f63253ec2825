package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	SyncthingPath   string            `toml:"syncthing_path"`
	Address         string            `toml:"address"`
	APIKey          string            `toml:"api_key"`
	HomeDir         string            `toml:"home_dir"`
	ExtraFlags      []string          `toml:"extra_flags"`
	ExtraEnv        map[string]string `toml:"extra_env"`
	DebugFacilities []string          `toml:"debug_facilities"`
	ConnectTimeout  string            `toml:"connect_timeout"`
	DenyUpgrade     *bool             `toml:"deny_upgrade"`
	LowPriority     *bool             `toml:"low_priority"`
	HideDeviceIDs   *bool             `toml:"hide_device_ids"`
	LogLevel        string            `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.config/synctrayd/config.toml, if the user home is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".config", "synctrayd", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("syncthing-path", fc.SyncthingPath, &cfg.SyncthingPath)
	s.setString("address", fc.Address, &cfg.Address)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("home-dir", fc.HomeDir, &cfg.HomeDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setStrings("extra-flags", fc.ExtraFlags, &cfg.ExtraFlags)
	s.setStrings("debug-facilities", fc.DebugFacilities, &cfg.DebugFacilities)
	s.setStringMap("extra-env", fc.ExtraEnv, &cfg.ExtraEnv)

	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}

	s.setBool("deny-upgrade", fc.DenyUpgrade, &cfg.DenyUpgrade)
	s.setBool("low-priority", fc.LowPriority, &cfg.LowPriority)
	s.setBool("hide-device-ids", fc.HideDeviceIDs, &cfg.HideDeviceIDs)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
