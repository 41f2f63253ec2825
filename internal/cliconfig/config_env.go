package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (SYNCTRAYD_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("syncthing-path", os.Getenv("SYNCTRAYD_SYNCTHING_PATH"), &cfg.SyncthingPath)
	s.setString("address", os.Getenv("SYNCTRAYD_ADDRESS"), &cfg.Address)
	s.setString("api-key", os.Getenv("SYNCTRAYD_API_KEY"), &cfg.APIKey)
	s.setString("home-dir", os.Getenv("SYNCTRAYD_HOME_DIR"), &cfg.HomeDir)
	s.setString("log-level", os.Getenv("SYNCTRAYD_LOG_LEVEL"), &cfg.LogLevel)

	s.setStrings("extra-flags", splitList(os.Getenv("SYNCTRAYD_EXTRA_FLAGS")), &cfg.ExtraFlags)
	s.setStrings("debug-facilities", splitList(os.Getenv("SYNCTRAYD_DEBUG_FACILITIES")), &cfg.DebugFacilities)

	if err := s.setDuration("connect-timeout", os.Getenv("SYNCTRAYD_CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}

	s.setBoolFromString("deny-upgrade", os.Getenv("SYNCTRAYD_DENY_UPGRADE"), &cfg.DenyUpgrade)
	s.setBoolFromString("low-priority", os.Getenv("SYNCTRAYD_LOW_PRIORITY"), &cfg.LowPriority)
	s.setBoolFromString("hide-device-ids", os.Getenv("SYNCTRAYD_HIDE_DEVICE_IDS"), &cfg.HideDeviceIDs)

	return nil
}
