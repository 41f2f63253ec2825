package domain

import "time"

// SystemSnapshot is the immutable record captured once per successful
// startup sequence and refreshed on restart.
type SystemSnapshot struct {
	// Version is the daemon's short version string, e.g. "v1.27.6".
	Version string

	// LongVersion is the full version banner.
	LongVersion string

	// ParsedVersion is Version parsed as a semantic version.
	ParsedVersion SemVer

	// HomeTilde is the daemon's home directory with the user home collapsed
	// to "~", as reported by the daemon itself.
	HomeTilde string
}

// ConnectionStats holds aggregate transfer totals across all connected
// devices. Each update from the connections watcher replaces the previous
// value; totals are never merged.
type ConnectionStats struct {
	InBytesTotal  int64
	OutBytesTotal int64

	// InBytesPerSecond and OutBytesPerSecond are derived from the delta
	// against the previous poll.
	InBytesPerSecond  int64
	OutBytesPerSecond int64

	At time.Time
}

// SyncConfig is the daemon's synchronization configuration: the folders it
// shares and the devices it shares them with.
type SyncConfig struct {
	Folders []FolderConfig
	Devices []DeviceConfig
}

// FolderConfig describes one synced folder as configured in the daemon.
type FolderConfig struct {
	ID      string
	Label   string
	Path    string
	Devices []string
}

// DeviceConfig describes one peer device as configured in the daemon.
type DeviceConfig struct {
	ID   string
	Name string
}

// DebugFacilities lists the daemon's debug logging facilities and which of
// them are currently enabled.
type DebugFacilities struct {
	Enabled   []string
	Available map[string]string
}

// VersionInfo is the daemon's version report.
type VersionInfo struct {
	Version     string
	LongVersion string
}

// SystemInfo is the daemon's system status report.
type SystemInfo struct {
	MyID string

	// Tilde is the daemon's home path with the user home collapsed to "~".
	Tilde string
}

// ConnectionTotals are the raw aggregate counters reported by the daemon.
type ConnectionTotals struct {
	InBytesTotal  int64
	OutBytesTotal int64
	At            time.Time
}

// Event is one entry from the daemon's event stream. Data is left as the
// raw decoded payload; consumers pick out the fields they understand.
type Event struct {
	ID   int64
	Type string
	Time time.Time
	Data map[string]interface{}
}

// Event types observed by the event watcher.
const (
	EventConfigSaved        = "ConfigSaved"
	EventDeviceConnected    = "DeviceConnected"
	EventDeviceDisconnected = "DeviceDisconnected"
)

// Ignores holds one folder's ignore patterns.
type Ignores struct {
	Patterns []string
}
