package ports

import "github.com/luvmdy/SyncTrayzor/internal/domain"

// EventWatcher is the long-lived loop following the daemon's event stream.
// Start and Stop are idempotent, synchronous, and safe to call while
// holding the coordinator's API-layer lock.
type EventWatcher interface {
	Start()
	Stop()
}

// ConnectionsWatcher is the long-lived loop polling the daemon's aggregate
// connection counters. Same Start/Stop contract as EventWatcher.
type ConnectionsWatcher interface {
	Start()
	Stop()
}

// EventHandler receives signals from the event watcher. Implementations
// must tolerate calls from the watcher's own goroutine.
type EventHandler interface {
	OnConfigSaved()

	// OnEventsSkipped signals a gap in the event stream: incremental
	// tracking can no longer be trusted to be complete.
	OnEventsSkipped()

	OnDeviceConnected(deviceID string)
	OnDeviceDisconnected(deviceID string)
}

// ConnectionStatsHandler receives replaced totals from the connections
// watcher.
type ConnectionStatsHandler interface {
	OnConnectionStatsChanged(stats domain.ConnectionStats)
}
