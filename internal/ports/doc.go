// Package ports defines the interfaces that connect the coordinator core to
// infrastructure adapters.
//
// The coordinator (internal/coordinator) depends only on these interfaces.
// Concrete implementations live in internal/adapters: an exec-based process
// supervisor, a Syncthing REST client and factory, and the two background
// watchers. Tests substitute hand-rolled fakes.
//
//   - [ProcessSupervisor]: owns OS process launch/termination and emits
//     lifecycle events on a channel
//   - [APIClient] / [APIClientFactory]: the daemon's local HTTP control API
//   - [EventWatcher] / [ConnectionsWatcher]: long-lived polling loops whose
//     validity is tied to the current API session
//   - [FolderManager] / [DeviceManager]: folder and device bookkeeping,
//     loaded once per session and reloaded when event tracking can no
//     longer be trusted
package ports
