// Package domain contains the core entities and value objects for
// synctrayd: the daemon run-state enumeration, the records captured from a
// running Syncthing instance (system snapshot, connection totals, folder and
// device configuration), and the error taxonomy exposed by the coordinator.
//
// The package has no infrastructure dependencies. Adapters translate wire
// payloads into these types; the coordinator mutates and publishes them.
package domain
