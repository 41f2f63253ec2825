package ports

import "github.com/luvmdy/SyncTrayzor/internal/domain"

// ProcessEventKind discriminates ProcessEvent.
type ProcessEventKind int

const (
	// ProcessStarting is emitted just before the daemon process is spawned,
	// on initial start and on every supervisor-driven relaunch.
	ProcessStarting ProcessEventKind = iota

	// ProcessStopped is emitted after the daemon process exited and the
	// supervisor will not relaunch it. ExitStatus says how it went.
	ProcessStopped

	// ProcessRestarted is emitted when the daemon asked to be restarted and
	// the supervisor is about to relaunch it. A ProcessStarting event
	// follows.
	ProcessRestarted

	// ProcessLogLine carries one line of the daemon's output.
	ProcessLogLine
)

// ProcessEvent is one notification from the process supervisor.
type ProcessEvent struct {
	Kind       ProcessEventKind
	ExitStatus domain.ExitStatus // set for ProcessStopped
	Line       string            // set for ProcessLogLine
}

// ProcessConfig carries everything the supervisor needs to launch the
// daemon. Set via Configure before Start.
type ProcessConfig struct {
	ExecutablePath  string
	Address         string
	APIKey          string
	HomeDir         string
	ExtraFlags      []string
	ExtraEnv        map[string]string
	DebugFacilities []string
	LowPriority     bool
	DenyUpgrade     bool
	HideDeviceIDs   bool
}

// ProcessSupervisor owns OS process start/stop/kill for the daemon.
//
// Start returns an error if the process is already running or cannot be
// spawned; all later lifecycle changes arrive on Events. The events channel
// is closed when the supervisor is closed.
type ProcessSupervisor interface {
	Configure(cfg ProcessConfig)
	Start() error
	Stop() error
	Kill() error

	// KillAll terminates the supervised process and any other daemon
	// processes this supervisor knows it has launched.
	KillAll() error

	Events() <-chan ProcessEvent
}
