package domain

// RunState is the authoritative lifecycle state of the managed Syncthing
// process. It is mutated only by the coordinator, under its state lock.
type RunState int

const (
	StateStopped RunState = iota
	StateStarting
	StateRunning
	StateStopping
	StateRestarting
)

// String returns a human-readable representation of the state.
func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateRestarting:
		return "Restarting"
	default:
		return "Unknown"
	}
}

// ExitStatus describes how the supervised process terminated.
type ExitStatus int

const (
	ExitOK ExitStatus = iota
	ExitError
)

// String returns a human-readable representation of the exit status.
func (e ExitStatus) String() string {
	if e == ExitOK {
		return "ok"
	}
	return "error"
}
