package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Errors returned by the coordinator's public API. Check with errors.Is,
// except the wrapper types below which carry a cause or a state and are
// matched with errors.As.
var (
	// ErrNotStarted is returned when an API-dependent operation is invoked
	// while no API session is established. This indicates a caller bug, not
	// a condition to retry.
	ErrNotStarted = errors.New("synctrayd: syncthing is not started")

	// ErrAlreadyRunning is returned when Start() is called while the
	// supervised process is already running.
	ErrAlreadyRunning = errors.New("synctrayd: syncthing is already running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("synctrayd: invalid configuration")
)

// StartupError wraps a transport- or protocol-level failure that occurred
// while establishing the API session. It is surfaced only to the caller of
// the start operation.
type StartupError struct {
	Cause error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("synctrayd: syncthing did not start correctly: %v", e.Cause)
}

func (e *StartupError) Unwrap() error { return e.Cause }

// UnexpectedStateError is reported to a waiting graceful-stop caller when
// the daemon transitions somewhere other than Stopping or Stopped.
type UnexpectedStateError struct {
	State RunState
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("synctrayd: unexpected state %s while waiting for shutdown", e.State)
}

// APIError is a protocol-level failure: the daemon answered, but with a
// non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: daemon returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsCommunicationError reports whether err is a transport- or
// protocol-level failure talking to the daemon, as opposed to cancellation
// or an unrelated bug. Connect timeouts count as transport failures.
func IsCommunicationError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr)
}
