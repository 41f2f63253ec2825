// Package process implements the OS-level supervisor for the Syncthing
// daemon: it spawns the binary, streams its output as log-line events,
// relaunches it when the daemon asks to be restarted, and reports how it
// exited.
package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// exitCodeRestart is the daemon's "please restart me" exit code.
const exitCodeRestart = 3

// eventQueueSize bounds the supervisor's event channel.
const eventQueueSize = 64

// deviceIDPattern matches daemon device IDs in log output, for redaction
// when HideDeviceIDs is set.
var deviceIDPattern = regexp.MustCompile(`[A-Z2-7]{7}(?:-[A-Z2-7]{7}){7}`)

// Supervisor launches and supervises the daemon process.
type Supervisor struct {
	logger log.Logger
	events chan ports.ProcessEvent

	mu        sync.Mutex
	cfg       ports.ProcessConfig
	cmd       *exec.Cmd
	running   bool
	stopping  bool
	closed    bool
	knownPIDs []int
}

var _ ports.ProcessSupervisor = (*Supervisor)(nil)

// NewSupervisor creates a supervisor. Configure must be called before
// Start.
func NewSupervisor(logger log.Logger) *Supervisor {
	return &Supervisor{
		logger: logger,
		events: make(chan ports.ProcessEvent, eventQueueSize),
	}
}

// Configure sets the launch parameters used by the next Start.
func (s *Supervisor) Configure(cfg ports.ProcessConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Events returns the supervisor's notification channel. It is closed by
// Close.
func (s *Supervisor) Events() <-chan ports.ProcessEvent {
	return s.events
}

// Start spawns the daemon process. Fails if it is already running.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrAlreadyRunning
	}
	s.stopping = false
	return s.launchLocked()
}

// launchLocked spawns the process and its pump/wait goroutines. Caller
// holds s.mu.
func (s *Supervisor) launchLocked() error {
	cfg := s.cfg

	args := []string{
		"-home", cfg.HomeDir,
		"-gui-address", cfg.Address,
		"-no-browser",
		"-no-restart",
	}
	args = append(args, cfg.ExtraFlags...)

	cmd := exec.Command(cfg.ExecutablePath, args...)
	cmd.Env = append(os.Environ(),
		"STGUIAPIKEY="+cfg.APIKey,
		"STNORESTART=1",
	)
	if cfg.DenyUpgrade {
		cmd.Env = append(cmd.Env, "STNOUPGRADE=1")
	}
	if len(cfg.DebugFacilities) > 0 {
		cmd.Env = append(cmd.Env, "STTRACE="+strings.Join(cfg.DebugFacilities, ","))
	}
	for k, v := range cfg.ExtraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	s.emit(ports.ProcessEvent{Kind: ports.ProcessStarting})

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("launch %s: %w", cfg.ExecutablePath, err)
	}

	s.cmd = cmd
	s.running = true
	s.knownPIDs = append(s.knownPIDs, cmd.Process.Pid)

	if cfg.LowPriority {
		if err := syscall.Setpriority(syscall.PRIO_PROCESS, cmd.Process.Pid, 10); err != nil {
			s.logger.Warn("failed to lower daemon priority", log.Err(err))
		}
	}

	s.logger.Info("daemon launched",
		log.String("exe", cfg.ExecutablePath),
		log.Int("pid", cmd.Process.Pid),
	)

	go s.pumpOutput(pr, cfg.HideDeviceIDs)
	go s.wait(cmd, pw)
	return nil
}

// pumpOutput turns daemon output lines into log-line events.
func (s *Supervisor) pumpOutput(r io.Reader, hideDeviceIDs bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 64<<10)
	for scanner.Scan() {
		line := scanner.Text()
		if hideDeviceIDs {
			line = deviceIDPattern.ReplaceAllString(line, "REDACTED")
		}
		s.emit(ports.ProcessEvent{Kind: ports.ProcessLogLine, Line: line})
	}
}

// wait reaps the process and decides what its exit means.
func (s *Supervisor) wait(cmd *exec.Cmd, pw *io.PipeWriter) {
	err := cmd.Wait()
	pw.Close()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		exitCode = -1
	}

	s.mu.Lock()
	s.running = false
	s.cmd = nil
	stopping := s.stopping
	restart := exitCode == exitCodeRestart && !stopping && !s.closed

	s.logger.Info("daemon exited",
		log.Int("code", exitCode),
		log.Bool("restart", restart),
	)

	if restart {
		s.emit(ports.ProcessEvent{Kind: ports.ProcessRestarted})
		if launchErr := s.launchLocked(); launchErr != nil {
			s.logger.Error("daemon relaunch failed", log.Err(launchErr))
			s.emit(ports.ProcessEvent{Kind: ports.ProcessStopped, ExitStatus: domain.ExitError})
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	status := domain.ExitOK
	if exitCode != 0 && !stopping {
		status = domain.ExitError
	}
	s.emit(ports.ProcessEvent{Kind: ports.ProcessStopped, ExitStatus: status})
}

// Stop asks the process to terminate with SIGTERM. The exit is reported as
// expected regardless of code.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cmd == nil {
		return nil
	}
	s.stopping = true
	return s.cmd.Process.Signal(syscall.SIGTERM)
}

// Kill terminates the process immediately.
func (s *Supervisor) Kill() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.cmd == nil {
		return nil
	}
	s.stopping = true
	return s.cmd.Process.Kill()
}

// KillAll kills the current process and any earlier daemon processes this
// supervisor launched that are somehow still alive.
func (s *Supervisor) KillAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopping = true
	var firstErr error
	if s.running && s.cmd != nil {
		firstErr = s.cmd.Process.Kill()
	}
	for _, pid := range s.knownPIDs {
		proc, err := os.FindProcess(pid)
		if err != nil {
			continue
		}
		// Signal 0 probes liveness without touching the process.
		if proc.Signal(syscall.Signal(0)) == nil {
			if err := proc.Kill(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	s.knownPIDs = nil
	return firstErr
}

// Close marks the supervisor finished and closes the events channel. The
// process, if running, is left alone; call Kill or Stop first.
func (s *Supervisor) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// emit delivers ev unless the supervisor is closed. Delivery blocks once
// the queue fills; the coordinator's control loop is the consumer.
func (s *Supervisor) emit(ev ports.ProcessEvent) {
	defer func() {
		// Losing a race with Close means the channel is gone; dropping the
		// event is fine at that point.
		_ = recover()
	}()
	s.events <- ev
}
