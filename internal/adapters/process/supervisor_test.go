package process

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// writeScript creates a stand-in daemon executable. The launch flags the
// supervisor passes are harmless to a shell script that ignores its
// arguments.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakedaemon.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testProcessConfig(exe string) ports.ProcessConfig {
	return ports.ProcessConfig{
		ExecutablePath: exe,
		Address:        "127.0.0.1:8384",
		APIKey:         "key",
		HomeDir:        "/tmp/st-home",
	}
}

// waitEvent reads events until one of the wanted kind arrives.
func waitEvent(t *testing.T, s *Supervisor, kind ports.ProcessEventKind) ports.ProcessEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				t.Fatalf("events channel closed while waiting for %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %v event within deadline", kind)
		}
	}
}

func TestSupervisor_CleanExit(t *testing.T) {
	exe := writeScript(t, "echo ready\nexit 0\n")
	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	s.Configure(testProcessConfig(exe))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitEvent(t, s, ports.ProcessStarting)
	line := waitEvent(t, s, ports.ProcessLogLine)
	if line.Line != "ready" {
		t.Errorf("log line = %q, want ready", line.Line)
	}
	stopped := waitEvent(t, s, ports.ProcessStopped)
	if stopped.ExitStatus != domain.ExitOK {
		t.Errorf("exit status = %v, want ExitOK", stopped.ExitStatus)
	}
}

func TestSupervisor_ErrorExit(t *testing.T) {
	exe := writeScript(t, "exit 1\n")
	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	s.Configure(testProcessConfig(exe))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stopped := waitEvent(t, s, ports.ProcessStopped)
	if stopped.ExitStatus != domain.ExitError {
		t.Errorf("exit status = %v, want ExitError", stopped.ExitStatus)
	}
}

func TestSupervisor_RestartExitCode(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "restarted")
	exe := writeScript(t,
		"if [ -e \"$RESTART_MARKER\" ]; then exit 0; fi\n"+
			"touch \"$RESTART_MARKER\"\n"+
			"exit 3\n")

	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	cfg := testProcessConfig(exe)
	cfg.ExtraEnv = map[string]string{"RESTART_MARKER": marker}
	s.Configure(cfg)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitEvent(t, s, ports.ProcessStarting)
	waitEvent(t, s, ports.ProcessRestarted)
	waitEvent(t, s, ports.ProcessStarting)
	stopped := waitEvent(t, s, ports.ProcessStopped)
	if stopped.ExitStatus != domain.ExitOK {
		t.Errorf("exit status after restart = %v, want ExitOK", stopped.ExitStatus)
	}
}

func TestSupervisor_StopMakesExitExpected(t *testing.T) {
	exe := writeScript(t, "exec sleep 30\n")
	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	s.Configure(testProcessConfig(exe))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitEvent(t, s, ports.ProcessStarting)

	// Give the shell a moment to exec before signalling.
	time.Sleep(100 * time.Millisecond)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	stopped := waitEvent(t, s, ports.ProcessStopped)
	if stopped.ExitStatus != domain.ExitOK {
		t.Errorf("exit status = %v, a requested stop is not an error", stopped.ExitStatus)
	}
}

func TestSupervisor_StartWhileRunning(t *testing.T) {
	exe := writeScript(t, "exec sleep 30\n")
	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	s.Configure(testProcessConfig(exe))

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitEvent(t, s, ports.ProcessStarting)

	if err := s.Start(); err != domain.ErrAlreadyRunning {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}

	if err := s.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	waitEvent(t, s, ports.ProcessStopped)
}

func TestSupervisor_RedactsDeviceIDs(t *testing.T) {
	exe := writeScript(t, "echo device AAAAAAA-BBBBBBB-CCCCCCC-DDDDDDD-EEEEEEE-FFFFFFF-GGGGGGG-2222222 connected\n")
	s := NewSupervisor(log.NewNoop())
	defer s.Close()
	cfg := testProcessConfig(exe)
	cfg.HideDeviceIDs = true
	s.Configure(cfg)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	line := waitEvent(t, s, ports.ProcessLogLine)
	if line.Line != "device REDACTED connected" {
		t.Errorf("line = %q, device ID not redacted", line.Line)
	}
}

func TestDeviceIDPattern(t *testing.T) {
	tests := []struct {
		in    string
		match bool
	}{
		{"AAAAAAA-BBBBBBB-CCCCCCC-DDDDDDD-EEEEEEE-FFFFFFF-GGGGGGG-2222222", true},
		{"AAAAAAA-BBBBBBB", false},
		{"aaaaaaa-bbbbbbb-ccccccc-ddddddd-eeeeeee-fffffff-ggggggg-2222222", false},
		{"no id here", false},
	}
	for _, tt := range tests {
		if got := deviceIDPattern.MatchString(tt.in); got != tt.match {
			t.Errorf("MatchString(%q) = %v, want %v", tt.in, got, tt.match)
		}
	}
}
