package coordinator

import (
	"context"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// Start launches the daemon process and blocks until the API session is
// established or establishment fails with a communication error (wrapped
// as [domain.StartupError]). Expected races such as the process dying
// mid-startup resolve Start without error; the state machine reports the
// outcome.
func (c *Coordinator) Start(ctx context.Context) error {
	result := make(chan error, 1)
	c.startMu.Lock()
	c.startResult = result
	c.startMu.Unlock()

	c.supervisor.Configure(c.processConfig())
	if err := c.supervisor.Start(); err != nil {
		c.startMu.Lock()
		c.startResult = nil
		c.startMu.Unlock()
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop asks the daemon to shut down gracefully via its API and marks the
// state Stopping. The eventual Stopped state arrives through the process
// supervisor when the process actually exits.
func (c *Coordinator) Stop(ctx context.Context) error {
	client, err := c.clientSlot.GetOrErr()
	if err != nil {
		return err
	}
	if err := client.Shutdown(ctx); err != nil {
		// Best effort: the daemon may already be on its way down.
		c.logger.Warn("graceful shutdown request failed", log.Err(err))
	}
	c.SetState(domain.StateStopping)
	return nil
}

// StopAndWait stops the daemon gracefully and blocks until the terminal
// Stopped state is observed. A transition to any state other than
// Stopping or Stopped while waiting is reported as
// [domain.UnexpectedStateError].
func (c *Coordinator) StopAndWait(ctx context.Context) error {
	done := make(chan error, 1)
	unsubscribe := c.SubscribeStateChanged(func(change StateChange) {
		switch change.To {
		case domain.StateStopped:
			select {
			case done <- nil:
			default:
			}
		case domain.StateStopping:
			// Still on the way down.
		default:
			select {
			case done <- &domain.UnexpectedStateError{State: change.To}:
			default:
			}
		}
	})
	defer unsubscribe()

	if err := c.Stop(ctx); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restart asks the daemon to restart itself. No-op unless currently
// Running; the supervisor reports the restart and a fresh session is
// established against the relaunched process.
func (c *Coordinator) Restart(ctx context.Context) error {
	if c.State() != domain.StateRunning {
		return nil
	}
	client, err := c.clientSlot.GetOrErr()
	if err != nil {
		return err
	}
	return client.Restart(ctx)
}

// Kill terminates the daemon process forcefully and marks the state
// Stopped immediately.
func (c *Coordinator) Kill() error {
	err := c.supervisor.Kill()
	c.SetState(domain.StateStopped)
	return err
}

// KillAllKnownProcesses kills the current daemon process and any strays
// the supervisor knows about.
func (c *Coordinator) KillAllKnownProcesses() error {
	err := c.supervisor.KillAll()
	c.SetState(domain.StateStopped)
	return err
}

// Scan requests a rescan of subPath inside the given folder. Requires an
// established session.
func (c *Coordinator) Scan(ctx context.Context, folderID, subPath string) error {
	client, err := c.clientSlot.GetOrErr()
	if err != nil {
		return err
	}
	return client.Scan(ctx, folderID, subPath)
}

// ReloadIgnores re-fetches one folder's ignore patterns. Requires an
// established session.
func (c *Coordinator) ReloadIgnores(ctx context.Context, folderID string) error {
	client, err := c.clientSlot.GetOrErr()
	if err != nil {
		return err
	}
	return c.folders.ReloadIgnores(ctx, client, folderID)
}

// processConfig maps the coordinator configuration onto the supervisor's
// launch parameters.
func (c *Coordinator) processConfig() ports.ProcessConfig {
	return ports.ProcessConfig{
		ExecutablePath:  c.cfg.ExecutablePath,
		Address:         c.cfg.Address,
		APIKey:          c.cfg.APIKey,
		HomeDir:         c.cfg.HomeDir,
		ExtraFlags:      c.cfg.ExtraFlags,
		ExtraEnv:        c.cfg.ExtraEnv,
		DebugFacilities: c.cfg.DebugFacilities,
		LowPriority:     c.cfg.LowPriority,
		DenyUpgrade:     c.cfg.DenyUpgrade,
		HideDeviceIDs:   c.cfg.HideDeviceIDs,
	}
}
