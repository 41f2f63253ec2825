package coordinator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// reloadConfigData re-fetches the full configuration and reconciles folder
// and device state from scratch. Both the config-saved and events-skipped
// signals land here: once either fires, incremental event-driven tracking
// can no longer be trusted to be complete.
//
// Runs detached from whichever watcher raised the signal. Cancellation and
// communication failures are expected races with teardown and are only
// logged; anything else is a bug and is logged loudly (a detached
// goroutine has no caller to propagate to).
func (c *Coordinator) reloadConfigData(reason string) {
	err := c.reloadOnce()
	switch {
	case err == nil:
		c.logger.Debug("config data reloaded", log.String("reason", reason))
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrNotStarted):
		c.logger.Debug("config reload abandoned", log.String("reason", reason), log.Err(err))
	case domain.IsCommunicationError(err):
		c.logger.Debug("config reload failed", log.String("reason", reason), log.Err(err))
	default:
		c.logger.Error("unexpected failure during config reload",
			log.String("reason", reason),
			log.Err(err),
		)
	}
}

// reloadOnce performs one full reconciliation pass against the current
// session. Reload uses replace-in-place semantics, so two overlapping
// passes converge on the same final state.
func (c *Coordinator) reloadOnce() error {
	client, ctx, ok := c.currentSession()
	if !ok {
		return domain.ErrNotStarted
	}

	cfg, err := client.FetchConfig(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.folders.Reload(gctx, client, cfg)
	})
	g.Go(func() error {
		return c.devices.Reload(gctx, cfg)
	})
	return g.Wait()
}
