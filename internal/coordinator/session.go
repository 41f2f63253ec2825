package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// startSession runs session establishment for one process start and
// applies the failure policy: cancellation is an expected race and is
// swallowed, communication failures are wrapped and surfaced to a pending
// Start() caller, anything else propagates unchanged.
func (c *Coordinator) startSession() {
	err := c.establishSession()
	switch {
	case err == nil:
		c.deliverStartResult(nil)
	case errors.Is(err, context.Canceled):
		// The process died or was torn down mid-startup.
		c.logger.Debug("session establishment cancelled", log.Err(err))
		c.deliverStartResult(nil)
	case domain.IsCommunicationError(err):
		c.logger.Warn("session establishment failed", log.Err(err))
		c.deliverStartResult(&domain.StartupError{Cause: err})
	default:
		c.logger.Error("unexpected failure during session establishment", log.Err(err))
		c.deliverStartResult(err)
	}
}

// establishSession brings the API layer up for the daemon instance that
// just started: probe and connect, publish the client, load startup data,
// start the watchers. Cancellable at every blocking step through the
// session scope created here.
func (c *Coordinator) establishSession() error {
	sessionID := uuid.NewString()[:8]
	logger := c.logger.With(log.String("session", sessionID))

	// Fresh cancellation scope. Teardown has already cancelled and
	// discarded any prior scope; a cancelled scope is never resurrected.
	c.apiMu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	c.sessionCtx = ctx
	c.sessionCancel = cancel
	c.apiMu.Unlock()

	client, err := c.factory.CreateClient(ctx, c.cfg.Address, c.cfg.APIKey, c.cfg.ConnectTimeout)
	if err != nil {
		return err
	}

	// Publish the handle, unless teardown superseded this session while
	// the probe was in flight.
	c.apiMu.Lock()
	if c.sessionCtx != ctx {
		c.apiMu.Unlock()
		return context.Canceled
	}
	c.clientSlot.Set(client)
	c.apiMu.Unlock()

	c.SetState(domain.StateRunning)
	logger.Info("api session established", log.String("address", c.cfg.Address))

	// Version and system info; both must complete, first failure cancels
	// the other.
	var version domain.VersionInfo
	var sysInfo domain.SystemInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		version, err = client.FetchVersion(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sysInfo, err = client.FetchSystemInfo(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	parsed, err := domain.ParseSemVer(version.Version)
	if err != nil {
		logger.Warn("unparseable daemon version", log.String("version", version.Version))
	}
	snapshot := domain.SystemSnapshot{
		Version:       version.Version,
		LongVersion:   version.LongVersion,
		ParsedVersion: parsed,
		HomeTilde:     sysInfo.Tilde,
	}
	c.propMu.Lock()
	c.snapshot = snapshot
	c.propMu.Unlock()

	// Debug facilities and sync configuration, again concurrently; both
	// depend on the results above.
	var debug domain.DebugFacilities
	var syncCfg domain.SyncConfig
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		var err error
		debug, err = client.FetchDebugFacilities(g2ctx)
		return err
	})
	g2.Go(func() error {
		var err error
		syncCfg, err = client.FetchConfig(g2ctx)
		return err
	})
	if err := g2.Wait(); err != nil {
		return err
	}

	c.propMu.Lock()
	c.debugFacilities = debug
	c.propMu.Unlock()

	g3, g3ctx := errgroup.WithContext(ctx)
	g3.Go(func() error {
		return c.folders.Load(g3ctx, client, syncCfg, sysInfo.Tilde)
	})
	g3.Go(func() error {
		return c.devices.Load(g3ctx, syncCfg, sysInfo.Tilde)
	})
	if err := g3.Wait(); err != nil {
		return err
	}

	c.propMu.Lock()
	c.dataLoaded = true
	c.startedAt = time.Now()
	c.propMu.Unlock()

	listeners := c.dataListeners.snapshot()
	c.dispatcher.Post(func() {
		for _, fn := range listeners {
			fn(struct{}{})
		}
	})
	logger.Info("startup data loaded",
		log.String("version", snapshot.Version),
		log.Int("folders", len(syncCfg.Folders)),
		log.Int("devices", len(syncCfg.Devices)),
	)

	// Start the watchers only if this session's handle is still the
	// current one; a superseded session aborts silently rather than
	// starting watchers against a stale client.
	c.apiMu.Lock()
	current, ok := c.clientSlot.Get()
	if ok && current == client && c.sessionCtx == ctx {
		c.eventWatcher.Start()
		c.connectionsWatcher.Start()
	} else {
		logger.Debug("session superseded, watchers not started")
	}
	c.apiMu.Unlock()

	return nil
}

// deliverStartResult completes the pending Start() call, if any. With no
// waiter, a failure has nowhere to go and is only logged (startSession has
// already done so).
func (c *Coordinator) deliverStartResult(err error) {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.startResult == nil {
		return
	}
	c.startResult <- err
	c.startResult = nil
}

// currentSession returns the client and scope of the established session.
func (c *Coordinator) currentSession() (ports.APIClient, context.Context, bool) {
	c.apiMu.Lock()
	defer c.apiMu.Unlock()
	client, ok := c.clientSlot.Get()
	if !ok || c.sessionCtx == nil {
		return nil, nil, false
	}
	return client, c.sessionCtx, true
}
