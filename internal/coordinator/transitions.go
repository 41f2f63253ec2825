package coordinator

import (
	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// SetState requests a transition to newState. Invalid transitions are
// silently ignored:
//
//   - any state to itself is a no-op and fires no notification
//   - Stopped to Running is rejected: the process can die and a stale
//     "started" signal from the event layer can still arrive afterwards,
//     and accepting it would fake a running daemon
//   - Stopped to Stopping is rejected (preserved behavior; the originating
//     race has never been pinned down)
//
// An accepted transition out of Running, or Starting to Stopped, tears
// down the API layer before the state-changed notification is dispatched.
func (c *Coordinator) SetState(newState domain.RunState) {
	c.stateMu.Lock()
	oldState := c.state

	if oldState == newState {
		c.stateMu.Unlock()
		return
	}
	if oldState == domain.StateStopped &&
		(newState == domain.StateRunning || newState == domain.StateStopping) {
		c.stateMu.Unlock()
		c.logger.Debug("rejected transition from Stopped",
			log.Stringer("to", newState),
		)
		return
	}

	c.state = newState
	teardown := oldState == domain.StateRunning ||
		(oldState == domain.StateStarting && newState == domain.StateStopped)
	c.stateMu.Unlock()

	// The state lock is released before the API-layer lock is taken; the
	// reverse order would deadlock against session establishment.
	if teardown {
		c.teardownAPI()
	}

	c.logger.Info("state changed",
		log.Stringer("from", oldState),
		log.Stringer("to", newState),
	)

	change := StateChange{From: oldState, To: newState}
	listeners := c.stateListeners.snapshot()
	c.dispatcher.Post(func() {
		for _, fn := range listeners {
			fn(change)
		}
	})
}

// teardownAPI aborts the API layer: it cancels the session scope, clears
// the client slot, and stops both watchers, all under the API-layer lock
// so no new session can be constructed concurrently.
func (c *Coordinator) teardownAPI() {
	c.apiMu.Lock()
	defer c.apiMu.Unlock()

	if c.sessionCancel != nil {
		c.sessionCancel()
		c.sessionCancel = nil
		c.sessionCtx = nil
	}
	c.clientSlot.Clear()
	c.eventWatcher.Stop()
	c.connectionsWatcher.Stop()

	c.propMu.Lock()
	c.dataLoaded = false
	c.propMu.Unlock()

	c.logger.Debug("api layer torn down")
}
