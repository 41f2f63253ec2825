package rest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// eventErrorDelay is how long the event watcher backs off after a failed
// poll before trying again.
const eventErrorDelay = time.Second

// EventWatcher follows the daemon's event stream with a long-poll loop and
// translates the entries it understands into handler calls.
//
// Start and Stop are idempotent and return without waiting for the loop
// goroutine, so they are safe to call while holding the lock that guards
// the watcher itself.
type EventWatcher struct {
	source  ports.ClientSource
	handler ports.EventHandler
	logger  log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ ports.EventWatcher = (*EventWatcher)(nil)

// NewEventWatcher creates a stopped event watcher.
func NewEventWatcher(source ports.ClientSource, handler ports.EventHandler, logger log.Logger) *EventWatcher {
	return &EventWatcher{source: source, handler: handler, logger: logger}
}

// Start launches the polling loop. No-op if already started.
func (w *EventWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
}

// Stop cancels the polling loop. No-op if already stopped. The loop
// goroutine observes cancellation at its next suspension point.
func (w *EventWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
}

func (w *EventWatcher) run(ctx context.Context) {
	// since == 0 asks for the daemon's buffered backlog; the first batch
	// only seeds the cursor so stale events are not replayed as fresh.
	var since int64
	primed := false

	for {
		if ctx.Err() != nil {
			return
		}

		client, ok := w.source()
		if !ok {
			// Session torn down under us; wait for Stop or a new session.
			if !sleepCtx(ctx, eventErrorDelay) {
				return
			}
			continue
		}

		events, err := client.FetchEvents(ctx, since)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Debug("event poll failed", log.Err(err))
			if !sleepCtx(ctx, eventErrorDelay) {
				return
			}
			continue
		}
		if len(events) == 0 {
			continue
		}

		if primed && events[0].ID != since+1 {
			// Gap in the stream: the daemon's buffer wrapped past our
			// cursor and we cannot know what we missed.
			w.logger.Warn("event stream skipped events",
				log.Int64("expected", since+1),
				log.Int64("got", events[0].ID),
			)
			w.handler.OnEventsSkipped()
		}

		for _, ev := range events {
			if primed {
				w.dispatch(ev)
			}
			since = ev.ID
		}
		primed = true
	}
}

func (w *EventWatcher) dispatch(ev domain.Event) {
	switch ev.Type {
	case domain.EventConfigSaved:
		w.handler.OnConfigSaved()
	case domain.EventDeviceConnected:
		if id, ok := ev.Data["id"].(string); ok {
			w.handler.OnDeviceConnected(id)
		}
	case domain.EventDeviceDisconnected:
		if id, ok := ev.Data["id"].(string); ok {
			w.handler.OnDeviceDisconnected(id)
		}
	}
}

// sleepCtx sleeps for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
