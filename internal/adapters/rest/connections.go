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

// connectionsPollInterval is how often aggregate counters are refreshed.
const connectionsPollInterval = 10 * time.Second

// ConnectionsWatcher polls the daemon's aggregate connection counters and
// hands each replaced reading, with derived per-second rates, to its
// handler. Same Start/Stop contract as [EventWatcher].
type ConnectionsWatcher struct {
	source  ports.ClientSource
	handler ports.ConnectionStatsHandler
	logger  log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

var _ ports.ConnectionsWatcher = (*ConnectionsWatcher)(nil)

// NewConnectionsWatcher creates a stopped connections watcher.
func NewConnectionsWatcher(source ports.ClientSource, handler ports.ConnectionStatsHandler, logger log.Logger) *ConnectionsWatcher {
	return &ConnectionsWatcher{source: source, handler: handler, logger: logger}
}

// Start launches the polling loop. No-op if already started.
func (w *ConnectionsWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(ctx)
}

// Stop cancels the polling loop. No-op if already stopped.
func (w *ConnectionsWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
}

func (w *ConnectionsWatcher) run(ctx context.Context) {
	var prev domain.ConnectionTotals
	havePrev := false

	for {
		client, ok := w.source()
		if ok {
			totals, err := client.FetchConnections(ctx)
			switch {
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				w.logger.Debug("connections poll failed", log.Err(err))
			default:
				w.handler.OnConnectionStatsChanged(deriveStats(prev, totals, havePrev))
				prev = totals
				havePrev = true
			}
		}

		if !sleepCtx(ctx, connectionsPollInterval) {
			return
		}
	}
}

// deriveStats computes per-second rates from two consecutive readings. The
// first reading after a (re)start reports zero rates.
func deriveStats(prev, cur domain.ConnectionTotals, havePrev bool) domain.ConnectionStats {
	stats := domain.ConnectionStats{
		InBytesTotal:  cur.InBytesTotal,
		OutBytesTotal: cur.OutBytesTotal,
		At:            cur.At,
	}
	if !havePrev {
		return stats
	}
	elapsed := cur.At.Sub(prev.At).Seconds()
	if elapsed <= 0 {
		return stats
	}
	stats.InBytesPerSecond = int64(float64(cur.InBytesTotal-prev.InBytesTotal) / elapsed)
	stats.OutBytesPerSecond = int64(float64(cur.OutBytesTotal-prev.OutBytesTotal) / elapsed)
	return stats
}
