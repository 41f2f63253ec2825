package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// probeInterval is the delay between connection attempts while the daemon
// is still bringing its API up.
const probeInterval = 250 * time.Millisecond

// Factory creates connected clients by probing the daemon until it answers
// or the connect timeout lapses.
type Factory struct {
	httpClient *http.Client
	logger     log.Logger
}

var _ ports.APIClientFactory = (*Factory)(nil)

// NewFactory creates a factory. httpClient may be nil, in which case a
// default client is used for all created clients.
func NewFactory(httpClient *http.Client, logger log.Logger) *Factory {
	return &Factory{httpClient: httpClient, logger: logger}
}

// CreateClient probes the daemon at address and returns a connected client.
// The probe keeps retrying transport failures until connectTimeout lapses;
// exceeding the timeout surfaces as a transport failure. Cancelling ctx
// aborts the probe with ctx's error.
func (f *Factory) CreateClient(ctx context.Context, address, apiKey string, connectTimeout time.Duration) (ports.APIClient, error) {
	client := NewClient("http://"+address, apiKey, f.httpClient, f.logger)

	probeCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var lastErr error
	attempt := 0
	for {
		attempt++
		err := client.Ping(probeCtx)
		if err == nil {
			f.logger.Debug("daemon api reachable",
				log.String("address", address),
				log.Int("attempts", attempt),
			)
			return client, nil
		}
		lastErr = err

		select {
		case <-probeCtx.Done():
			// Caller cancellation is not a connect failure; report it as-is.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("daemon api did not come up on %s within %s: %w",
				address, connectTimeout, lastErr)
		case <-time.After(probeInterval):
		}
	}
}
