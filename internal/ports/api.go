package ports

import (
	"context"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
)

// APIClient is a connected handle to the daemon's local HTTP control API.
// All methods are cancellable through their context and may fail with a
// transport or protocol error.
type APIClient interface {
	Shutdown(ctx context.Context) error
	Restart(ctx context.Context) error
	Scan(ctx context.Context, folderID, subPath string) error

	FetchVersion(ctx context.Context) (domain.VersionInfo, error)
	FetchSystemInfo(ctx context.Context) (domain.SystemInfo, error)
	FetchConfig(ctx context.Context) (domain.SyncConfig, error)
	FetchDebugFacilities(ctx context.Context) (domain.DebugFacilities, error)
	FetchIgnores(ctx context.Context, folderID string) (domain.Ignores, error)

	// FetchEvents long-polls the daemon's event stream for events with an
	// id greater than since.
	FetchEvents(ctx context.Context, since int64) ([]domain.Event, error)

	FetchConnections(ctx context.Context) (domain.ConnectionTotals, error)
}

// ClientSource yields the API client a consumer should currently talk to.
// It reports false while no session is established.
type ClientSource func() (APIClient, bool)

// APIClientFactory probes the daemon at the given address and returns a
// connected client. The probe honors connectTimeout; exceeding it is a
// transport failure. Retry policy while probing is the factory's own.
type APIClientFactory interface {
	CreateClient(ctx context.Context, address, apiKey string, connectTimeout time.Duration) (APIClient, error)
}
