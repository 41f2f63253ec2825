package ports

import (
	"context"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
)

// FolderManager keeps the folder-side bookkeeping for the current session.
// The client argument is always the session's current API client; managers
// hold no client state of their own.
type FolderManager interface {
	// Load performs first-time construction from a freshly fetched config.
	Load(ctx context.Context, client APIClient, cfg domain.SyncConfig, homeTilde string) error

	// Reload reconciles in place against a re-fetched config, replacing
	// whatever incremental tracking had accumulated.
	Reload(ctx context.Context, client APIClient, cfg domain.SyncConfig) error

	// ReloadIgnores re-fetches one folder's ignore patterns.
	ReloadIgnores(ctx context.Context, client APIClient, folderID string) error
}

// DeviceManager keeps the device-side bookkeeping for the current session.
type DeviceManager interface {
	Load(ctx context.Context, cfg domain.SyncConfig, homeTilde string) error
	Reload(ctx context.Context, cfg domain.SyncConfig) error

	// SetConnected records a connectivity observation for one device.
	SetConnected(deviceID string, connected bool, at time.Time)
}
