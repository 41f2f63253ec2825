// Package devices keeps per-device bookkeeping for the current API
// session: the peer list from the daemon's configuration plus observed
// connectivity.
package devices

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// Device is one peer as known to synctrayd.
type Device struct {
	ID        string
	Name      string
	Connected bool
	LastSeen  time.Time
}

// Manager implements ports.DeviceManager.
type Manager struct {
	logger log.Logger

	mu      sync.RWMutex
	devices map[string]Device
}

var _ ports.DeviceManager = (*Manager)(nil)

// NewManager creates an empty manager.
func NewManager(logger log.Logger) *Manager {
	return &Manager{
		logger:  logger,
		devices: make(map[string]Device),
	}
}

// Load performs first-time construction from a fresh config. homeTilde is
// unused on the device side but kept for interface symmetry with folders.
func (m *Manager) Load(ctx context.Context, cfg domain.SyncConfig, homeTilde string) error {
	return m.Reload(ctx, cfg)
}

// Reload replaces the device map from cfg, preserving connectivity state
// for devices that survive the reconciliation.
func (m *Manager) Reload(_ context.Context, cfg domain.SyncConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]Device, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		d := Device{ID: dc.ID, Name: dc.Name}
		if prev, ok := m.devices[dc.ID]; ok {
			d.Connected = prev.Connected
			d.LastSeen = prev.LastSeen
		}
		next[dc.ID] = d
	}
	m.devices = next

	m.logger.Debug("devices reconciled", log.Int("count", len(next)))
	return nil
}

// SetConnected records a connectivity observation for one device. Unknown
// devices are ignored; the reload path picks them up once they appear in
// the configuration.
func (m *Manager) SetConnected(deviceID string, connected bool, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return
	}
	d.Connected = connected
	d.LastSeen = at
	m.devices[deviceID] = d
}

// Devices returns the current devices sorted by name then ID.
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
