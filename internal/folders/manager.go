// Package folders keeps per-folder bookkeeping for the current API
// session: the folder list from the daemon's configuration plus each
// folder's ignore patterns.
package folders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/internal/ports"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// Folder is one synced folder as known to synctrayd.
type Folder struct {
	ID      string
	Label   string
	Path    string
	Devices []string
	Ignores domain.Ignores
}

// Manager implements ports.FolderManager. The API client is supplied per
// call, so the manager always talks to the current session and holds no
// client state of its own.
type Manager struct {
	logger log.Logger

	mu        sync.RWMutex
	folders   map[string]Folder
	homeTilde string
}

var _ ports.FolderManager = (*Manager)(nil)

// NewManager creates an empty manager.
func NewManager(logger log.Logger) *Manager {
	return &Manager{
		logger:  logger,
		folders: make(map[string]Folder),
	}
}

// Load performs first-time construction from a fresh config, fetching each
// folder's ignore patterns. homeTilde collapses the daemon home prefix in
// folder paths for display.
func (m *Manager) Load(ctx context.Context, client ports.APIClient, cfg domain.SyncConfig, homeTilde string) error {
	m.mu.Lock()
	m.homeTilde = homeTilde
	m.mu.Unlock()
	return m.rebuild(ctx, client, cfg)
}

// Reload reconciles in place against a re-fetched config. Semantics match
// Load except the previously captured home prefix is kept.
func (m *Manager) Reload(ctx context.Context, client ports.APIClient, cfg domain.SyncConfig) error {
	return m.rebuild(ctx, client, cfg)
}

// rebuild replaces the folder map wholesale from cfg. Ignore patterns are
// fetched concurrently, one request per folder.
func (m *Manager) rebuild(ctx context.Context, client ports.APIClient, cfg domain.SyncConfig) error {
	m.mu.RLock()
	tilde := m.homeTilde
	m.mu.RUnlock()

	next := make(map[string]Folder, len(cfg.Folders))
	var nextMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, fc := range cfg.Folders {
		fc := fc
		g.Go(func() error {
			ignores, err := client.FetchIgnores(gctx, fc.ID)
			if err != nil {
				return fmt.Errorf("fetch ignores for %s: %w", fc.ID, err)
			}
			nextMu.Lock()
			next[fc.ID] = Folder{
				ID:      fc.ID,
				Label:   fc.Label,
				Path:    tildePath(fc.Path, tilde),
				Devices: fc.Devices,
				Ignores: ignores,
			}
			nextMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.mu.Lock()
	m.folders = next
	m.mu.Unlock()

	m.logger.Debug("folders reconciled", log.Int("count", len(next)))
	return nil
}

// ReloadIgnores re-fetches one folder's ignore patterns in place.
func (m *Manager) ReloadIgnores(ctx context.Context, client ports.APIClient, folderID string) error {
	ignores, err := client.FetchIgnores(ctx, folderID)
	if err != nil {
		return fmt.Errorf("fetch ignores for %s: %w", folderID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	folder, ok := m.folders[folderID]
	if !ok {
		return fmt.Errorf("unknown folder %q", folderID)
	}
	folder.Ignores = ignores
	m.folders[folderID] = folder
	return nil
}

// Folders returns the current folders sorted by ID.
func (m *Manager) Folders() []Folder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Folder returns one folder by ID.
func (m *Manager) Folder(id string) (Folder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.folders[id]
	return f, ok
}

// tildePath collapses the daemon home prefix to "~".
func tildePath(path, tilde string) string {
	if tilde == "" {
		return path
	}
	expanded := strings.TrimSuffix(tilde, "/")
	if strings.HasPrefix(path, expanded) {
		return "~" + strings.TrimPrefix(path, expanded)
	}
	return path
}
