package folders

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// ignoresClient serves canned ignore patterns keyed by folder ID.
type ignoresClient struct {
	ignores map[string][]string
	err     error
}

func (c *ignoresClient) FetchIgnores(_ context.Context, folderID string) (domain.Ignores, error) {
	if c.err != nil {
		return domain.Ignores{}, c.err
	}
	return domain.Ignores{Patterns: c.ignores[folderID]}, nil
}

func (c *ignoresClient) Shutdown(context.Context) error             { return nil }
func (c *ignoresClient) Restart(context.Context) error              { return nil }
func (c *ignoresClient) Scan(context.Context, string, string) error { return nil }
func (c *ignoresClient) FetchVersion(context.Context) (domain.VersionInfo, error) {
	return domain.VersionInfo{}, nil
}
func (c *ignoresClient) FetchSystemInfo(context.Context) (domain.SystemInfo, error) {
	return domain.SystemInfo{}, nil
}
func (c *ignoresClient) FetchConfig(context.Context) (domain.SyncConfig, error) {
	return domain.SyncConfig{}, nil
}
func (c *ignoresClient) FetchDebugFacilities(context.Context) (domain.DebugFacilities, error) {
	return domain.DebugFacilities{}, nil
}
func (c *ignoresClient) FetchEvents(context.Context, int64) ([]domain.Event, error) {
	return nil, nil
}
func (c *ignoresClient) FetchConnections(context.Context) (domain.ConnectionTotals, error) {
	return domain.ConnectionTotals{}, nil
}

func testConfig(ids ...string) domain.SyncConfig {
	var cfg domain.SyncConfig
	for _, id := range ids {
		cfg.Folders = append(cfg.Folders, domain.FolderConfig{
			ID:    id,
			Label: "Label " + id,
			Path:  "/home/user/" + id,
		})
	}
	return cfg
}

func TestLoad(t *testing.T) {
	m := NewManager(log.NewNoop())
	client := &ignoresClient{ignores: map[string][]string{
		"default": {"*.tmp"},
		"photos":  {"*.raw"},
	}}

	err := m.Load(context.Background(), client, testConfig("photos", "default"), "/home/user")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := m.Folders()
	if len(got) != 2 {
		t.Fatalf("got %d folders, want 2", len(got))
	}
	// Sorted by ID.
	if got[0].ID != "default" || got[1].ID != "photos" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if !reflect.DeepEqual(got[0].Ignores.Patterns, []string{"*.tmp"}) {
		t.Errorf("ignores = %v", got[0].Ignores.Patterns)
	}
	if got[0].Path != "~/default" {
		t.Errorf("path = %q, want home collapsed to tilde", got[0].Path)
	}
}

func TestLoad_IgnoresFetchFailure(t *testing.T) {
	m := NewManager(log.NewNoop())
	fetchErr := errors.New("boom")
	client := &ignoresClient{err: fetchErr}

	err := m.Load(context.Background(), client, testConfig("default"), "")
	if !errors.Is(err, fetchErr) {
		t.Errorf("Load = %v, want wrapped fetch error", err)
	}
	if got := m.Folders(); len(got) != 0 {
		t.Errorf("partial state visible after failed load: %v", got)
	}
}

func TestReload_ReplacesWholesale(t *testing.T) {
	m := NewManager(log.NewNoop())
	client := &ignoresClient{ignores: map[string][]string{}}

	if err := m.Load(context.Background(), client, testConfig("a", "b"), ""); err != nil {
		t.Fatal(err)
	}
	if err := m.Reload(context.Background(), client, testConfig("b", "c")); err != nil {
		t.Fatal(err)
	}

	got := m.Folders()
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Errorf("folders after reload = %v", got)
	}
}

func TestReloadIgnores(t *testing.T) {
	m := NewManager(log.NewNoop())
	client := &ignoresClient{ignores: map[string][]string{"default": {"*.tmp"}}}

	if err := m.Load(context.Background(), client, testConfig("default"), ""); err != nil {
		t.Fatal(err)
	}

	client.ignores["default"] = []string{"*.tmp", "*.bak"}
	if err := m.ReloadIgnores(context.Background(), client, "default"); err != nil {
		t.Fatalf("ReloadIgnores: %v", err)
	}

	f, ok := m.Folder("default")
	if !ok {
		t.Fatal("folder missing")
	}
	if !reflect.DeepEqual(f.Ignores.Patterns, []string{"*.tmp", "*.bak"}) {
		t.Errorf("ignores = %v", f.Ignores.Patterns)
	}
}

func TestReloadIgnores_UnknownFolder(t *testing.T) {
	m := NewManager(log.NewNoop())
	client := &ignoresClient{}
	if err := m.ReloadIgnores(context.Background(), client, "ghost"); err == nil {
		t.Error("ReloadIgnores accepted an unknown folder")
	}
}

func TestTildePath(t *testing.T) {
	tests := []struct {
		path, tilde, want string
	}{
		{"/home/user/Sync", "/home/user", "~/Sync"},
		{"/home/user/Sync", "/home/user/", "~/Sync"},
		{"/srv/data", "/home/user", "/srv/data"},
		{"/home/user/Sync", "", "/home/user/Sync"},
	}
	for _, tt := range tests {
		if got := tildePath(tt.path, tt.tilde); got != tt.want {
			t.Errorf("tildePath(%q, %q) = %q, want %q", tt.path, tt.tilde, got, tt.want)
		}
	}
}
