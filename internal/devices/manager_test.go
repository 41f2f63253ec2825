package devices

import (
	"context"
	"testing"
	"time"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

func testConfig(ids ...string) domain.SyncConfig {
	var cfg domain.SyncConfig
	for _, id := range ids {
		cfg.Devices = append(cfg.Devices, domain.DeviceConfig{ID: id, Name: "name-" + id})
	}
	return cfg
}

func TestLoad(t *testing.T) {
	m := NewManager(log.NewNoop())
	if err := m.Load(context.Background(), testConfig("B", "A"), "~"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := m.Devices()
	if len(got) != 2 {
		t.Fatalf("got %d devices, want 2", len(got))
	}
	// Sorted by name.
	if got[0].ID != "A" || got[1].ID != "B" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Connected {
		t.Error("fresh device marked connected")
	}
}

func TestSetConnected(t *testing.T) {
	m := NewManager(log.NewNoop())
	if err := m.Load(context.Background(), testConfig("A"), ""); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.SetConnected("A", true, at)

	got := m.Devices()[0]
	if !got.Connected {
		t.Error("device not marked connected")
	}
	if !got.LastSeen.Equal(at) {
		t.Errorf("LastSeen = %v, want %v", got.LastSeen, at)
	}
}

func TestSetConnected_UnknownDeviceIgnored(t *testing.T) {
	m := NewManager(log.NewNoop())
	if err := m.Load(context.Background(), testConfig("A"), ""); err != nil {
		t.Fatal(err)
	}

	m.SetConnected("GHOST", true, time.Now())

	if got := m.Devices(); len(got) != 1 || got[0].ID != "A" {
		t.Errorf("devices = %v", got)
	}
}

func TestReload_PreservesConnectivity(t *testing.T) {
	m := NewManager(log.NewNoop())
	if err := m.Load(context.Background(), testConfig("A", "B"), ""); err != nil {
		t.Fatal(err)
	}
	at := time.Now()
	m.SetConnected("A", true, at)

	// B disappears, C appears, A survives.
	if err := m.Reload(context.Background(), testConfig("A", "C")); err != nil {
		t.Fatal(err)
	}

	got := m.Devices()
	if len(got) != 2 {
		t.Fatalf("got %d devices, want 2", len(got))
	}
	byID := map[string]Device{}
	for _, d := range got {
		byID[d.ID] = d
	}
	if _, ok := byID["B"]; ok {
		t.Error("removed device still present")
	}
	if !byID["A"].Connected {
		t.Error("connectivity lost across reload")
	}
	if byID["C"].Connected {
		t.Error("new device marked connected")
	}
}
