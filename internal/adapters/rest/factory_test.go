package rest

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luvmdy/SyncTrayzor/internal/domain"
	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

func TestFactory_CreateClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpointPing, r.URL.Path)
		w.Write([]byte(`{"ping":"pong"}`))
	}))
	defer srv.Close()

	f := NewFactory(nil, log.NewNoop())
	client, err := f.CreateClient(context.Background(), addrOf(srv), testAPIKey, time.Second)
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestFactory_RetriesUntilUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "starting up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ping":"pong"}`))
	}))
	defer srv.Close()

	f := NewFactory(nil, log.NewNoop())
	client, err := f.CreateClient(context.Background(), addrOf(srv), testAPIKey, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestFactory_TimeoutIsCommunicationError(t *testing.T) {
	// A listener that is closed immediately yields connection refused on a
	// port nothing else is likely to grab back.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	f := NewFactory(nil, log.NewNoop())
	_, err = f.CreateClient(context.Background(), addr, testAPIKey, 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, domain.IsCommunicationError(err), "error %v should classify as communication failure", err)
	assert.Contains(t, err.Error(), "did not come up")
}

func TestFactory_CallerCancellationReportedAsIs(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := NewFactory(nil, log.NewNoop())
	_, err = f.CreateClient(ctx, addr, testAPIKey, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func addrOf(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}
