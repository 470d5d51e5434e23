// ABOUTME: Tests for the server orchestrator: health endpoint, run/shutdown lifecycle and session sweeping
// ABOUTME: Uses the in-memory mock store and a loopback listener

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lot-admin/internal/config"
	"github.com/2389/lot-admin/internal/store"
)

// testConfig creates a minimal config with a free loopback port.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	return &config.Config{
		Server:   config.ServerConfig{HTTPAddr: addr},
		Backend:  config.BackendConfig{BaseURL: "http://127.0.0.1:1/api/v1", Timeout: time.Second},
		Database: config.DatabaseConfig{Path: ":memory:"},
		Session:  config.SessionConfig{IdleTTL: time.Hour},
	}
}

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewWithStore(testConfig(t), store.NewMockStore(), testLogger())
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestConsoleRoutesMounted(t *testing.T) {
	srv := NewWithStore(testConfig(t), store.NewMockStore(), testLogger())
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sign in")
}

func TestRunAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	srv := NewWithStore(cfg, store.NewMockStore(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Server.HTTPAddr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("server did not shut down in time")
	}
}

func TestRun_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig(t)
	cfg.Server.HTTPAddr = ln.Addr().String()
	srv := NewWithStore(cfg, store.NewMockStore(), testLogger())
	defer srv.Shutdown(context.Background())

	err = srv.Run(t.Context())
	assert.ErrorContains(t, err, "listening on HTTP address")
}

func TestDeleteIdleSessions(t *testing.T) {
	s := store.NewMockStore()
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, &store.Session{ID: "stale", UpdatedAt: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, s.CreateSession(ctx, &store.Session{ID: "fresh"}))

	srv := NewWithStore(testConfig(t), s, testLogger())
	defer srv.Shutdown(context.Background())

	srv.deleteIdleSessions(ctx)

	_, err := s.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	_, err = s.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Setenv("TS_AUTHKEY", "")
	_, err := resolveTailscaleAuthKey("")
	assert.Error(t, err)

	key, err := resolveTailscaleAuthKey("tskey-configured")
	require.NoError(t, err)
	assert.Equal(t, "tskey-configured", key)

	t.Setenv("TS_AUTHKEY", "tskey-env")
	key, err = resolveTailscaleAuthKey("")
	require.NoError(t, err)
	assert.Equal(t, "tskey-env", key)
}

func TestResolveTailscaleStateDir(t *testing.T) {
	dir, err := resolveTailscaleStateDir("/var/lib/lot-admin")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lot-admin", dir)

	dir, err = resolveTailscaleStateDir("")
	require.NoError(t, err)
	assert.Contains(t, dir, "lot-admin")
}
