// ABOUTME: Tests for the backend gateway client core
// ABOUTME: Covers bearer headers, 401 handling, timeouts, cancellation and envelope decoding

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lot-admin/internal/model"
)

// fakeCreds is an in-memory credential source.
type fakeCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCreds) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCreds) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func (f *fakeCreds) snapshot() (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.cleared
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) (*Client, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := &fakeCreds{token: "tok-123"}
	return New(srv.URL, 2*time.Second).For(creds), creds
}

func TestClient_AttachesBearer(t *testing.T) {
	var gotAuth string
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	_, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_NoBearerWhenSignedOut(t *testing.T) {
	var gotAuth string
	c, creds := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"token":"x"}`))
	})
	creds.token = ""

	_, err := c.Login(context.Background(), model.Credentials{Username: "a", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedClearsCredential(t *testing.T) {
	c, creds := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"jwt expired"}`))
	})

	_, err := c.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExpired))

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnauthorized, he.Status)
	assert.Equal(t, "jwt expired", he.Message)

	token, cleared := creds.snapshot()
	assert.Empty(t, token)
	assert.Equal(t, 1, cleared)
}

func TestClient_LoginUnauthorizedKeepsSession(t *testing.T) {
	c, creds := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"Invalid username or password"}`))
	})

	_, err := c.Login(context.Background(), model.Credentials{Username: "admin", Password: "wrongpass"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Equal(t, "Invalid username or password", ServerMessage(err))

	_, cleared := creds.snapshot()
	assert.Zero(t, cleared)
}

func TestClient_ServerErrorCarriesMessage(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"Price must be positive"}`))
	})

	err := c.DeleteProduct(context.Background(), "p1")
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.Status)
	assert.Equal(t, "Price must be positive", UserMessage(err, "Failed to delete product"))
}

func TestClient_NonJSONErrorUsesFallback(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	err := c.DeleteProduct(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, "Failed to delete product", UserMessage(err, "Failed to delete product"))
}

func TestClient_SuccessFalseIsError(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Account is not approved"}`))
	})

	_, err := c.Login(context.Background(), model.Credentials{Username: "a", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "Account is not approved", ServerMessage(err))
}

func TestClient_MalformedResponse(t *testing.T) {
	c, _ := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.ListProducts(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, 50*time.Millisecond).For(&fakeCreds{token: "t"})
	_, err := c.ListEstimates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
}

func TestClient_CanceledContext(t *testing.T) {
	c, creds := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListUsers(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	_, cleared := creds.snapshot()
	assert.Zero(t, cleared)
}

func TestNew_DefaultTimeout(t *testing.T) {
	c := New("http://example.com/api/v1/", 0)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, "http://example.com/api/v1", c.BaseURL())
}
