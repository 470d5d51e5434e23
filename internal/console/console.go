// ABOUTME: Server-rendered admin console: routes, client session cookie and CSRF handling
// ABOUTME: Every mutating request goes through a pending action that must be confirmed

package console

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/2389/lot-admin/internal/backend"
	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
	"github.com/2389/lot-admin/internal/session"
	"github.com/2389/lot-admin/internal/store"
)

const (
	// ClientCookieName identifies the browser's session row.
	ClientCookieName = "lot_admin_client"
	// CSRFCookieName holds the double-submit token.
	CSRFCookieName = "lot_admin_csrf"

	cacheMaxSessions = 256
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	csrfContextKey    contextKey = "csrf"
)

// Config holds console behaviour knobs.
type Config struct {
	MinPasswordLength int
	MaxImageBytes     int64
	CacheTTL          time.Duration
	// SessionTTL is the client cookie lifetime.
	SessionTTL time.Duration
	// CookieSecure forces the Secure cookie flag.
	CookieSecure bool
	// MutationTimeout bounds confirmed mutations, which are detached from the request.
	MutationTimeout time.Duration
	// Issuer is printed on exported estimates.
	Issuer string
}

// Console serves the admin UI.
type Console struct {
	store   store.Store
	backend *backend.Client
	config  Config
	logger  *slog.Logger

	users     *panel.Cache[model.User]
	products  *panel.Cache[model.Product]
	estimates *panel.Cache[model.Estimate]
	posts     *panel.Cache[model.Post]

	// logins tracks sessions with a sign-in in flight.
	logins sync.Map

	now func() time.Time
}

// New creates a console over the session store and backend client.
func New(s store.Store, client *backend.Client, cfg Config) *Console {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 5 << 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = backend.DefaultTimeout
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "Lot Admin"
	}

	return &Console{
		store:     s,
		backend:   client,
		config:    cfg,
		logger:    slog.Default().With("component", "console"),
		users:     panel.New[model.User](cfg.CacheTTL, cacheMaxSessions),
		products:  panel.New[model.Product](cfg.CacheTTL, cacheMaxSessions),
		estimates: panel.New[model.Estimate](cfg.CacheTTL, cacheMaxSessions),
		posts:     panel.New[model.Post](cfg.CacheTTL, cacheMaxSessions),
		now:       time.Now,
	}
}

// Close stops the panel caches.
func (c *Console) Close() {
	c.users.Close()
	c.products.Close()
	c.estimates.Close()
	c.posts.Close()
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /static/", c.handleStatic)

	mux.HandleFunc("GET /login", c.withSession(c.handleLoginPage))
	mux.HandleFunc("POST /login", c.withSession(c.handleLogin))

	mux.HandleFunc("GET /{$}", c.requireAuth(c.handleHome))
	mux.HandleFunc("POST /logout", c.requireAuth(c.handleLogout))

	mux.HandleFunc("GET /dashboard", c.requireAuth(c.handleDashboard))
	mux.HandleFunc("GET /dashboard/stats", c.requireAuth(c.handleDashboardStats))

	mux.HandleFunc("GET /users", c.requireAuth(c.handleUsersPage))
	mux.HandleFunc("GET /users/rows", c.requireAuth(c.handleUsersRows))
	mux.HandleFunc("POST /users/{id}/{action}", c.requireAuth(c.handleUserAction))

	mux.HandleFunc("GET /products", c.requireAuth(c.handleProductsPage))
	mux.HandleFunc("GET /products/rows", c.requireAuth(c.handleProductsRows))
	mux.HandleFunc("GET /products/new", c.requireAuth(c.handleProductNew))
	mux.HandleFunc("POST /products", c.requireAuth(c.handleProductCreate))
	mux.HandleFunc("GET /products/{id}/edit", c.requireAuth(c.handleProductEdit))
	mux.HandleFunc("POST /products/{id}", c.requireAuth(c.handleProductUpdate))
	mux.HandleFunc("POST /products/{id}/delete", c.requireAuth(c.handleProductDelete))

	mux.HandleFunc("GET /estimates", c.requireAuth(c.handleEstimatesPage))
	mux.HandleFunc("GET /estimates/rows", c.requireAuth(c.handleEstimatesRows))
	mux.HandleFunc("GET /estimates/{id}", c.requireAuth(c.handleEstimateDetail))
	mux.HandleFunc("GET /estimates/{id}/export.xlsx", c.requireAuth(c.handleEstimateSpreadsheet))
	mux.HandleFunc("GET /estimates/{id}/export.pdf", c.requireAuth(c.handleEstimatePDF))
	mux.HandleFunc("POST /estimates/{id}/{action}", c.requireAuth(c.handleEstimateAction))

	mux.HandleFunc("GET /blog", c.requireAuth(c.handleBlogPage))
	mux.HandleFunc("GET /blog/rows", c.requireAuth(c.handleBlogRows))
	mux.HandleFunc("GET /blog/new", c.requireAuth(c.handlePostNew))
	mux.HandleFunc("POST /blog", c.requireAuth(c.handlePostCreate))
	mux.HandleFunc("GET /blog/{id}", c.requireAuth(c.handlePostDetail))
	mux.HandleFunc("GET /blog/{id}/edit", c.requireAuth(c.handlePostEdit))
	mux.HandleFunc("POST /blog/{id}", c.requireAuth(c.handlePostUpdate))
	mux.HandleFunc("POST /blog/{id}/{action}", c.requireAuth(c.handlePostAction))

	mux.HandleFunc("POST /confirm/{id}", c.requireAuth(c.handleConfirm))
	mux.HandleFunc("POST /cancel", c.requireAuth(c.handleCancel))

	c.logger.Info("console routes registered")
}

// withSession loads the client session for the request, creating one when the
// browser has no valid cookie, and ensures a CSRF token is set.
func (c *Console) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := c.loadSession(w, r)
		if err != nil {
			c.logger.Error("failed to load session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		r, _ = c.ensureCSRFToken(w, r)
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// requireAuth wraps a handler to require a signed-in session
func (c *Console) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return c.withSession(func(w http.ResponseWriter, r *http.Request) {
		if !getSession(r).Authenticated() {
			c.redirect(w, r, "/login")
			return
		}
		next(w, r)
	})
}

func (c *Console) loadSession(w http.ResponseWriter, r *http.Request) (*store.Session, error) {
	if cookie, err := r.Cookie(ClientCookieName); err == nil && cookie.Value != "" {
		sess, err := c.store.GetSession(r.Context(), cookie.Value)
		switch {
		case err == nil:
			if err := c.store.TouchSession(r.Context(), sess.ID); err != nil {
				c.logger.Warn("failed to touch session", "error", err)
			}
			return sess, nil
		case !errors.Is(err, store.ErrSessionNotFound):
			return nil, err
		}
	}

	id, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}
	sess := &store.Session{ID: id, ActiveSection: SectionDashboard}
	if err := c.store.CreateSession(r.Context(), sess); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func getSession(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(sessionContextKey).(*store.Session)
	return sess
}

func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// handle returns the session handle for the request.
func (c *Console) handle(r *http.Request) *session.Handle {
	return session.NewHandle(c.store, getSession(r).ID)
}

// api returns a backend client authenticated as the request's session.
func (c *Console) api(r *http.Request) *backend.Client {
	return c.backend.For(c.handle(r))
}

func (c *Console) secure(r *http.Request) bool {
	return c.config.CookieSecure || r.TLS != nil
}

// ensureCSRFToken ensures a CSRF token exists, creating one if needed.
// Returns the updated request (with token in context) and the token.
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		return r, ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the form field or X-CSRF-Token header against the cookie.
// Call after the form has been parsed.
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.FormValue("csrf_token")
	if token == "" {
		token = r.Header.Get("X-CSRF-Token")
	}
	return token != "" && token == cookie.Value
}

// checkForm parses the form (multipart when maxMemory > 0) and validates CSRF.
// It writes the error response itself and returns false on failure.
func (c *Console) checkForm(w http.ResponseWriter, r *http.Request, maxMemory int64) bool {
	var err error
	if maxMemory > 0 {
		err = r.ParseMultipartForm(maxMemory)
		if errors.Is(err, http.ErrNotMultipart) {
			err = r.ParseForm()
		}
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request, please reload and try again", http.StatusForbidden)
		return false
	}
	return true
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends the browser to path, using HX-Redirect for htmx requests so the
// whole page navigates instead of swapping a fragment.
func (c *Console) redirect(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// expired reports whether err means the backend rejected the credential. When it
// does, the session's caches are dropped and the browser is sent to the login page.
func (c *Console) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrSessionExpired) {
		return false
	}
	c.dropCaches(getSession(r).ID)
	c.logger.Info("backend session expired", "session_id", shortID(getSession(r).ID))
	c.setFlash(w, r, "error", "Your session has expired. Please sign in again.")
	c.redirect(w, r, "/login")
	return true
}

func (c *Console) dropCaches(sessionID string) {
	c.users.Invalidate(sessionID)
	c.products.Invalidate(productsKey(sessionID, model.ProductActive))
	c.products.Invalidate(productsKey(sessionID, model.ProductInactive))
	c.estimates.Invalidate(sessionID)
	c.posts.Invalidate(sessionID)
}

// generateSecureToken generates a cryptographically secure random hex token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
