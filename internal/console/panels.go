// ABOUTME: Helpers shared by the users, products, estimates and blog panels
// ABOUTME: Cached collection reads, per-row lifecycle actions and list view state

package console

import (
	"context"
	"net/http"
	"strings"

	"github.com/2389/lot-admin/internal/backend"
	"github.com/2389/lot-admin/internal/model"
	"github.com/2389/lot-admin/internal/panel"
)

// rowAction is a lifecycle button offered on a table row.
type rowAction struct {
	Name        string
	Label       string
	Destructive bool
}

// listState is the shared part of every table view.
type listState struct {
	Query     string
	Status    string
	LoadError string
	CSRFToken string
}

func actionsFor[S ~string](m model.Machine[S], from S) []rowAction {
	var out []rowAction
	for _, t := range m.Available(from) {
		name := string(t.Action)
		out = append(out, rowAction{
			Name:        name,
			Label:       strings.ToUpper(name[:1]) + name[1:],
			Destructive: t.Destructive,
		})
	}
	return out
}

// cached returns the cached collection, fetching it when nothing is cached.
func cached[T any](ctx context.Context, cache *panel.Cache[T], key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if items, ok := cache.Get(key); ok {
		return items, nil
	}
	return cache.Load(ctx, key, fetch)
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	for _, it := range items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func listStateFrom(r *http.Request) listState {
	return listState{
		Query:     strings.TrimSpace(r.URL.Query().Get("q")),
		Status:    strings.TrimSpace(r.URL.Query().Get("status")),
		CSRFToken: getCSRFToken(r),
	}
}

// loadFailed handles a collection fetch error. It returns the message for the
// panel's error state, or "" when the response has already been written.
func (c *Console) loadFailed(w http.ResponseWriter, r *http.Request, err error, fallback string) string {
	if c.expired(w, r, err) {
		return ""
	}
	if r.Context().Err() != nil {
		return ""
	}
	c.logger.Error("failed to load collection", "path", r.URL.Path, "error", err)
	return backend.UserMessage(err, fallback)
}
