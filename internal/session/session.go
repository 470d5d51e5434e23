// ABOUTME: Per-browser session handle over the persistent session store
// ABOUTME: Holds the single bearer credential and brokers pending confirmations

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/2389/lot-admin/internal/store"
)

// ErrNotPending is returned when a confirmation does not match the pending action.
var ErrNotPending = errors.New("action is no longer pending")

// Handle is one client session. It satisfies the backend client's credential source.
type Handle struct {
	store  store.SessionStore
	id     string
	logger *slog.Logger
}

// NewHandle binds a handle to an existing session row.
func NewHandle(s store.SessionStore, id string) *Handle {
	return &Handle{
		store:  s,
		id:     id,
		logger: slog.Default().With("component", "session", "session_id", shortID(id)),
	}
}

// ID returns the session id.
func (h *Handle) ID() string { return h.id }

// Token returns the stored bearer credential, or "" when signed out.
func (h *Handle) Token(ctx context.Context) (string, error) {
	sess, err := h.store.GetSession(ctx, h.id)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	return sess.Token, nil
}

// SetCredential stores the credential returned by a successful sign-in.
func (h *Handle) SetCredential(ctx context.Context, token, operator string) error {
	return h.store.SetCredential(ctx, h.id, token, operator)
}

// Clear removes the credential and any pending action.
func (h *Handle) Clear(ctx context.Context) error {
	if err := h.store.ClearCredential(ctx, h.id); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	h.logger.Info("credential cleared")
	return nil
}

// SetSection records the active shell section.
func (h *Handle) SetSection(ctx context.Context, section string) error {
	return h.store.SetActiveSection(ctx, h.id, section)
}

// Propose stores a as the session's pending action, replacing any earlier one,
// and returns it with its confirmation id assigned.
func (h *Handle) Propose(ctx context.Context, a PendingAction) (PendingAction, error) {
	payload, err := a.encode()
	if err != nil {
		return PendingAction{}, err
	}
	a.ID = uuid.New().String()

	if err := h.store.SetPendingAction(ctx, h.id, &store.PendingRecord{
		ID:      a.ID,
		Kind:    string(a.Kind),
		Payload: payload,
	}); err != nil {
		return PendingAction{}, fmt.Errorf("storing pending action: %w", err)
	}
	h.logger.Debug("proposed action", "kind", a.Kind, "target_id", a.TargetID)
	return a, nil
}

// Pending returns the current pending action, if any.
func (h *Handle) Pending(ctx context.Context) (*PendingAction, error) {
	sess, err := h.store.GetSession(ctx, h.id)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess.Pending == nil {
		return nil, nil
	}
	a, err := decodePending(sess.Pending.ID, sess.Pending.Payload)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Take consumes the pending action with the given id. Only one caller ever gets a
// given action; every later or mismatched call returns ErrNotPending.
func (h *Handle) Take(ctx context.Context, actionID string) (PendingAction, error) {
	rec, err := h.store.TakePendingAction(ctx, h.id, actionID)
	if errors.Is(err, store.ErrNoPendingAction) {
		return PendingAction{}, ErrNotPending
	}
	if err != nil {
		return PendingAction{}, fmt.Errorf("taking pending action: %w", err)
	}
	return decodePending(rec.ID, rec.Payload)
}

// Cancel discards the pending action without executing it.
func (h *Handle) Cancel(ctx context.Context) error {
	return h.store.ClearPendingAction(ctx, h.id)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
