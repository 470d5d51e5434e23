// ABOUTME: Store interface and data types for lot-admin persistence
// ABOUTME: Defines client sessions, pending confirmations and audit entries

package store

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a client session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoPendingAction is returned when no pending confirmation matches the requested id.
var ErrNoPendingAction = errors.New("no pending action")

// Session is one browser's console state.
type Session struct {
	ID            string
	Token         string // backend bearer credential; empty when signed out
	Operator      string // username of the signed-in operator
	ActiveSection string
	Pending       *PendingRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// PendingRecord is an encoded confirmation awaiting the operator's decision.
// Kind is stored alongside the payload so it can be inspected without decoding.
type PendingRecord struct {
	ID        string
	Kind      string
	Payload   []byte
	CreatedAt time.Time
}

// SessionStore persists client sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	// TouchSession marks the session as used without changing it.
	TouchSession(ctx context.Context, id string) error
	// SetCredential stores the bearer token and operator name.
	SetCredential(ctx context.Context, id, token, operator string) error
	// ClearCredential removes the token, operator and any pending action. The section is kept.
	ClearCredential(ctx context.Context, id string) error
	SetActiveSection(ctx context.Context, id, section string) error
	// SetPendingAction replaces any existing pending action.
	SetPendingAction(ctx context.Context, id string, p *PendingRecord) error
	// TakePendingAction removes and returns the pending action only when its id matches.
	// Exactly one concurrent caller can take a given action.
	TakePendingAction(ctx context.Context, id, actionID string) (*PendingRecord, error)
	ClearPendingAction(ctx context.Context, id string) error
	// DeleteIdleSessions removes sessions not updated since before.
	DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error)
}

// AuditStore persists the console audit log.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, e *AuditEntry) error
	ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}

// Store is everything the console persists.
type Store interface {
	SessionStore
	AuditStore
	Close() error
}
