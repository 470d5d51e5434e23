// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows console tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	audit    []AuditEntry
}

var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*Session),
	}
}

// CreateSession stores a copy of the session.
func (m *MockStore) CreateSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}
	m.sessions[s.ID] = copySession(s)
	return nil
}

// GetSession returns a copy of the stored session.
func (m *MockStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(s), nil
}

// TouchSession bumps UpdatedAt.
func (m *MockStore) TouchSession(ctx context.Context, id string) error {
	return m.update(id, func(*Session) {})
}

// SetCredential stores the token and operator.
func (m *MockStore) SetCredential(ctx context.Context, id, token, operator string) error {
	return m.update(id, func(s *Session) {
		s.Token = token
		s.Operator = operator
	})
}

// ClearCredential drops the token, operator and pending action.
func (m *MockStore) ClearCredential(ctx context.Context, id string) error {
	return m.update(id, func(s *Session) {
		s.Token = ""
		s.Operator = ""
		s.Pending = nil
	})
}

// SetActiveSection records the section.
func (m *MockStore) SetActiveSection(ctx context.Context, id, section string) error {
	return m.update(id, func(s *Session) { s.ActiveSection = section })
}

// SetPendingAction replaces the pending action.
func (m *MockStore) SetPendingAction(ctx context.Context, id string, p *PendingRecord) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return m.update(id, func(s *Session) { s.Pending = copyPending(p) })
}

// TakePendingAction removes and returns the pending action when the id matches.
func (m *MockStore) TakePendingAction(ctx context.Context, id, actionID string) (*PendingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Pending == nil || s.Pending.ID != actionID {
		return nil, ErrNoPendingAction
	}
	p := s.Pending
	s.Pending = nil
	s.UpdatedAt = time.Now().UTC()
	return p, nil
}

// ClearPendingAction discards the pending action.
func (m *MockStore) ClearPendingAction(ctx context.Context, id string) error {
	return m.update(id, func(s *Session) { s.Pending = nil })
}

// DeleteIdleSessions removes sessions idle since before.
func (m *MockStore) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// AppendAuditLog records an entry.
func (m *MockStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prepareAuditEntry(e)
	m.audit = append(m.audit, *e)
	return nil
}

// ListAuditLog returns matching entries newest first.
func (m *MockStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []AuditEntry{}
	for _, e := range m.audit {
		if f.Actor != nil && e.Actor != *f.Actor {
			continue
		}
		if f.TargetType != nil && e.TargetType != *f.TargetType {
			continue
		}
		if f.TargetID != nil && e.TargetID != *f.TargetID {
			continue
		}
		if f.Since != nil && e.Timestamp.Before(*f.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if limit := normalizeAuditLimit(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (m *MockStore) Close() error { return nil }

func (m *MockStore) update(id string, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	fn(s)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func copySession(s *Session) *Session {
	c := *s
	c.Pending = copyPending(s.Pending)
	return &c
}

func copyPending(p *PendingRecord) *PendingRecord {
	if p == nil {
		return nil
	}
	c := *p
	c.Payload = append([]byte(nil), p.Payload...)
	return &c
}
