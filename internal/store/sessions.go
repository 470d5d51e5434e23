// ABOUTME: Client session persistence for the SQLite store
// ABOUTME: Holds the bearer credential, active section and single pending confirmation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession inserts a new client session. CreatedAt and UpdatedAt default to now.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.UpdatedAt.IsZero() {
		sess.UpdatedAt = sess.CreatedAt
	}

	query := `
		INSERT INTO sessions (id, token, operator, active_section, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		sess.ID,
		sess.Token,
		sess.Operator,
		sess.ActiveSection,
		formatTime(sess.CreatedAt),
		formatTime(sess.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("session %s already exists", sess.ID)
		}
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "session_id", sess.ID)
	return nil
}

// GetSession retrieves a client session by id.
// Returns ErrSessionNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, token, operator, active_section,
		       pending_id, pending_kind, pending_payload, pending_created_at,
		       created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	var (
		sess                   Session
		pendingID, pendingKind sql.NullString
		pendingCreated         sql.NullString
		pendingPayload         []byte
		createdAt, updatedAt   string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&sess.Token,
		&sess.Operator,
		&sess.ActiveSection,
		&pendingID,
		&pendingKind,
		&pendingPayload,
		&pendingCreated,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if sess.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	if pendingID.Valid {
		rec := &PendingRecord{
			ID:      pendingID.String,
			Kind:    pendingKind.String,
			Payload: pendingPayload,
		}
		if pendingCreated.Valid {
			if rec.CreatedAt, err = parseTime(pendingCreated.String); err != nil {
				return nil, fmt.Errorf("parsing pending_created_at: %w", err)
			}
		}
		sess.Pending = rec
	}

	return &sess, nil
}

// TouchSession bumps updated_at so the session is not considered idle.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string) error {
	return s.updateSession(ctx, id, `UPDATE sessions SET updated_at = ? WHERE id = ?`)
}

// SetCredential stores the bearer token and operator name for a session.
func (s *SQLiteStore) SetCredential(ctx context.Context, id, token, operator string) error {
	err := s.updateSession(ctx, id,
		`UPDATE sessions SET token = ?, operator = ?, updated_at = ? WHERE id = ?`,
		token, operator)
	if err == nil {
		s.logger.Debug("stored credential", "session_id", id, "operator", operator)
	}
	return err
}

// ClearCredential drops the token, operator and pending action. The active section survives.
func (s *SQLiteStore) ClearCredential(ctx context.Context, id string) error {
	err := s.updateSession(ctx, id, `
		UPDATE sessions
		SET token = '', operator = '',
		    pending_id = NULL, pending_kind = NULL, pending_payload = NULL, pending_created_at = NULL,
		    updated_at = ?
		WHERE id = ?`)
	if err == nil {
		s.logger.Debug("cleared credential", "session_id", id)
	}
	return err
}

// SetActiveSection records the last shell section the operator opened.
func (s *SQLiteStore) SetActiveSection(ctx context.Context, id, section string) error {
	return s.updateSession(ctx, id,
		`UPDATE sessions SET active_section = ?, updated_at = ? WHERE id = ?`,
		section)
}

// SetPendingAction stores p as the session's only pending action, replacing any previous one.
func (s *SQLiteStore) SetPendingAction(ctx context.Context, id string, p *PendingRecord) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return s.updateSession(ctx, id, `
		UPDATE sessions
		SET pending_id = ?, pending_kind = ?, pending_payload = ?, pending_created_at = ?, updated_at = ?
		WHERE id = ?`,
		p.ID, p.Kind, p.Payload, formatTime(p.CreatedAt))
}

// TakePendingAction removes and returns the pending action if its id matches actionID.
// The conditional UPDATE decides the winner when two confirms race.
func (s *SQLiteStore) TakePendingAction(ctx context.Context, id, actionID string) (*PendingRecord, error) {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Pending == nil || sess.Pending.ID != actionID {
		return nil, ErrNoPendingAction
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET pending_id = NULL, pending_kind = NULL, pending_payload = NULL, pending_created_at = NULL,
		    updated_at = ?
		WHERE id = ? AND pending_id = ?`,
		formatTime(time.Now()), id, actionID)
	if err != nil {
		return nil, fmt.Errorf("taking pending action: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNoPendingAction
	}

	return sess.Pending, nil
}

// ClearPendingAction discards any pending action.
func (s *SQLiteStore) ClearPendingAction(ctx context.Context, id string) error {
	return s.updateSession(ctx, id, `
		UPDATE sessions
		SET pending_id = NULL, pending_kind = NULL, pending_payload = NULL, pending_created_at = NULL,
		    updated_at = ?
		WHERE id = ?`)
}

// DeleteIdleSessions removes sessions whose updated_at is older than before.
func (s *SQLiteStore) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("deleting idle sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		s.logger.Info("deleted idle sessions", "count", n)
	}
	return n, nil
}

// updateSession runs an UPDATE whose last two placeholders are updated_at and id,
// preceded by args. Returns ErrSessionNotFound when no row matched.
func (s *SQLiteStore) updateSession(ctx context.Context, id, query string, args ...any) error {
	args = append(args, formatTime(time.Now()), id)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
