// ABOUTME: Audit log entity and store methods for confirmed console actions
// ABOUTME: Records who confirmed what against which backend resource, and how it went

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditOutcome is the result of a confirmed action.
type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "success"
	OutcomeFailure AuditOutcome = "failure"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID         string         // UUID v4
	SessionID  string         // client session that confirmed the action
	Actor      string         // operator username, "" if unknown
	Action     string         // pending action kind, e.g. "user.approve"
	TargetType string         // "user", "product", "estimate", "post", "session"
	TargetID   string         // backend id of the affected resource
	Outcome    AuditOutcome   // success or failure
	Message    string         // user-facing result message
	Timestamp  time.Time      // when it happened
	Detail     map[string]any // additional context
}

// AuditFilter specifies filtering options for listing audit entries.
type AuditFilter struct {
	Actor      *string
	TargetType *string
	TargetID   *string
	Since      *time.Time
	Limit      int // max results (default 50, max 500)
}

// AppendAuditLog appends a new entry to the audit log.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendAuditLog(ctx context.Context, e *AuditEntry) error {
	prepareAuditEntry(e)

	var detailJSON *string
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO audit_log (audit_id, session_id, actor, action, target_type, target_id, outcome, message, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.SessionID,
		e.Actor,
		e.Action,
		e.TargetType,
		e.TargetID,
		e.Outcome,
		e.Message,
		formatTime(e.Timestamp),
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	s.logger.Debug("appended audit log",
		"id", e.ID,
		"actor", e.Actor,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
		"outcome", e.Outcome,
	)
	return nil
}

func prepareAuditEntry(e *AuditEntry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Outcome == "" {
		e.Outcome = OutcomeSuccess
	}
}

// normalizeAuditLimit applies default (50) and cap (500) to audit limit.
func normalizeAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	default:
		return limit
	}
}

const auditLogQuery = `
	SELECT audit_id, session_id, actor, action, target_type, target_id, outcome, message, ts, detail_json
	FROM audit_log
	WHERE (? IS NULL OR actor = ?)
	  AND (? IS NULL OR target_type = ?)
	  AND (? IS NULL OR target_id = ?)
	  AND (? IS NULL OR ts >= ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListAuditLog returns audit entries matching the filter, newest first.
func (s *SQLiteStore) ListAuditLog(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	var since *string
	if f.Since != nil {
		str := formatTime(*f.Since)
		since = &str
	}

	rows, err := s.db.QueryContext(ctx, auditLogQuery,
		f.Actor, f.Actor,
		f.TargetType, f.TargetType,
		f.TargetID, f.TargetID,
		since, since,
		normalizeAuditLimit(f.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []AuditEntry{}
	for rows.Next() {
		var (
			e          AuditEntry
			outcome    string
			ts         string
			detailJSON *string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Actor, &e.Action, &e.TargetType, &e.TargetID,
			&outcome, &e.Message, &ts, &detailJSON); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Outcome = AuditOutcome(outcome)
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		if detailJSON != nil {
			if err := json.Unmarshal([]byte(*detailJSON), &e.Detail); err != nil {
				return nil, fmt.Errorf("unmarshaling detail: %w", err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}
	return entries, nil
}
