// ABOUTME: Tests for audit log store operations
// ABOUTME: Covers Append and List with filtering for the audit_log table

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_Append(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		entry := &AuditEntry{
			SessionID:  "sess-1",
			Actor:      "admin",
			Action:     "user.approve",
			TargetType: "user",
			TargetID:   "u-1",
			Detail:     map[string]any{"to": "approved"},
		}
		require.NoError(t, s.AppendAuditLog(context.Background(), entry))

		assert.NotEmpty(t, entry.ID)
		assert.False(t, entry.Timestamp.IsZero())
		assert.Equal(t, OutcomeSuccess, entry.Outcome)
	})
}

func TestAuditStore_ListNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Now().UTC().Add(-time.Hour)
		for i, action := range []string{"user.approve", "product.delete", "estimate.send"} {
			require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
				SessionID:  "sess-1",
				Actor:      "admin",
				Action:     action,
				TargetType: "x",
				TargetID:   "t",
				Timestamp:  base.Add(time.Duration(i) * time.Millisecond),
			}))
		}

		entries, err := s.ListAuditLog(ctx, AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "estimate.send", entries[0].Action)
		assert.Equal(t, "user.approve", entries[2].Action)
	})
}

func TestAuditStore_ListFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{SessionID: "s", Actor: "alice", Action: "user.approve", TargetType: "user", TargetID: "u1"}))
		require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{SessionID: "s", Actor: "bob", Action: "product.delete", TargetType: "product", TargetID: "p1", Outcome: OutcomeFailure, Message: "Failed to delete product"}))

		actor := "bob"
		entries, err := s.ListAuditLog(ctx, AuditFilter{Actor: &actor})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, OutcomeFailure, entries[0].Outcome)
		assert.Equal(t, "Failed to delete product", entries[0].Message)

		target := "user"
		entries, err = s.ListAuditLog(ctx, AuditFilter{TargetType: &target})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "alice", entries[0].Actor)

		entries, err = s.ListAuditLog(ctx, AuditFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestAuditStore_DetailRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendAuditLog(ctx, &AuditEntry{
		SessionID: "s", Action: "estimate.send", TargetType: "estimate", TargetID: "e1",
		Detail: map[string]any{"from": "new", "to": "sent"},
	}))

	entries, err := s.ListAuditLog(ctx, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sent", entries[0].Detail["to"])
}
