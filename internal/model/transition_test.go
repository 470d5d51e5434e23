// ABOUTME: Tests for the per-entity lifecycle tables
// ABOUTME: Verifies allowed moves, refused moves and destructive marking

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	tests := []struct {
		from   UserStatus
		action Action
		want   UserStatus
		ok     bool
	}{
		{UserPending, ActionApprove, UserApproved, true},
		{UserPending, ActionReject, UserRejected, true},
		{UserApproved, ActionDisable, UserDisabled, true},
		{UserDisabled, ActionEnable, UserApproved, true},
		{UserApproved, ActionApprove, "", false},
		{UserRejected, ActionApprove, "", false},
		{UserDisabled, ActionReject, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			got, err := UserLifecycle.Next(tt.from, tt.action)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimateLifecycleIsForwardOnly(t *testing.T) {
	next, err := EstimateLifecycle.Next(EstimateNew, ActionSend)
	require.NoError(t, err)
	assert.Equal(t, EstimateSent, next)

	next, err = EstimateLifecycle.Next(next, ActionClose)
	require.NoError(t, err)
	assert.Equal(t, EstimateClosed, next)

	assert.False(t, EstimateLifecycle.Allowed(EstimateNew, ActionClose), "new cannot skip to closed")
	assert.False(t, EstimateLifecycle.Allowed(EstimateClosed, ActionSend), "closed is terminal")
	assert.Empty(t, EstimateLifecycle.Available(EstimateClosed))
}

func TestPostLifecycleToggles(t *testing.T) {
	next, err := PostLifecycle.Next(PostDraft, ActionPublish)
	require.NoError(t, err)
	assert.Equal(t, PostPublished, next)

	next, err = PostLifecycle.Next(next, ActionUnpublish)
	require.NoError(t, err)
	assert.Equal(t, PostDraft, next)

	assert.True(t, PostLifecycle.Allowed(PostPublished, ActionDelete))
	assert.True(t, PostLifecycle.Destructive(ActionDelete))
	assert.False(t, PostLifecycle.Destructive(ActionPublish))
}

func TestAvailableKeepsTableOrder(t *testing.T) {
	avail := UserLifecycle.Available(UserPending)
	require.Len(t, avail, 2)
	assert.Equal(t, ActionApprove, avail[0].Action)
	assert.Equal(t, ActionReject, avail[1].Action)
	assert.True(t, avail[1].Destructive)
}

func TestProductDeleteIsDestructive(t *testing.T) {
	assert.True(t, ProductLifecycle.Allowed(ProductActive, ActionDelete))
	assert.False(t, ProductLifecycle.Allowed(ProductInactive, ActionDelete))
	assert.True(t, ProductLifecycle.Destructive(ActionDelete))
}
