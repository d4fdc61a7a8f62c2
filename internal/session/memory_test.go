package session

import (
	"context"
	"testing"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IssueResolveRevoke(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)

	userID, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, s.Revoke(ctx, token))
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = s.Resolve(ctx, token)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.Empty(t, s.tokens)
}
