package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStore_IssueAndResolve(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreFromClient(client, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, mr.Exists(defaultKeyPrefix+":"+token))
	assert.Equal(t, time.Hour, mr.TTL(defaultKeyPrefix+":"+token))

	userID, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestRedisStore_TokensAreDistinct(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStoreFromClient(client, time.Hour)
	ctx := context.Background()

	a, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)
	b, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRedisStore_Expiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := NewRedisStoreFromClient(client, time.Minute)
	ctx := context.Background()

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRedisStore_UnknownAndEmptyToken(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStoreFromClient(client, time.Hour)
	ctx := context.Background()

	_, err := s.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = s.Resolve(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRedisStore_Revoke(t *testing.T) {
	_, client := setupTestRedis(t)
	s := NewRedisStoreFromClient(client, time.Hour)
	ctx := context.Background()

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, token))

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRedisStore_BackendDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	s := NewRedisStoreFromClient(client, time.Hour)
	mr.Close()

	_, err = s.Resolve(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidToken)
}

func TestNewRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	defer s.Close()

	_, err = NewRedisStore(context.Background(), "not a url", time.Hour)
	assert.Error(t, err)
}
