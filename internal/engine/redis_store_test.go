package engine

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour, nil), mr
}

func TestRedisStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	sess := NewSession("sess-1", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	sess.RecordTurn(sess.StartedAt, "hello", "hi there")
	require.NoError(t, store.PutSession(ctx, sess))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sess-1", got.ID)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, sess.Engagement, got.Engagement)
}

func TestRedisStoreMissingSession(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.GetSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreSessionTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.PutSession(ctx, NewSession("sess-1", time.Now())))

	mr.FastForward(2 * time.Hour)

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got, "session should expire with its key")
}

func TestRedisStoreProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	got, err := store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	prof := NewProfile("user-1", time.Now())
	prof.Touch(time.Now())
	prof.RecordOutcome(true)
	require.NoError(t, store.PutProfile(ctx, prof))

	got, err = store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Interactions)
	assert.Equal(t, []bool{true}, got.Conversions)

	// Profiles carry no TTL.
	mr.FastForward(48 * time.Hour)
	got, err = store.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
