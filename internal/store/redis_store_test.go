package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danaam/danaam-go/domain"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "danaam:session"), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, fullSession()))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullSession(), loaded)
}

func TestRedisStoreAbsentKeyIsEmptySession(t *testing.T) {
	s, _ := newRedisStore(t)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.Complete())
}

func TestRedisStoreSaveReplacesStaleFields(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fullSession()))

	// An admin session has no display fields; the supplier's leftovers must
	// not bleed through.
	admin := &domain.Session{
		UserID:       "admin-1",
		Role:         domain.RoleAdmin,
		UserClass:    domain.ClassAdmin,
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
	}
	require.NoError(t, s.Save(ctx, admin))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, loaded)
}

func TestRedisStoreClear(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fullSession()))

	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("danaam:session"))
	require.NoError(t, s.Clear(ctx))
}
