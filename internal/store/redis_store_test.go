package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"primis/internal/domain"
	"primis/internal/store"
)

func newRedisStorage(t *testing.T) (*store.RedisStorage, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	s := store.NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStorage_SaveLoadDelete(t *testing.T) {
	s, mr := newRedisStorage(t)
	require.NoError(t, s.Ping(context.Background()))

	_, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(domain.TokenKey, []byte("abc")))
	require.NoError(t, s.Save(domain.SnapshotKey, []byte("{}")))
	assert.True(t, mr.Exists("test:access_token"))

	got, ok, err := s.Load(domain.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, s.Delete(domain.TokenKey, domain.SnapshotKey))
	assert.False(t, mr.Exists("test:access_token"))
	assert.False(t, mr.Exists("test:auth-storage"))
}

func TestRedisStorage_DefaultPrefixAndInvalidKey(t *testing.T) {
	mr := miniredis.RunT(t)
	s := store.NewRedisStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")

	require.NoError(t, s.Save(domain.TokenKey, []byte("t")))
	assert.True(t, mr.Exists("primis:access_token"))
	assert.ErrorIs(t, s.Save("../x", nil), store.ErrInvalidKey)
	assert.NoError(t, s.Delete())
}
