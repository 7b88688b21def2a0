package storage

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, ttl), mr
}

func exerciseStore(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()
	key := Key("u-1", "cart")

	_, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, key, []byte(`{"products":[]}`)))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"products":[]}`, string(got))

	require.NoError(t, s.Set(ctx, key, []byte(`v2`)))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	exerciseStore(t, s)
}

func TestRedisStoreAppliesTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, Key("u-1", "wishlist"), []byte("[]")))
	assert.Equal(t, time.Hour, mr.TTL(Key("u-1", "wishlist")))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, Key("u-1", "wishlist"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func exerciseUpdate(t *testing.T, s BlobStore) {
	t.Helper()
	ctx := context.Background()
	key := Key("u-1", "counter")

	err := s.Update(ctx, key, func(cur []byte, found bool) ([]byte, bool, error) {
		assert.False(t, found)
		return nil, false, nil
	})
	require.NoError(t, err)
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	err = s.Update(ctx, key, func([]byte, bool) ([]byte, bool, error) { return []byte("x"), true, boom })
	assert.ErrorIs(t, err, boom)
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	const workers, rounds = 8, 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				err := s.Update(ctx, key, func(cur []byte, found bool) ([]byte, bool, error) {
					n := 0
					if found {
						n, _ = strconv.Atoi(string(cur))
					}
					return []byte(strconv.Itoa(n + 1)), true, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(workers*rounds), string(got))
}

func TestMemoryStoreUpdate(t *testing.T) {
	exerciseUpdate(t, NewMemory())
}

func TestRedisStoreUpdate(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	exerciseUpdate(t, s)
	assert.Equal(t, time.Hour, mr.TTL(Key("u-1", "counter")))
}
