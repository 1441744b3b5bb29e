package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(size int) (*CacheManager, *time.Time) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := New(Options{MaxSize: size, TTL: time.Minute})
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestCacheGetSet(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(10)
	defer m.Close()

	_, err := m.Get(ctx, "ai", "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "ai", "prompt", "answer"))
	got, err := m.Get(ctx, "ai", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	_, err = m.Get(ctx, "robots", "prompt")
	assert.Error(t, err, "namespaces do not collide")

	*clock = clock.Add(2 * time.Minute)
	_, err = m.Get(ctx, "ai", "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss), "expired")

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(3), stats["misses"])
	assert.Equal(t, 0, stats["size"])
}

func TestCacheEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(2)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "ai", "a", "1"))
	*clock = clock.Add(time.Second)
	require.NoError(t, m.Set(ctx, "ai", "b", "2"))
	_, err := m.Get(ctx, "ai", "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "ai", "c", "3"))
	_, err = m.Get(ctx, "ai", "b")
	assert.Error(t, err, "b was never read and is evicted")
	_, err = m.Get(ctx, "ai", "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "ai", "c")
	assert.NoError(t, err)
}

func TestNilManagerIsSafe(t *testing.T) {
	var m *CacheManager
	_, err := m.Get(context.Background(), "ai", "x")
	assert.Error(t, err)
	assert.NoError(t, m.Set(context.Background(), "ai", "x", "y"))
	assert.Equal(t, false, m.GetStats()["enabled"])
	assert.NoError(t, m.Close())

	cfg := &config.Config{}
	assert.Nil(t, NewManager(cfg))
}

func TestRedisDisabled(t *testing.T) {
	svc, err := NewRedisService(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, svc)

	_, err = svc.Get(context.Background(), "p")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.NoError(t, svc.Set(context.Background(), "p", "v"))
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("ai", "hello"), Key("ai", "hello"))
	assert.NotEqual(t, Key("ai", "hello"), Key("ai", "hello "))
	assert.Contains(t, Key("robots", "x"), "robots:")
}
