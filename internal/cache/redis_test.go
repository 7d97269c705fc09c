package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/newsroom-backend/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	err := cache.Set(ctx, "article:id:1", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get(ctx, "article:id:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "key", "value", time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate(ctx, "key")
	require.NoError(t, err)

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	err := cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out testStruct
	found, err := cache.Get(ctx, "bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestIncrViews(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	n, err := cache.IncrViews(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = cache.IncrViews(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGetViews(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cache.IncrViews(ctx, 1)
		require.NoError(t, err)
	}
	_, err := cache.IncrViews(ctx, 2)
	require.NoError(t, err)

	views, err := cache.GetViews(ctx, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), views[1])
	assert.Equal(t, int64(1), views[2])
	// Для статьи без накопленных просмотров возвращается ноль.
	assert.Equal(t, int64(0), views[3])
}

func TestGetViews_Empty(t *testing.T) {
	cache := setupTestCache(t)

	views, err := cache.GetViews(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestPopAllViews(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cache.IncrViews(ctx, 10)
		require.NoError(t, err)
	}
	_, err := cache.IncrViews(ctx, 20)
	require.NoError(t, err)

	// Посторонний ключ не должен попасть в выборку.
	require.NoError(t, cache.Set(ctx, "article:id:10", testStruct{Name: "x"}, time.Minute))

	pending, err := cache.PopAllViews(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{10: 5, 20: 1}, pending)

	// Счётчики обнулены: повторная выборка пуста.
	pending, err = cache.PopAllViews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
