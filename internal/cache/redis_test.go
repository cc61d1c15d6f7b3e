package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/papapizza/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 15*time.Minute), mr
}

func testMenu() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Margherita", Price: decimal.NewFromInt(300)},
		{ID: "2", Name: "Pepperoni", Price: decimal.RequireFromString("450.50")},
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	data, err := json.Marshal(testMenu())
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey("papa"), string(data)))

	menu, err := cache.Get(context.Background(), "papa")
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, domain.ProductID("1"), menu[0].ID)
	assert.Equal(t, "450.5", menu[1].Price.String())
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	menu, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, menu)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("papa"), `[{"id":`))

	_, err := cache.Get(context.Background(), "papa")
	require.ErrorContains(t, err, "unmarshal menu failed")
}

func TestGet_RedisDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "papa")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), "papa", testMenu()))

	stored, err := mr.Get(cacheKey("papa"))
	require.NoError(t, err)
	var menu []domain.Product
	require.NoError(t, json.Unmarshal([]byte(stored), &menu))
	assert.Len(t, menu, 2)

	ttl := mr.TTL(cacheKey("papa"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestSet_ExpiresWithTime(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, cache.Set(context.Background(), "papa", testMenu()))

	mr.FastForward(21 * time.Minute)

	_, err := cache.Get(context.Background(), "papa")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, cache.Set(context.Background(), "papa", testMenu()))
	assert.True(t, mr.Exists(cacheKey("papa")))

	require.NoError(t, cache.Delete(context.Background(), "papa"))
	assert.False(t, mr.Exists(cacheKey("papa")))

	// deleting a missing key is fine
	assert.NoError(t, cache.Delete(context.Background(), "papa"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "menu:papa", cacheKey("papa"))
}
