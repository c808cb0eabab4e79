package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, 10*time.Minute), mr
}

func sampleProducts() []domain.Product {
	rating := 4.5
	return []domain.Product{
		{ID: 1, Name: "Air Runner", Category: "running", Price: decimal.RequireFromString("7895.00"), Rating: &rating},
		{ID: 2, Name: "Slip On", Category: "casual", Price: decimal.NewFromInt(3500)},
	}
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleProducts()))

	got, err := c.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Air Runner", got[0].Name)
	assert.True(t, decimal.NewFromInt(7895).Equal(got[0].Price))
	assert.Equal(t, 4.5, *got[0].Rating)
	assert.Nil(t, got[1].Rating)

	ttl := mr.TTL(catalogKey)
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.LessOrEqual(t, ttl, 12*time.Minute)
}

func TestGet_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background())

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(catalogKey, "not json"))

	_, err := c.Get(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, sampleProducts()))

	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(catalogKey))
	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
