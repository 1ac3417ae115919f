package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chart(source string) *models.MRawChart {
	return &models.MRawChart{Source: source, Cusps: []float64{1}}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(2)
	require.NoError(t, err)

	c.Add(ctx, "a", chart("a"))
	c.Add(ctx, "b", chart("b"))
	_, _ = c.Get(ctx, "a")
	c.Add(ctx, "c", chart("c"))

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.Equal(t, 2, c.Len())

	c.Purge(ctx)
	assert.Equal(t, 0, c.Len())
}

func TestLRUDefaultSize(t *testing.T) {
	c, err := NewLRU(0)
	require.NoError(t, err)
	for i := 0; i < DefaultSize+10; i++ {
		c.Add(context.Background(), fmt.Sprint(i), chart("x"))
	}
	assert.Equal(t, DefaultSize, c.Len())
}

func TestLRUConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRU(64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", g, i%16)
				c.Add(ctx, key, chart(key))
				_, _ = c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}

func TestTieredBackfillsLocal(t *testing.T) {
	ctx := context.Background()
	local, _ := NewLRU(4)
	shared, _ := NewLRU(4)
	tiered := NewTiered(local, shared)

	shared.Add(ctx, "k", chart("shared"))
	got, ok := tiered.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "shared", got.Source)

	_, inLocal := local.Get(ctx, "k")
	assert.True(t, inLocal)

	tiered.Add(ctx, "n", chart("new"))
	_, inShared := shared.Get(ctx, "n")
	assert.True(t, inShared)

	tiered.Purge(ctx)
	assert.Equal(t, 0, local.Len())
	assert.Equal(t, 0, shared.Len())
}

func TestFromConfigFallsBackWhenRedisUnreachable(t *testing.T) {
	c, err := NewFromConfig(models.MCacheConfig{
		Size:         8,
		RedisEnabled: true,
		RedisAddr:    "127.0.0.1:1",
	}, logger.NewNop())
	require.NoError(t, err)
	_, isLRU := c.(*LRU)
	assert.True(t, isLRU)
}

func TestRedisKeyIsStable(t *testing.T) {
	assert.Equal(t, redisKey("a|b"), redisKey("a|b"))
	assert.NotEqual(t, redisKey("a|b"), redisKey("a|c"))
	assert.Contains(t, redisKey("x"), keyPrefix)
}
