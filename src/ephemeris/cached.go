package ephemeris

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"astrografia/src/interfaces"
	"astrografia/src/models"
)

// Cached memoizes an adapter by the full request tuple. The underlying
// computation is deterministic so hits return the same chart as a recompute.
type Cached struct {
	inner  interfaces.IEphemeris
	cache  interfaces.IChartCache
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats is a point-in-time view of the memoization counters.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// -----------------------------------------------------------------------------

func NewCached(inner interfaces.IEphemeris, cache interfaces.IChartCache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

// -----------------------------------------------------------------------------

func (c *Cached) Name() string {
	return c.inner.Name()
}

// -----------------------------------------------------------------------------

func (c *Cached) ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error) {
	key := Key(birth)
	if raw, ok := c.cache.Get(ctx, key); ok {
		c.hits.Add(1)
		return clone(raw), nil
	}
	c.misses.Add(1)

	raw, err := c.inner.ComputeRaw(ctx, birth)
	if err != nil {
		return nil, err
	}
	c.cache.Add(ctx, key, clone(raw))
	return raw, nil
}

// -----------------------------------------------------------------------------

func (c *Cached) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.cache.Len(),
	}
}

// -----------------------------------------------------------------------------

// Reset empties the cache and zeroes the counters.
func (c *Cached) Reset(ctx context.Context) {
	c.cache.Purge(ctx)
	c.hits.Store(0)
	c.misses.Store(0)
}

// -----------------------------------------------------------------------------

// clone deep-copies a chart so callers never share cached memory.
func clone(raw *models.MRawChart) *models.MRawChart {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return raw
	}
	var out models.MRawChart
	if err := json.Unmarshal(data, &out); err != nil {
		return raw
	}
	return &out
}
