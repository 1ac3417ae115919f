package cache

import (
	"context"

	"astrografia/src/interfaces"
	"astrografia/src/models"
)

// Tiered reads through a local cache into a shared one and backfills the
// local cache on shared hits. Writes go to both.
type Tiered struct {
	local  interfaces.IChartCache
	shared interfaces.IChartCache
}

// -----------------------------------------------------------------------------

func NewTiered(local, shared interfaces.IChartCache) *Tiered {
	return &Tiered{local: local, shared: shared}
}

// -----------------------------------------------------------------------------

func (t *Tiered) Get(ctx context.Context, key string) (*models.MRawChart, bool) {
	if chart, ok := t.local.Get(ctx, key); ok {
		return chart, true
	}
	chart, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Add(ctx, key, chart)
	}
	return chart, ok
}

// -----------------------------------------------------------------------------

func (t *Tiered) Add(ctx context.Context, key string, chart *models.MRawChart) {
	t.local.Add(ctx, key, chart)
	t.shared.Add(ctx, key, chart)
}

// -----------------------------------------------------------------------------

// Len reports the local tier only.
func (t *Tiered) Len() int {
	return t.local.Len()
}

// -----------------------------------------------------------------------------

func (t *Tiered) Purge(ctx context.Context) {
	t.local.Purge(ctx)
	t.shared.Purge(ctx)
}
