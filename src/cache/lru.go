package cache

import (
	"context"

	"astrografia/src/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 1024

// LRU is a bounded in-process chart cache; the least recently used entry is
// evicted once Size is reached.
type LRU struct {
	entries *lru.Cache[string, *models.MRawChart]
}

// -----------------------------------------------------------------------------

func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, *models.MRawChart](size)
	if err != nil {
		return nil, err
	}
	return &LRU{entries: entries}, nil
}

// -----------------------------------------------------------------------------

func (c *LRU) Get(_ context.Context, key string) (*models.MRawChart, bool) {
	return c.entries.Get(key)
}

// -----------------------------------------------------------------------------

func (c *LRU) Add(_ context.Context, key string, chart *models.MRawChart) {
	c.entries.Add(key, chart)
}

// -----------------------------------------------------------------------------

func (c *LRU) Len() int {
	return c.entries.Len()
}

// -----------------------------------------------------------------------------

func (c *LRU) Purge(_ context.Context) {
	c.entries.Purge()
}
