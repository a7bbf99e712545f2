package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blackwell-systems/jobskills/internal/store"
)

// DefaultSize is the LRU capacity used when none is configured.
const DefaultSize = 256

// LRU is an in-process Cache bounded by entry count.
type LRU struct {
	entries *lru.Cache[string, []store.Row]
}

// NewLRU creates an LRU cache holding up to size entries.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, []store.Row](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &LRU{entries: entries}, nil
}

func (c *LRU) Get(_ context.Context, key string) ([]store.Row, bool) {
	return c.entries.Get(key)
}

func (c *LRU) Set(_ context.Context, key string, rows []store.Row) {
	c.entries.Add(key, rows)
}

func (c *LRU) Purge(context.Context) {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	return c.entries.Len()
}
