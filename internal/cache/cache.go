// Package cache memoizes summary reads keyed by relation and filters.
//
// Entries are never expired on data change; callers Purge after every
// re-materialization.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blackwell-systems/jobskills/internal/store"
)

// Cache stores relation reads.
type Cache interface {
	Get(ctx context.Context, key string) ([]store.Row, bool)
	Set(ctx context.Context, key string, rows []store.Row)
	Purge(ctx context.Context)
}

// Key returns a stable key for a read of relation under filters. Filter
// order does not matter.
func Key(relation string, filters store.Filters) string {
	if len(filters) == 0 {
		return relation
	}
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	b.WriteString(relation)
	for _, col := range cols {
		fmt.Fprintf(&b, "|%s=%T:%v", col, filters[col], filters[col])
	}
	return b.String()
}

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]store.Row, bool) { return nil, false }
func (Nop) Set(context.Context, string, []store.Row)        {}
func (Nop) Purge(context.Context)                           {}
