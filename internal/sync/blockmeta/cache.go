// Package blockmeta memoizes block height to timestamp lookups.
package blockmeta

import (
	"context"
	"fmt"
	"strconv"

	gocache "github.com/patrickmn/go-cache"

	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/sync/metrics"
)

// TimestampSource resolves a block's timestamp by height.
type TimestampSource interface {
	BlockTimestamp(ctx context.Context, height uint64) (uint64, error)
}

// Cache memoizes BlockInfo per height for the lifetime of the session.
// Block timestamps are immutable once mined, so entries never expire and are
// never evicted; the working set is bounded by the number of distinct blocks
// holding the account's events.
type Cache struct {
	source TimestampSource
	store  *gocache.Cache
}

// NewCache creates an empty block metadata cache over the given source.
func NewCache(source TimestampSource) *Cache {
	// No expiration and no janitor: entries live as long as the session
	return &Cache{
		source: source,
		store:  gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the block info for height, fetching it on first use.
func (c *Cache) Get(ctx context.Context, height uint64) (domain.BlockInfo, error) {
	key := strconv.FormatUint(height, 10)

	if v, ok := c.store.Get(key); ok {
		metrics.CacheHits.WithLabelValues("blockmeta").Inc()
		return v.(domain.BlockInfo), nil
	}
	metrics.CacheMisses.WithLabelValues("blockmeta").Inc()

	ts, err := c.source.BlockTimestamp(ctx, height)
	if err != nil {
		return domain.BlockInfo{}, fmt.Errorf("block %d timestamp: %w", height, err)
	}

	info := domain.BlockInfo{Height: height, Timestamp: ts}
	c.store.Set(key, info, gocache.NoExpiration)
	return info, nil
}

// Len returns the number of cached blocks.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}
