// Package snapshot caches the aggregate contract read-model with bounded
// staleness.
package snapshot

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minhvu/lottosync/internal/core/config"
	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/sync/metrics"
)

// Reader executes a read-only contract call by method name.
type Reader interface {
	Read(ctx context.Context, method string) (*big.Int, error)
}

// Cache memoizes the contract snapshot. The cached value is replaced
// wholesale on refresh, never merged; a failed refresh leaves any prior
// value servable.
type Cache struct {
	ledger  Reader
	methods config.MethodsConfig
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	cur *domain.ContractSnapshot
}

// NewCache creates an empty snapshot cache.
func NewCache(ledger Reader, methods config.MethodsConfig, ttl time.Duration) *Cache {
	return &Cache{
		ledger:  ledger,
		methods: methods,
		ttl:     ttl,
		log:     slog.Default().With("component", "snapshot"),
		now:     time.Now,
	}
}

// Get returns the cached snapshot while it is within TTL, otherwise issues
// the four reads concurrently and stores the result. Consumers must treat
// the returned snapshot as immutable.
func (c *Cache) Get(ctx context.Context) (*domain.ContractSnapshot, error) {
	c.mu.Lock()
	if c.cur != nil && c.now().Sub(c.cur.FetchedAt) < c.ttl {
		snap := c.cur
		c.mu.Unlock()
		metrics.CacheHits.WithLabelValues("snapshot").Inc()
		return snap, nil
	}
	c.mu.Unlock()
	metrics.CacheMisses.WithLabelValues("snapshot").Inc()

	snap, err := c.fetch(ctx)
	if err != nil {
		// Any stale value stays in place for the next caller
		return nil, domain.NewFailure(domain.FailDataFetch, "snapshot refresh", err)
	}

	c.mu.Lock()
	c.cur = snap
	c.mu.Unlock()

	c.log.Debug("snapshot refreshed",
		"jackpot", snap.Jackpot, "bet_minimum", snap.BetMinimum)
	return snap, nil
}

// fetch issues the four view calls in parallel and joins them.
func (c *Cache) fetch(ctx context.Context) (*domain.ContractSnapshot, error) {
	snap := &domain.ContractSnapshot{}

	g, gctx := errgroup.WithContext(ctx)
	read := func(method string, dst **big.Int) {
		g.Go(func() error {
			v, err := c.ledger.Read(gctx, method)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}

	read(c.methods.Jackpot, &snap.Jackpot)
	read(c.methods.FirstPrizeMax, &snap.FirstPrizeMax)
	read(c.methods.SecondPrizeMax, &snap.SecondPrizeMax)
	read(c.methods.BetMinimum, &snap.BetMinimum)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.FetchedAt = c.now()
	return snap, nil
}

// Invalidate unconditionally clears the cached snapshot; the next Get
// performs a full refresh.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
	c.log.Debug("snapshot invalidated")
}
