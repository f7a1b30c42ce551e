// Package history reconciles bulk historical outcome queries with the live
// subscription stream into one de-duplicated, time-ordered ledger per
// account.
package history

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/sync/blockmeta"
	"github.com/minhvu/lottosync/internal/sync/metrics"
)

// Querier is the slice of the ledger boundary the engine consumes.
type Querier interface {
	HeadHeight(ctx context.Context) (uint64, error)
	DeploymentHeight(ctx context.Context) (uint64, error)
	QueryOutcomes(ctx context.Context, kind domain.OutcomeKind, account string, fromHeight, toHeight uint64) ([]domain.OutcomeEvent, error)
}

// Config holds the engine settings.
type Config struct {
	Account         string        // account whose live events are of interest
	TTL             time.Duration // staleness bound of a bulk-fetched entry
	WinRefreshDelay time.Duration // settle time before snapshot invalidation on a live win
}

// Engine merges the two observation paths of the same append-only event log.
// The bulk query and the live subscription may overlap, so every record is
// collapsed onto its stable identity. Both paths mutate the per-account
// entry under one mutex.
type Engine struct {
	ledger             Querier
	blocks             *blockmeta.Cache
	cfg                Config
	invalidateSnapshot func()
	log                *slog.Logger

	now       func() time.Time
	afterFunc func(d time.Duration, f func())

	mu      sync.Mutex
	entries map[string]*entry
	// pending collects live records that arrive while a bulk refresh for the
	// account is in flight, so the refresh's wholesale replacement cannot
	// lose them. Overlapping refreshes share one set; the refcount keeps it
	// alive until the last of them has merged it.
	pending map[string]*pendingSet
}

// pendingSet parks live records for one account while refreshes are running.
type pendingSet struct {
	refs    int
	records map[string]domain.OutcomeRecord
}

// entry is one account's cached record set. records preserves insertion
// order; index maps record id to its position.
type entry struct {
	fetchedAt time.Time
	records   []domain.OutcomeRecord
	index     map[string]int
}

// NewEngine creates an empty reconciliation engine. invalidateSnapshot is
// called, after a settle delay, when a live win lands.
func NewEngine(ledger Querier, blocks *blockmeta.Cache, cfg Config, invalidateSnapshot func()) *Engine {
	if invalidateSnapshot == nil {
		invalidateSnapshot = func() {}
	}
	return &Engine{
		ledger:             ledger,
		blocks:             blocks,
		cfg:                cfg,
		invalidateSnapshot: invalidateSnapshot,
		log:                slog.Default().With("component", "history"),
		now:                time.Now,
		afterFunc:          func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		entries:            make(map[string]*entry),
		pending:            make(map[string]*pendingSet),
	}
}

// History returns the account's outcome records, most recent first. A cached
// entry within TTL is served without I/O; otherwise both event kinds are
// queried from the contract's first active height through the current head
// and the result replaces the entry wholesale.
func (e *Engine) History(ctx context.Context, account string) ([]domain.OutcomeRecord, error) {
	key := strings.ToLower(account)

	e.mu.Lock()
	if ent, ok := e.entries[key]; ok && e.now().Sub(ent.fetchedAt) < e.cfg.TTL {
		out := ent.sorted()
		e.mu.Unlock()
		metrics.CacheHits.WithLabelValues("history").Inc()
		return out, nil
	}
	// Live events arriving from here on are parked so the replacement below
	// cannot drop them. A refresh already in flight shares the same set.
	ps := e.pending[key]
	if ps == nil {
		ps = &pendingSet{records: make(map[string]domain.OutcomeRecord)}
		e.pending[key] = ps
	}
	ps.refs++
	e.mu.Unlock()
	metrics.CacheMisses.WithLabelValues("history").Inc()

	records, err := e.fetch(ctx, account)
	if err != nil {
		e.mu.Lock()
		e.absorbPending(key, ps)
		e.releasePending(key, ps)
		e.mu.Unlock()
		// Prior entry, if any, stays servable
		return nil, domain.NewFailure(domain.FailDataFetch, "history refresh", err)
	}

	ent := newEntry(e.now(), records)

	e.mu.Lock()
	for _, rec := range ps.records {
		ent.upsert(rec)
	}
	e.releasePending(key, ps)
	e.entries[key] = ent
	out := ent.sorted()
	e.mu.Unlock()

	metrics.HistoryLength.Set(float64(len(out)))
	e.log.Debug("history refreshed", "account", account, "records", len(out))
	return out, nil
}

// fetch runs the bulk path: both kinds queried concurrently, then every
// event's block timestamp resolved concurrently through the block cache.
func (e *Engine) fetch(ctx context.Context, account string) ([]domain.OutcomeRecord, error) {
	from, err := e.ledger.DeploymentHeight(ctx)
	if err != nil {
		// Unresolvable deployment falls back to a genesis scan
		e.log.Warn("deployment height lookup failed, scanning from 0", "error", err)
		from = 0
	}
	head, err := e.ledger.HeadHeight(ctx)
	if err != nil {
		return nil, err
	}

	var wins, losses []domain.OutcomeEvent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wins, err = e.ledger.QueryOutcomes(gctx, domain.KindWin, account, from, head)
		return err
	})
	g.Go(func() error {
		var err error
		losses, err = e.ledger.QueryOutcomes(gctx, domain.KindLoss, account, from, head)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := append(wins, losses...)
	records := make([]domain.OutcomeRecord, len(events))

	g, gctx = errgroup.WithContext(ctx)
	for i, ev := range events {
		g.Go(func() error {
			info, err := e.blocks.Get(gctx, ev.BlockHeight)
			if err != nil {
				return err
			}
			records[i] = domain.RecordFromEvent(ev, info.Timestamp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		metrics.OutcomesRecorded.WithLabelValues(string(rec.Kind), "bulk").Inc()
	}
	return records, nil
}

// OnLiveOutcome folds one live subscription event into the cached record
// set. Delivery is at-least-once, so an already recorded identity is
// discarded. A win schedules snapshot invalidation after a settle delay.
func (e *Engine) OnLiveOutcome(ctx context.Context, ev domain.OutcomeEvent) error {
	if !strings.EqualFold(ev.Account, e.cfg.Account) {
		return nil
	}

	info, err := e.blocks.Get(ctx, ev.BlockHeight)
	if err != nil {
		return domain.NewFailure(domain.FailDataFetch, "live outcome timestamp", err)
	}
	rec := domain.RecordFromEvent(ev, info.Timestamp)
	key := strings.ToLower(ev.Account)

	e.mu.Lock()
	if ps, ok := e.pending[key]; ok {
		ps.records[rec.ID] = rec
	}

	ent, ok := e.entries[key]
	if !ok {
		// First contact via the live path: start an entry that is already
		// stale, so the next History call still runs the bulk scan
		ent = newEntry(time.Time{}, nil)
		e.entries[key] = ent
	}
	if _, dup := ent.index[rec.ID]; dup {
		e.mu.Unlock()
		metrics.OutcomesDeduplicated.Inc()
		e.log.Debug("duplicate live outcome discarded", "id", rec.ID)
		return nil
	}
	ent.prepend(rec)
	size := len(ent.records)
	e.mu.Unlock()

	metrics.OutcomesRecorded.WithLabelValues(string(rec.Kind), "live").Inc()
	metrics.HistoryLength.Set(float64(size))
	e.log.Info("live outcome recorded",
		"id", rec.ID, "kind", rec.Kind, "tier", rec.Tier, "payout", rec.Payout)

	if rec.Kind == domain.KindWin {
		e.afterFunc(e.cfg.WinRefreshDelay, e.invalidateSnapshot)
	}
	return nil
}

// Invalidate drops the account's cached entry wholesale; the next History
// call performs a full bulk refresh.
func (e *Engine) Invalidate(account string) {
	key := strings.ToLower(account)
	e.mu.Lock()
	delete(e.entries, key)
	e.mu.Unlock()
	e.log.Debug("history invalidated", "account", account)
}

// absorbPending folds parked live records into the existing entry after a
// failed refresh; caller holds the mutex.
func (e *Engine) absorbPending(key string, ps *pendingSet) {
	ent, ok := e.entries[key]
	if !ok {
		return
	}
	for _, rec := range ps.records {
		ent.upsert(rec)
	}
}

// releasePending drops one refresh's hold on the account's pending set;
// caller holds the mutex. Records stay parked until the last overlapping
// refresh has merged them.
func (e *Engine) releasePending(key string, ps *pendingSet) {
	ps.refs--
	if ps.refs <= 0 && e.pending[key] == ps {
		delete(e.pending, key)
	}
}

func newEntry(fetchedAt time.Time, records []domain.OutcomeRecord) *entry {
	ent := &entry{fetchedAt: fetchedAt, index: make(map[string]int)}
	for _, rec := range records {
		// A later record with a known id overwrites the earlier one; they
		// are definitionally identical
		ent.upsert(rec)
	}
	return ent
}

func (ent *entry) upsert(rec domain.OutcomeRecord) {
	if i, ok := ent.index[rec.ID]; ok {
		ent.records[i] = rec
		return
	}
	ent.index[rec.ID] = len(ent.records)
	ent.records = append(ent.records, rec)
}

func (ent *entry) prepend(rec domain.OutcomeRecord) {
	ent.records = append([]domain.OutcomeRecord{rec}, ent.records...)
	ent.index = make(map[string]int, len(ent.records))
	for i, r := range ent.records {
		ent.index[r.ID] = i
	}
}

// sorted returns a copy ordered by OccurredAt descending; equal timestamps
// keep their insertion order.
func (ent *entry) sorted() []domain.OutcomeRecord {
	out := make([]domain.OutcomeRecord, len(ent.records))
	copy(out, ent.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt > out[j].OccurredAt
	})
	return out
}
