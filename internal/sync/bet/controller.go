// Package bet drives a single bet submission through its lifecycle, from
// input validation to on-chain confirmation.
package bet

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/infra/chain"
	"github.com/minhvu/lottosync/internal/sync/metrics"
)

// Ledger is the slice of the chain boundary a submission needs.
type Ledger interface {
	Read(ctx context.Context, method string) (*big.Int, error)
	Submit(ctx context.Context, method string, args []any, payment *big.Int) (chain.PendingTx, error)
	AwaitConfirmation(ctx context.Context, tx chain.PendingTx, confirmations uint64) (*chain.Confirmation, error)
}

// Caches are the invalidation hooks fired after a confirmed bet. Refresh
// re-populates whatever the invalidations emptied; a nil Refresh is skipped.
type Caches struct {
	InvalidateSnapshot func()
	InvalidateHistory  func(account string)
	Refresh            func(ctx context.Context)
}

// Config holds the submission settings.
type Config struct {
	Account         string
	PlaceMethod     string // state-changing entry point
	MinimumMethod   string // read-only minimum payment lookup
	Confirmations   uint64
	ConfirmDeadline time.Duration
}

// Controller runs one bet at a time through the submission state machine.
// Each call to Place is an independent run; the controller itself keeps no
// cross-run state.
type Controller struct {
	ledger Ledger
	caches Caches
	cfg    Config
	log    *slog.Logger

	// onTransition, when set, observes every status change of a run.
	onTransition func(domain.BetStatus)
}

// NewController wires a submission controller over the given ledger and
// cache hooks.
func NewController(ledger Ledger, caches Caches, cfg Config) *Controller {
	if caches.InvalidateSnapshot == nil {
		caches.InvalidateSnapshot = func() {}
	}
	if caches.InvalidateHistory == nil {
		caches.InvalidateHistory = func(string) {}
	}
	return &Controller{
		ledger: ledger,
		caches: caches,
		cfg:    cfg,
		log:    slog.Default().With("component", "bet"),
	}
}

// PlaceRaw parses raw as a bet number and submits it. Anything that is not
// an integer fails validation before any I/O happens.
func (c *Controller) PlaceRaw(ctx context.Context, raw string) (*domain.BetReceipt, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.transition(domain.BetValidating)
		return c.fail(domain.BetFailed, domain.FailInvalidInput, "bet number must be an integer", err)
	}
	return c.Place(ctx, n)
}

// Place submits a bet on number and blocks until the transaction is
// confirmed, rejected, reverted, or the confirmation deadline passes. On
// confirmation the snapshot and history caches are invalidated and
// refreshed, so the next read reflects the new ledger state.
func (c *Controller) Place(ctx context.Context, number int) (*domain.BetReceipt, error) {
	c.transition(domain.BetValidating)
	if number < domain.BetNumberMin || number > domain.BetNumberMax {
		return c.fail(domain.BetFailed, domain.FailInvalidInput,
			"bet number must be between 1 and 9999", nil)
	}

	c.transition(domain.BetSubmitting)

	// The minimum is read fresh rather than from the snapshot cache: a
	// cached value may predate a contract reconfiguration
	min, err := c.ledger.Read(ctx, c.cfg.MinimumMethod)
	if err != nil {
		return c.fail(domain.BetFailed, domain.FailDataFetch, "minimum payment lookup", err)
	}
	if min.Sign() <= 0 {
		return c.fail(domain.BetFailed, domain.FailConfiguration,
			"contract minimum payment is not set", nil)
	}

	tx, err := c.ledger.Submit(ctx, c.cfg.PlaceMethod, []any{big.NewInt(int64(number))}, min)
	if err != nil {
		return c.fail(domain.BetFailed, domain.FailSubmissionRejected,
			domain.TruncateReason(err.Error()), err)
	}
	c.log.Info("bet submitted", "number", domain.PadNumber(uint64(number)), "tx", tx.Hash)

	c.transition(domain.BetAwaitingConfirmation)
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ConfirmDeadline)
	defer cancel()

	conf, err := c.ledger.AwaitConfirmation(waitCtx, tx, c.cfg.Confirmations)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// The transaction may still land later; nothing is invalidated
			// because nothing is known to have changed
			c.transition(domain.BetTimedOut)
			metrics.BetsSubmitted.WithLabelValues(string(domain.BetTimedOut)).Inc()
			c.log.Warn("bet confirmation deadline passed", "tx", tx.Hash)
			return &domain.BetReceipt{Status: domain.BetTimedOut, TxHash: tx.Hash},
				domain.NewFailure(domain.FailTimedOut, "confirmation deadline passed", err)
		}
		return c.failTx(tx.Hash, domain.FailDataFetch, "confirmation wait", err)
	}
	if conf.Status == chain.ConfirmationReverted {
		return c.failTx(tx.Hash, domain.FailReverted, "transaction reverted on chain", nil)
	}

	c.transition(domain.BetConfirmed)
	metrics.BetsSubmitted.WithLabelValues(string(domain.BetConfirmed)).Inc()
	c.log.Info("bet confirmed", "tx", tx.Hash, "height", conf.BlockHeight)

	c.caches.InvalidateSnapshot()
	c.caches.InvalidateHistory(c.cfg.Account)
	if c.caches.Refresh != nil {
		c.caches.Refresh(ctx)
	}
	return &domain.BetReceipt{Status: domain.BetConfirmed, TxHash: tx.Hash}, nil
}

func (c *Controller) transition(status domain.BetStatus) {
	c.log.Debug("bet status", "status", status)
	if c.onTransition != nil {
		c.onTransition(status)
	}
}

func (c *Controller) fail(status domain.BetStatus, kind domain.FailureKind, reason string, err error) (*domain.BetReceipt, error) {
	return c.failWith(status, "", kind, reason, err)
}

func (c *Controller) failTx(txHash string, kind domain.FailureKind, reason string, err error) (*domain.BetReceipt, error) {
	return c.failWith(domain.BetFailed, txHash, kind, reason, err)
}

func (c *Controller) failWith(status domain.BetStatus, txHash string, kind domain.FailureKind, reason string, err error) (*domain.BetReceipt, error) {
	c.transition(status)
	metrics.BetsSubmitted.WithLabelValues(string(status)).Inc()
	c.log.Warn("bet failed", "kind", kind, "reason", reason, "error", err)
	return &domain.BetReceipt{Status: status, TxHash: txHash},
		domain.NewFailure(kind, reason, err)
}
