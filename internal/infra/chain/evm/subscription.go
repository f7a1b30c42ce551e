package evm

import (
	"context"
	"fmt"
	"time"

	"github.com/minhvu/lottosync/internal/core/domain"
)

// Subscribe starts a polling loop that delivers new outcome logs for the
// configured account to handler. Each poll re-scans a small overlap window,
// so the same event can be delivered more than once; the consumer dedups by
// event identity.
func (l *Ledger) Subscribe(ctx context.Context, handler func(domain.OutcomeEvent)) error {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	if l.subCancel != nil {
		return fmt.Errorf("already subscribed")
	}

	head, err := l.HeadHeight(ctx)
	if err != nil {
		return fmt.Errorf("resolve subscription start: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	l.subCancel = cancel

	go l.pollLoop(subCtx, head, handler)
	l.log.Info("subscribed to outcome events", "from_height", head)
	return nil
}

// Unsubscribe stops the polling loop. Safe to call when not subscribed.
func (l *Ledger) Unsubscribe() {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	if l.subCancel != nil {
		l.subCancel()
		l.subCancel = nil
	}
}

func (l *Ledger) pollLoop(ctx context.Context, lastSeen uint64, handler func(domain.OutcomeEvent)) {
	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		head, err := l.HeadHeight(ctx)
		if err != nil {
			l.log.Warn("head poll failed", "error", err)
			continue
		}
		if head <= lastSeen {
			continue
		}

		from := lastSeen + 1
		if from > l.cfg.PollOverlap {
			from -= l.cfg.PollOverlap
		} else {
			from = 0
		}

		delivered := 0
		complete := true
		for _, kind := range []domain.OutcomeKind{domain.KindWin, domain.KindLoss} {
			events, err := l.QueryOutcomes(ctx, kind, l.cfg.Account, from, head)
			if err != nil {
				// Window is retried next tick so nothing is skipped
				l.log.Warn("live log query failed", "kind", kind, "error", err)
				complete = false
				continue
			}
			for _, ev := range events {
				handler(ev)
				delivered++
			}
		}

		if delivered > 0 {
			l.log.Debug("live events delivered", "count", delivered, "from", from, "to", head)
		}
		if complete {
			lastSeen = head
		}
	}
}
