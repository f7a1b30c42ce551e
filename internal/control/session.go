// Package control assembles the sync components into a running session and
// manages their lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minhvu/lottosync/internal/core/config"
	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/infra/chain"
	"github.com/minhvu/lottosync/internal/infra/chain/evm"
	"github.com/minhvu/lottosync/internal/infra/rpc"
	"github.com/minhvu/lottosync/internal/infra/rpc/provider"
	"github.com/minhvu/lottosync/internal/sync/bet"
	"github.com/minhvu/lottosync/internal/sync/blockmeta"
	"github.com/minhvu/lottosync/internal/sync/history"
	"github.com/minhvu/lottosync/internal/sync/snapshot"
)

// Session owns one ledger connection and the caches built over it. All
// state is process-lifetime: a new session starts cold.
type Session struct {
	ID string

	cfg      config.AppConfig
	client   *rpc.Client
	ledger   chain.Ledger
	blocks   *blockmeta.Cache
	snapshot *snapshot.Cache
	history  *history.Engine
	bets     *bet.Controller
	server   *Server
	log      *slog.Logger

	subCancel context.CancelFunc
}

// NewSession wires a session from configuration. Nothing touches the network
// until Start.
func NewSession(cfg config.AppConfig) (*Session, error) {
	providers := make([]provider.Provider, 0, len(cfg.Chain.Providers))
	for _, p := range cfg.Chain.Providers {
		providers = append(providers, provider.NewHTTPProvider(p.Name, p.URL, p.Timeout))
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no rpc providers configured")
	}
	client := rpc.NewClient(providers)

	ledger := evm.NewLedger(client, evm.Config{
		Contract:        cfg.Chain.ContractAddress,
		Account:         cfg.Chain.Account,
		DeploymentTx:    cfg.Chain.DeploymentTx,
		WinEvent:        cfg.Chain.Events.Win,
		LossEvent:       cfg.Chain.Events.Loss,
		GasLimit:        cfg.Chain.GasLimit,
		ReceiptInterval: cfg.Chain.ReceiptInterval,
		PollInterval:    cfg.Chain.PollInterval,
		PollOverlap:     cfg.Chain.PollOverlap,
	})

	s := &Session{
		ID:     uuid.NewString(),
		cfg:    cfg,
		client: client,
		ledger: ledger,
		log:    slog.Default().With("component", "session"),
	}

	s.blocks = blockmeta.NewCache(ledger)
	s.snapshot = snapshot.NewCache(ledger, cfg.Chain.Methods, cfg.Cache.SnapshotTTL)
	s.history = history.NewEngine(ledger, s.blocks, history.Config{
		Account:         cfg.Chain.Account,
		TTL:             cfg.Cache.HistoryTTL,
		WinRefreshDelay: cfg.Bet.WinRefreshDelay,
	}, s.snapshot.Invalidate)
	s.bets = bet.NewController(ledger, bet.Caches{
		InvalidateSnapshot: s.snapshot.Invalidate,
		InvalidateHistory:  s.history.Invalidate,
		Refresh: func(context.Context) {
			// Rewarm in the background; the bet caller gets its receipt
			// without waiting on the refetch
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				s.warm(ctx)
			}()
		},
	}, bet.Config{
		Account:         cfg.Chain.Account,
		PlaceMethod:     cfg.Chain.Methods.PlaceBet,
		MinimumMethod:   cfg.Chain.Methods.BetMinimum,
		Confirmations:   cfg.Chain.Confirmations,
		ConfirmDeadline: cfg.Bet.ConfirmDeadline,
	})
	s.server = NewServer(s, cfg.Server.Port)
	return s, nil
}

// Start opens the live subscription and the HTTP server, then warms both
// caches. Warm-up failures are logged, not fatal: reads recover on demand.
func (s *Session) Start(ctx context.Context) error {
	s.log.Info("session starting", "id", s.ID, "contract", s.cfg.Chain.ContractAddress)

	subCtx, cancel := context.WithCancel(context.Background())
	s.subCancel = cancel

	// Live events funnel through one channel so the engine has a single
	// consumption point regardless of how the ledger delivers them
	events := make(chan domain.OutcomeEvent, 64)
	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case ev := <-events:
				hctx, hcancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := s.history.OnLiveOutcome(hctx, ev); err != nil {
					s.log.Warn("live outcome dropped", "tx", ev.TxHash, "error", err)
				}
				hcancel()
			}
		}
	}()

	if err := s.ledger.Subscribe(subCtx, func(ev domain.OutcomeEvent) {
		select {
		case events <- ev:
		case <-subCtx.Done():
		}
	}); err != nil {
		cancel()
		return fmt.Errorf("subscribe: %w", err)
	}

	go func() {
		if err := s.server.Start(); err != nil {
			s.log.Warn("http server stopped", "error", err)
		}
	}()

	// Rewarm on the snapshot TTL cadence so a long-running session keeps
	// serving fresh values even with no reads arriving
	go func() {
		ticker := time.NewTicker(s.cfg.Cache.SnapshotTTL)
		defer ticker.Stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				wctx, wcancel := context.WithTimeout(context.Background(), time.Minute)
				s.warm(wctx)
				wcancel()
			}
		}
	}()

	s.warm(ctx)
	s.log.Info("session started", "id", s.ID)
	return nil
}

// warm populates the snapshot and history caches.
func (s *Session) warm(ctx context.Context) {
	if _, err := s.snapshot.Get(ctx); err != nil {
		s.log.Warn("snapshot warm-up failed", "error", err)
	}
	if _, err := s.history.History(ctx, s.cfg.Chain.Account); err != nil {
		s.log.Warn("history warm-up failed", "error", err)
	}
}

// Stop tears the session down: subscription first so no event arrives into a
// closing session, then the HTTP server, then the RPC providers.
func (s *Session) Stop(ctx context.Context) {
	s.log.Info("session stopping", "id", s.ID)
	if s.subCancel != nil {
		s.subCancel()
	}
	s.ledger.Unsubscribe()
	if err := s.server.Stop(ctx); err != nil {
		s.log.Warn("http server shutdown", "error", err)
	}
	s.client.Close()
	s.log.Info("session stopped", "id", s.ID)
}

// Snapshot returns the contract snapshot, cached within its TTL.
func (s *Session) Snapshot(ctx context.Context) (*domain.ContractSnapshot, error) {
	return s.snapshot.Get(ctx)
}

// History returns the account's outcome records, most recent first.
func (s *Session) History(ctx context.Context) ([]domain.OutcomeRecord, error) {
	return s.history.History(ctx, s.cfg.Chain.Account)
}

// PlaceBet validates, submits, and confirms one bet.
func (s *Session) PlaceBet(ctx context.Context, number int) (*domain.BetReceipt, error) {
	return s.bets.Place(ctx, number)
}

// PlaceBetRaw parses raw input before submitting.
func (s *Session) PlaceBetRaw(ctx context.Context, raw string) (*domain.BetReceipt, error) {
	return s.bets.PlaceRaw(ctx, raw)
}

// InvalidateSnapshot drops the cached snapshot so the next read refetches.
func (s *Session) InvalidateSnapshot() {
	s.snapshot.Invalidate()
}

// ProviderHealth reports the per-provider RPC health.
func (s *Session) ProviderHealth() map[string]provider.HealthStatus {
	out := make(map[string]provider.HealthStatus)
	for _, p := range s.client.Providers() {
		out[p.Name()] = p.Health()
	}
	return out
}
