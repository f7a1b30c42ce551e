// Package chain defines the ledger-level execution boundary.
package chain

import (
	"context"
	"math/big"

	"github.com/minhvu/lottosync/internal/core/domain"
)

// PendingTx is the handle of a submitted but not yet confirmed transaction.
type PendingTx struct {
	Hash string
}

// ConfirmationStatus is the ledger's verdict on a submitted transaction.
type ConfirmationStatus string

const (
	ConfirmationSuccess  ConfirmationStatus = "success"
	ConfirmationReverted ConfirmationStatus = "reverted"
)

// Confirmation is the ledger's acknowledgment that a transaction is final to
// the requested depth.
type Confirmation struct {
	Status      ConfirmationStatus
	TxHash      string
	BlockHeight uint64
}

// Ledger is the read/write/subscribe boundary between the sync layer and the
// chain. The interface is what the sync components consume; chain-specific
// packages implement it.
type Ledger interface {
	// Read executes a read-only contract call by method name and returns its
	// numeric result. Idempotent, no gas.
	Read(ctx context.Context, method string) (*big.Int, error)

	// Submit sends a state-changing contract call carrying payment. It
	// returns once the transaction is accepted into the mempool; it may fail
	// before broadcast.
	Submit(ctx context.Context, method string, args []any, payment *big.Int) (PendingTx, error)

	// AwaitConfirmation blocks until the transaction is final to the given
	// depth, or ctx expires. Expiry stops the wait only; the broadcast
	// cannot be recalled.
	AwaitConfirmation(ctx context.Context, tx PendingTx, confirmations uint64) (*Confirmation, error)

	// BlockTimestamp fetches a block's unix timestamp by height.
	BlockTimestamp(ctx context.Context, height uint64) (uint64, error)

	// HeadHeight returns the current chain head height.
	HeadHeight(ctx context.Context) (uint64, error)

	// DeploymentHeight returns the height at which the observed contract
	// became active, or 0 if the deployment transaction cannot be resolved.
	DeploymentHeight(ctx context.Context) (uint64, error)

	// QueryOutcomes returns all finalized outcome events of the given kind
	// for account in [fromHeight, toHeight]. One-shot, finite.
	QueryOutcomes(ctx context.Context, kind domain.OutcomeKind, account string, fromHeight, toHeight uint64) ([]domain.OutcomeEvent, error)

	// Subscribe starts live outcome delivery to handler. Delivery is
	// at-least-once per finalized matching event; consumers must dedup.
	Subscribe(ctx context.Context, handler func(domain.OutcomeEvent)) error

	// Unsubscribe stops live delivery.
	Unsubscribe()
}
