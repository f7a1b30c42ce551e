package domain

import (
	"fmt"
	"math/big"
)

// OutcomeKind classifies a bet outcome event.
type OutcomeKind string

const (
	KindWin  OutcomeKind = "win"
	KindLoss OutcomeKind = "loss"
)

// PrizeTier is the prize category of a winning bet.
type PrizeTier string

const (
	TierNone   PrizeTier = "none"
	TierFirst  PrizeTier = "first"
	TierSecond PrizeTier = "second"
)

// TierFromLevel maps the contract's numeric prize level to a tier.
func TierFromLevel(level uint64) PrizeTier {
	switch level {
	case 1:
		return TierFirst
	case 2:
		return TierSecond
	default:
		return TierNone
	}
}

// OutcomeEvent is a raw WIN/LOSS event as observed on chain, either from a
// bulk historical query or from the live subscription. It carries no
// timestamp; that is resolved from the owning block.
type OutcomeEvent struct {
	Kind        OutcomeKind
	Account     string
	BetNumber   uint64
	DrawnNumber uint64
	Level       uint64
	Payout      *big.Int
	BlockHeight uint64
	TxHash      string
}

// OutcomeRecord is one fully resolved entry of an account's outcome history.
type OutcomeRecord struct {
	ID          string
	Kind        OutcomeKind
	Account     string
	BetNumber   string
	DrawnNumber string
	Tier        PrizeTier
	Payout      *big.Int
	TxHash      string
	OccurredAt  uint64
}

// OutcomeID is the stable identity of an outcome event. A contract emits each
// outcome exactly once, but the client may observe it once via the historical
// scan and again via the subscription; records with equal IDs describe the
// same event and must collapse to one entry.
func OutcomeID(txHash string, kind OutcomeKind) string {
	return fmt.Sprintf("%s-%s", txHash, kind)
}

// PadNumber renders a lottery number as a 4-digit zero-padded string.
func PadNumber(n uint64) string {
	return fmt.Sprintf("%04d", n)
}

// RecordFromEvent builds an OutcomeRecord from a raw event and its block
// timestamp.
func RecordFromEvent(ev OutcomeEvent, timestamp uint64) OutcomeRecord {
	rec := OutcomeRecord{
		ID:          OutcomeID(ev.TxHash, ev.Kind),
		Kind:        ev.Kind,
		Account:     ev.Account,
		BetNumber:   PadNumber(ev.BetNumber),
		DrawnNumber: PadNumber(ev.DrawnNumber),
		Tier:        TierNone,
		Payout:      big.NewInt(0),
		TxHash:      ev.TxHash,
		OccurredAt:  timestamp,
	}
	if ev.Kind == KindWin {
		rec.Tier = TierFromLevel(ev.Level)
		if ev.Payout != nil {
			rec.Payout = new(big.Int).Set(ev.Payout)
		}
	}
	return rec
}
