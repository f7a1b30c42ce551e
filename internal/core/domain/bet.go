package domain

// BetStatus tracks a bet submission through its confirmation protocol.
type BetStatus string

const (
	BetIdle                 BetStatus = "idle"
	BetValidating           BetStatus = "validating"
	BetSubmitting           BetStatus = "submitting"
	BetAwaitingConfirmation BetStatus = "awaiting_confirmation"
	BetConfirmed            BetStatus = "confirmed"
	BetFailed               BetStatus = "failed"
	BetTimedOut             BetStatus = "timed_out"
)

// Terminal reports whether the status is a terminal state.
func (s BetStatus) Terminal() bool {
	switch s {
	case BetConfirmed, BetFailed, BetTimedOut:
		return true
	}
	return false
}

// BetReceipt is the terminal result of one bet submission. TxHash is set
// whenever the transaction reached the ledger, including the timed-out case
// where the outcome is unknown.
type BetReceipt struct {
	Status BetStatus
	TxHash string
}

// Bet number bounds accepted by the contract.
const (
	BetNumberMin = 1
	BetNumberMax = 9999
)
