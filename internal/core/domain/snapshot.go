package domain

import (
	"math/big"
	"time"
)

// ContractSnapshot is the aggregate read-only state of the lottery contract.
// All amounts are in the smallest currency unit. A snapshot is created whole
// on a successful refresh and never partially updated; consumers must treat
// it as immutable.
type ContractSnapshot struct {
	Jackpot        *big.Int
	FirstPrizeMax  *big.Int
	SecondPrizeMax *big.Int
	BetMinimum     *big.Int
	FetchedAt      time.Time
}

// Age returns how long ago the snapshot was fetched.
func (s *ContractSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
