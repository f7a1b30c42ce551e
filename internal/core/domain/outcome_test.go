package domain

import (
	"math/big"
	"testing"
)

func TestOutcomeID(t *testing.T) {
	winID := OutcomeID("0xabc", KindWin)
	lossID := OutcomeID("0xabc", KindLoss)

	if winID != "0xabc-win" {
		t.Errorf("expected 0xabc-win, got %s", winID)
	}
	if lossID != "0xabc-loss" {
		t.Errorf("expected 0xabc-loss, got %s", lossID)
	}
	// Same tx, different kind, must not collide
	if winID == lossID {
		t.Error("win and loss IDs for the same tx must differ")
	}
}

func TestPadNumber(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0000"},
		{7, "0007"},
		{42, "0042"},
		{4242, "4242"},
		{9999, "9999"},
	}
	for _, c := range cases {
		if got := PadNumber(c.in); got != c.want {
			t.Errorf("PadNumber(%d) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestRecordFromEvent_Win(t *testing.T) {
	ev := OutcomeEvent{
		Kind:        KindWin,
		Account:     "0xacc",
		BetNumber:   4242,
		DrawnNumber: 4242,
		Level:       1,
		Payout:      big.NewInt(50000),
		BlockHeight: 100,
		TxHash:      "0xdead",
	}

	rec := RecordFromEvent(ev, 1700000000)

	if rec.ID != "0xdead-win" {
		t.Errorf("unexpected id %s", rec.ID)
	}
	if rec.Tier != TierFirst {
		t.Errorf("expected first tier, got %s", rec.Tier)
	}
	if rec.Payout.Cmp(big.NewInt(50000)) != 0 {
		t.Errorf("expected payout 50000, got %s", rec.Payout)
	}
	if rec.OccurredAt != 1700000000 {
		t.Errorf("expected occurredAt from block timestamp, got %d", rec.OccurredAt)
	}
	if rec.DrawnNumber != "4242" {
		t.Errorf("expected drawn number 4242, got %s", rec.DrawnNumber)
	}

	// Payout must be a copy, not an alias of the event's value
	ev.Payout.SetInt64(1)
	if rec.Payout.Cmp(big.NewInt(50000)) != 0 {
		t.Error("record payout aliases the event payout")
	}
}

func TestRecordFromEvent_Loss(t *testing.T) {
	ev := OutcomeEvent{
		Kind:        KindLoss,
		Account:     "0xacc",
		BetNumber:   17,
		DrawnNumber: 3581,
		BlockHeight: 101,
		TxHash:      "0xbeef",
	}

	rec := RecordFromEvent(ev, 1700000100)

	if rec.Tier != TierNone {
		t.Errorf("loss must carry no tier, got %s", rec.Tier)
	}
	if rec.Payout.Sign() != 0 {
		t.Errorf("loss must carry zero payout, got %s", rec.Payout)
	}
	if rec.BetNumber != "0017" {
		t.Errorf("expected padded bet number 0017, got %s", rec.BetNumber)
	}
}

func TestTierFromLevel(t *testing.T) {
	if TierFromLevel(1) != TierFirst {
		t.Error("level 1 should map to first tier")
	}
	if TierFromLevel(2) != TierSecond {
		t.Error("level 2 should map to second tier")
	}
	if TierFromLevel(0) != TierNone {
		t.Error("level 0 should map to no tier")
	}
	if TierFromLevel(99) != TierNone {
		t.Error("unknown level should map to no tier")
	}
}
