package evm

import (
	"math/big"
	"testing"
)

func TestSelector(t *testing.T) {
	// Canonical reference: transfer(address,uint256) -> 0xa9059cbb
	if got := selector("transfer(address,uint256)"); got != "0xa9059cbb" {
		t.Errorf("unexpected selector %s", got)
	}
}

func TestEventTopic(t *testing.T) {
	// Canonical reference: Transfer(address,address,uint256)
	want := "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	if got := eventTopic("Transfer(address,address,uint256)"); got != want {
		t.Errorf("unexpected topic %s", got)
	}
}

func TestEncodeUint256(t *testing.T) {
	got := encodeUint256(big.NewInt(4242))
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
	if got != "0000000000000000000000000000000000000000000000000000000000001092" {
		t.Errorf("unexpected encoding %s", got)
	}
}

func TestAddressTopicRoundTrip(t *testing.T) {
	addr := "0x841d24704f307ac7c337bc03e190769390fb41ef"
	topic := addressTopic(addr)
	if len(topic) != 66 {
		t.Fatalf("expected 32-byte topic, got %d chars", len(topic))
	}
	if got := topicAddress(topic); got != addr {
		t.Errorf("round trip mismatch: %s", got)
	}
}

func TestParseHexBig(t *testing.T) {
	v, err := parseHexBig("0x10")
	if err != nil || v.Int64() != 16 {
		t.Errorf("expected 16, got %v (%v)", v, err)
	}

	// Empty quantity decodes to zero
	v, err = parseHexBig("0x")
	if err != nil || v.Sign() != 0 {
		t.Errorf("expected 0 for empty quantity, got %v (%v)", v, err)
	}

	if _, err := parseHexBig("0xzz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestParseHexUint64_Overflow(t *testing.T) {
	if _, err := parseHexUint64("0xffffffffffffffffff"); err == nil {
		t.Error("expected overflow error")
	}
}

func TestDataWords(t *testing.T) {
	data := "0x" +
		"0000000000000000000000000000000000000000000000000000000000001092" +
		"0000000000000000000000000000000000000000000000000000000000000001"
	words := dataWords(data)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	n, err := wordUint64(words[0])
	if err != nil || n != 4242 {
		t.Errorf("expected 4242, got %d (%v)", n, err)
	}
}
