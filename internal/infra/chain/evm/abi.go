package evm

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// keccak256 hashes data with the Ethereum-flavored Keccak.
func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// selector returns the 4-byte call selector for a method signature, hex
// encoded with 0x prefix.
func selector(signature string) string {
	return "0x" + hex.EncodeToString(keccak256([]byte(signature))[:4])
}

// eventTopic returns the 32-byte topic hash for an event signature.
func eventTopic(signature string) string {
	return "0x" + hex.EncodeToString(keccak256([]byte(signature)))
}

// encodeUint256 ABI-encodes an unsigned integer as a 32-byte word.
func encodeUint256(v *big.Int) string {
	return fmt.Sprintf("%064x", v)
}

// addressTopic left-pads an address to a 32-byte topic word.
func addressTopic(address string) string {
	addr := strings.TrimPrefix(strings.ToLower(address), "0x")
	return "0x" + strings.Repeat("0", 64-len(addr)) + addr
}

// topicAddress extracts the address from a 32-byte topic word.
func topicAddress(topic string) string {
	t := strings.TrimPrefix(topic, "0x")
	if len(t) < 40 {
		return "0x" + t
	}
	return "0x" + t[len(t)-40:]
}

// parseHexBig decodes a 0x-prefixed quantity into a big integer.
func parseHexBig(s string) (*big.Int, error) {
	t := strings.TrimPrefix(s, "0x")
	if t == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(t, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return v, nil
}

// parseHexUint64 decodes a 0x-prefixed quantity into a uint64.
func parseHexUint64(s string) (uint64, error) {
	v, err := parseHexBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("hex quantity %q overflows uint64", s)
	}
	return v.Uint64(), nil
}

// dataWords splits 0x-prefixed ABI data into 32-byte words.
func dataWords(data string) []string {
	t := strings.TrimPrefix(data, "0x")
	words := make([]string, 0, len(t)/64)
	for i := 0; i+64 <= len(t); i += 64 {
		words = append(words, t[i:i+64])
	}
	return words
}

// wordBig decodes one 32-byte data word into a big integer.
func wordBig(word string) (*big.Int, error) {
	return parseHexBig("0x" + word)
}

// wordUint64 decodes one 32-byte data word into a uint64.
func wordUint64(word string) (uint64, error) {
	return parseHexUint64("0x" + word)
}

// hexHeight renders a block height as a JSON-RPC quantity.
func hexHeight(height uint64) string {
	return fmt.Sprintf("0x%x", height)
}
