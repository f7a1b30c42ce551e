// Package evm implements the chain.Ledger boundary against an EVM node over
// JSON-RPC. Transaction signing is delegated to the node-side account; wallet
// management is outside this layer.
package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/infra/chain"
)

// Caller abstracts the JSON-RPC transport so the ledger can be exercised
// without a live node.
type Caller interface {
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)
}

// Config holds the contract binding for one ledger instance.
type Config struct {
	Contract        string
	Account         string
	DeploymentTx    string
	WinEvent        string // full event signature
	LossEvent       string
	GasLimit        uint64
	ReceiptInterval time.Duration
	PollInterval    time.Duration
	PollOverlap     uint64
}

// Ledger talks to one lottery contract on an EVM chain.
type Ledger struct {
	client Caller
	cfg    Config
	log    *slog.Logger

	winTopic  string
	lossTopic string

	subMu     sync.Mutex
	subCancel context.CancelFunc
}

var _ chain.Ledger = (*Ledger)(nil)

// NewLedger creates a Ledger bound to the configured contract.
func NewLedger(client Caller, cfg Config) *Ledger {
	if cfg.ReceiptInterval == 0 {
		cfg.ReceiptInterval = 3 * time.Second
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &Ledger{
		client:    client,
		cfg:       cfg,
		log:       slog.Default().With("component", "evm"),
		winTopic:  eventTopic(cfg.WinEvent),
		lossTopic: eventTopic(cfg.LossEvent),
	}
}

// Read executes a no-argument view method and decodes its uint256 result.
func (l *Ledger) Read(ctx context.Context, method string) (*big.Int, error) {
	callObj := map[string]any{
		"to":   l.cfg.Contract,
		"data": selector(method + "()"),
	}
	result, err := l.client.Call(ctx, "eth_call", []any{callObj, "latest"})
	if err != nil {
		return nil, fmt.Errorf("eth_call %s failed: %w", method, err)
	}

	var dataHex string
	if err := json.Unmarshal(result, &dataHex); err != nil {
		return nil, fmt.Errorf("invalid eth_call response: %w", err)
	}
	v, err := parseHexBig(dataHex)
	if err != nil {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}
	return v, nil
}

// Submit sends a state-changing call with attached payment and returns the
// pending transaction handle.
func (l *Ledger) Submit(ctx context.Context, method string, args []any, payment *big.Int) (chain.PendingTx, error) {
	data, err := buildCallData(method, args)
	if err != nil {
		return chain.PendingTx{}, err
	}

	txObj := map[string]any{
		"from":  l.cfg.Account,
		"to":    l.cfg.Contract,
		"value": "0x" + payment.Text(16),
		"data":  data,
		"gas":   hexHeight(l.cfg.GasLimit),
	}
	result, err := l.client.Call(ctx, "eth_sendTransaction", []any{txObj})
	if err != nil {
		return chain.PendingTx{}, fmt.Errorf("eth_sendTransaction failed: %w", err)
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return chain.PendingTx{}, fmt.Errorf("invalid send response: %w", err)
	}

	l.log.Info("transaction submitted", "method", method, "tx", txHash)
	return chain.PendingTx{Hash: txHash}, nil
}

// buildCallData encodes the selector and uint256 arguments of a call.
func buildCallData(method string, args []any) (string, error) {
	types := make([]string, len(args))
	words := make([]string, len(args))
	for i, arg := range args {
		var v *big.Int
		switch a := arg.(type) {
		case *big.Int:
			v = a
		case uint64:
			v = new(big.Int).SetUint64(a)
		case int:
			if a < 0 {
				return "", fmt.Errorf("negative argument %d not encodable", a)
			}
			v = big.NewInt(int64(a))
		default:
			return "", fmt.Errorf("unsupported argument type %T", arg)
		}
		types[i] = "uint256"
		words[i] = encodeUint256(v)
	}

	sig := fmt.Sprintf("%s(%s)", method, strings.Join(types, ","))
	return selector(sig) + strings.Join(words, ""), nil
}

// AwaitConfirmation polls for the transaction receipt until it is final to
// the requested depth or ctx expires. Expiry aborts the wait only.
func (l *Ledger) AwaitConfirmation(ctx context.Context, tx chain.PendingTx, confirmations uint64) (*chain.Confirmation, error) {
	ticker := time.NewTicker(l.cfg.ReceiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := l.getReceipt(ctx, tx.Hash)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.log.Warn("receipt poll failed", "tx", tx.Hash, "error", err)
		}

		if receipt != nil {
			if receipt.Status == "0x0" {
				return &chain.Confirmation{
					Status:      chain.ConfirmationReverted,
					TxHash:      tx.Hash,
					BlockHeight: receipt.height,
				}, nil
			}
			if confirmations <= 1 {
				return &chain.Confirmation{
					Status:      chain.ConfirmationSuccess,
					TxHash:      tx.Hash,
					BlockHeight: receipt.height,
				}, nil
			}
			head, err := l.HeadHeight(ctx)
			if err == nil && head >= receipt.height+confirmations-1 {
				return &chain.Confirmation{
					Status:      chain.ConfirmationSuccess,
					TxHash:      tx.Hash,
					BlockHeight: receipt.height,
				}, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type receipt struct {
	Status      string `json:"status"`
	BlockNumber string `json:"blockNumber"`
	height      uint64
}

func (l *Ledger) getReceipt(ctx context.Context, txHash string) (*receipt, error) {
	result, err := l.client.Call(ctx, "eth_getTransactionReceipt", []any{txHash})
	if err != nil {
		return nil, err
	}
	if string(result) == "null" || len(result) == 0 {
		return nil, nil
	}

	var r receipt
	if err := json.Unmarshal(result, &r); err != nil {
		return nil, fmt.Errorf("invalid receipt: %w", err)
	}
	r.height, err = parseHexUint64(r.BlockNumber)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// BlockTimestamp fetches the unix timestamp of a block by height.
func (l *Ledger) BlockTimestamp(ctx context.Context, height uint64) (uint64, error) {
	result, err := l.client.Call(ctx, "eth_getBlockByNumber", []any{hexHeight(height), false})
	if err != nil {
		return 0, fmt.Errorf("eth_getBlockByNumber failed: %w", err)
	}
	if string(result) == "null" {
		return 0, fmt.Errorf("block %d not found", height)
	}

	var block struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(result, &block); err != nil {
		return 0, fmt.Errorf("invalid block: %w", err)
	}
	return parseHexUint64(block.Timestamp)
}

// HeadHeight returns the current chain head height.
func (l *Ledger) HeadHeight(ctx context.Context) (uint64, error) {
	result, err := l.client.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber failed: %w", err)
	}
	var headHex string
	if err := json.Unmarshal(result, &headHex); err != nil {
		return 0, fmt.Errorf("invalid head response: %w", err)
	}
	return parseHexUint64(headHex)
}

// DeploymentHeight resolves the contract's deployment transaction to its
// block height. An unresolvable deployment falls back to height 0 so the
// historical scan still covers the full range.
func (l *Ledger) DeploymentHeight(ctx context.Context) (uint64, error) {
	if l.cfg.DeploymentTx == "" {
		return 0, nil
	}

	result, err := l.client.Call(ctx, "eth_getTransactionByHash", []any{l.cfg.DeploymentTx})
	if err != nil || string(result) == "null" {
		l.log.Warn("deployment tx lookup failed, scanning from genesis", "error", err)
		return 0, nil
	}

	var tx struct {
		BlockNumber string `json:"blockNumber"`
	}
	if err := json.Unmarshal(result, &tx); err != nil || tx.BlockNumber == "" {
		return 0, nil
	}
	height, err := parseHexUint64(tx.BlockNumber)
	if err != nil {
		return 0, nil
	}
	return height, nil
}

// QueryOutcomes fetches all outcome events of one kind for an account within
// a height range.
func (l *Ledger) QueryOutcomes(ctx context.Context, kind domain.OutcomeKind, account string, fromHeight, toHeight uint64) ([]domain.OutcomeEvent, error) {
	topic := l.winTopic
	if kind == domain.KindLoss {
		topic = l.lossTopic
	}

	filter := map[string]any{
		"address":   l.cfg.Contract,
		"fromBlock": hexHeight(fromHeight),
		"toBlock":   hexHeight(toHeight),
		"topics":    []any{topic, addressTopic(account)},
	}
	result, err := l.client.Call(ctx, "eth_getLogs", []any{filter})
	if err != nil {
		return nil, fmt.Errorf("eth_getLogs failed: %w", err)
	}

	var rawLogs []rawLog
	if err := json.Unmarshal(result, &rawLogs); err != nil {
		return nil, fmt.Errorf("invalid logs response: %w", err)
	}

	events := make([]domain.OutcomeEvent, 0, len(rawLogs))
	for _, lg := range rawLogs {
		ev, err := l.parseLog(lg)
		if err != nil {
			l.log.Warn("skipping unparsable log", "tx", lg.TransactionHash, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

type rawLog struct {
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"`
	TransactionHash string   `json:"transactionHash"`
	Removed         bool     `json:"removed"`
}

// parseLog decodes an outcome log.
//
// Win:  topics [sig, user, lotNumber, level], data [amount]
// Loss: topics [sig, user, lotNumber], no data
func (l *Ledger) parseLog(lg rawLog) (domain.OutcomeEvent, error) {
	if lg.Removed {
		return domain.OutcomeEvent{}, fmt.Errorf("log removed by reorg")
	}
	if len(lg.Topics) < 3 {
		return domain.OutcomeEvent{}, fmt.Errorf("expected at least 3 topics, got %d", len(lg.Topics))
	}

	var ev domain.OutcomeEvent
	switch lg.Topics[0] {
	case l.winTopic:
		ev.Kind = domain.KindWin
	case l.lossTopic:
		ev.Kind = domain.KindLoss
	default:
		return domain.OutcomeEvent{}, fmt.Errorf("unknown event topic %s", lg.Topics[0])
	}

	ev.Account = topicAddress(lg.Topics[1])
	drawn, err := parseHexUint64(lg.Topics[2])
	if err != nil {
		return domain.OutcomeEvent{}, err
	}
	ev.DrawnNumber = drawn
	// The contract emits only the drawn lot number, never the player's own
	// pick; BetNumber stays zero

	if ev.Kind == domain.KindWin {
		if len(lg.Topics) < 4 {
			return domain.OutcomeEvent{}, fmt.Errorf("win event needs 4 topics, got %d", len(lg.Topics))
		}
		if ev.Level, err = parseHexUint64(lg.Topics[3]); err != nil {
			return domain.OutcomeEvent{}, err
		}
		words := dataWords(lg.Data)
		if len(words) < 1 {
			return domain.OutcomeEvent{}, fmt.Errorf("win event missing amount word")
		}
		if ev.Payout, err = wordBig(words[0]); err != nil {
			return domain.OutcomeEvent{}, err
		}
	}

	if ev.BlockHeight, err = parseHexUint64(lg.BlockNumber); err != nil {
		return domain.OutcomeEvent{}, err
	}
	ev.TxHash = lg.TransactionHash
	return ev, nil
}
