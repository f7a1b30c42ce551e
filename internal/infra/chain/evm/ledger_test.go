package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minhvu/lottosync/internal/core/domain"
	"github.com/minhvu/lottosync/internal/infra/chain"
)

const (
	testContract = "0x841d24704f307ac7c337bc03e190769390fb41ef"
	testAccount  = "0x1111111111111111111111111111111111111111"
	winSig       = "YouWin(address,uint256,uint256,uint256)"
	lossSig      = "YouLost(address,uint256)"
)

// MockCaller scripts JSON-RPC responses per method.
type MockCaller struct {
	mu        sync.Mutex
	responses map[string][]string // method -> queued raw responses (last repeats)
	calls     []string
}

func NewMockCaller() *MockCaller {
	return &MockCaller{responses: make(map[string][]string)}
}

func (m *MockCaller) Queue(method string, raw ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[method] = append(m.responses[method], raw...)
}

func (m *MockCaller) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)

	queue := m.responses[method]
	if len(queue) == 0 {
		return nil, fmt.Errorf("unexpected call %s", method)
	}
	raw := queue[0]
	if len(queue) > 1 {
		m.responses[method] = queue[1:]
	}
	if strings.HasPrefix(raw, "error:") {
		return nil, fmt.Errorf("%s", strings.TrimPrefix(raw, "error:"))
	}
	return json.RawMessage(raw), nil
}

func (m *MockCaller) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

func newTestLedger(c Caller) *Ledger {
	return NewLedger(c, Config{
		Contract:        testContract,
		Account:         testAccount,
		DeploymentTx:    "0xdddd",
		WinEvent:        winSig,
		LossEvent:       lossSig,
		GasLimit:        500_000,
		ReceiptInterval: 5 * time.Millisecond,
		PollInterval:    5 * time.Millisecond,
		PollOverlap:     2,
	})
}

func TestLedger_Read(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_call", `"0x2710"`)

	l := newTestLedger(mock)
	v, err := l.Read(context.Background(), "betMinAmount")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v.Cmp(big.NewInt(10000)) != 0 {
		t.Errorf("expected 10000, got %s", v)
	}
}

func TestLedger_Submit(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_sendTransaction", `"0xfeed"`)

	l := newTestLedger(mock)
	tx, err := l.Submit(context.Background(), "placeBets", []any{4242}, big.NewInt(1000))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tx.Hash != "0xfeed" {
		t.Errorf("unexpected tx hash %s", tx.Hash)
	}
}

func TestLedger_Submit_Rejected(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_sendTransaction", "error:insufficient funds for gas * price + value")

	l := newTestLedger(mock)
	if _, err := l.Submit(context.Background(), "placeBets", []any{1}, big.NewInt(1000)); err == nil {
		t.Fatal("expected submission error")
	}
}

func TestLedger_AwaitConfirmation_Success(t *testing.T) {
	mock := NewMockCaller()
	// First poll: not yet mined, second poll: mined with success
	mock.Queue("eth_getTransactionReceipt",
		`null`,
		`{"status":"0x1","blockNumber":"0x64"}`)

	l := newTestLedger(mock)
	conf, err := l.AwaitConfirmation(context.Background(), chain.PendingTx{Hash: "0xfeed"}, 1)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if conf.Status != chain.ConfirmationSuccess {
		t.Errorf("expected success, got %s", conf.Status)
	}
	if conf.BlockHeight != 100 {
		t.Errorf("expected height 100, got %d", conf.BlockHeight)
	}
}

func TestLedger_AwaitConfirmation_Reverted(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getTransactionReceipt", `{"status":"0x0","blockNumber":"0x64"}`)

	l := newTestLedger(mock)
	conf, err := l.AwaitConfirmation(context.Background(), chain.PendingTx{Hash: "0xfeed"}, 1)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if conf.Status != chain.ConfirmationReverted {
		t.Errorf("expected reverted, got %s", conf.Status)
	}
}

func TestLedger_AwaitConfirmation_Timeout(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getTransactionReceipt", `null`)

	l := newTestLedger(mock)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := l.AwaitConfirmation(ctx, chain.PendingTx{Hash: "0xfeed"}, 1)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestLedger_DeploymentHeight(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getTransactionByHash", `{"blockNumber":"0x10"}`)

	l := newTestLedger(mock)
	h, err := l.DeploymentHeight(context.Background())
	if err != nil || h != 16 {
		t.Errorf("expected height 16, got %d (%v)", h, err)
	}
}

func TestLedger_DeploymentHeight_Fallback(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getTransactionByHash", "error:not found")

	l := newTestLedger(mock)
	h, err := l.DeploymentHeight(context.Background())
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if h != 0 {
		t.Errorf("expected fallback height 0, got %d", h)
	}
}

// winLogJSON reproduces the contract's emitted shape: user, lot number, and
// level indexed, the amount as the only data word.
func winLogJSON(txHash string, account string, height uint64) string {
	return fmt.Sprintf(`{
		"topics": [%q, %q,
			"0x0000000000000000000000000000000000000000000000000000000000001092",
			"0x0000000000000000000000000000000000000000000000000000000000000001"],
		"data": "0x000000000000000000000000000000000000000000000000000000000000c350",
		"blockNumber": "0x%x",
		"transactionHash": %q
	}`, eventTopic(winSig), addressTopic(account), height, txHash)
}

// lossLogJSON reproduces the contract's loss shape: both params indexed,
// empty data.
func lossLogJSON(txHash string, account string, height uint64) string {
	return fmt.Sprintf(`{
		"topics": [%q, %q,
			"0x00000000000000000000000000000000000000000000000000000000000004d2"],
		"data": "0x",
		"blockNumber": "0x%x",
		"transactionHash": %q
	}`, eventTopic(lossSig), addressTopic(account), height, txHash)
}

func TestLedger_QueryOutcomes_Win(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getLogs", "["+winLogJSON("0xaaa", testAccount, 100)+"]")

	l := newTestLedger(mock)
	events, err := l.QueryOutcomes(context.Background(), domain.KindWin, testAccount, 0, 200)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Kind != domain.KindWin {
		t.Errorf("expected win, got %s", ev.Kind)
	}
	if ev.Account != testAccount {
		t.Errorf("unexpected account %s", ev.Account)
	}
	if ev.DrawnNumber != 4242 {
		t.Errorf("unexpected drawn number %d", ev.DrawnNumber)
	}
	if ev.BetNumber != 0 {
		t.Errorf("bet number is not emitted on chain, got %d", ev.BetNumber)
	}
	if ev.Level != 1 {
		t.Errorf("expected level 1, got %d", ev.Level)
	}
	if ev.Payout.Cmp(big.NewInt(50000)) != 0 {
		t.Errorf("expected payout 50000, got %s", ev.Payout)
	}
	if ev.BlockHeight != 100 {
		t.Errorf("expected height 100, got %d", ev.BlockHeight)
	}
}

func TestLedger_QueryOutcomes_Loss(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_getLogs", "["+lossLogJSON("0xbbb", testAccount, 101)+"]")

	l := newTestLedger(mock)
	events, err := l.QueryOutcomes(context.Background(), domain.KindLoss, testAccount, 0, 200)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Kind != domain.KindLoss {
		t.Errorf("expected loss, got %s", ev.Kind)
	}
	if ev.DrawnNumber != 1234 {
		t.Errorf("unexpected drawn number %d", ev.DrawnNumber)
	}
	if ev.Level != 0 || ev.Payout != nil {
		t.Errorf("loss must carry no level or payout, got level=%d payout=%v", ev.Level, ev.Payout)
	}
}

func TestLedger_Subscribe_DeliversAndStops(t *testing.T) {
	mock := NewMockCaller()
	// Subscribe resolves the current head first
	mock.Queue("eth_blockNumber", `"0x64"`, `"0x65"`)
	mock.Queue("eth_getLogs",
		"["+winLogJSON("0xbbb", testAccount, 101)+"]", // win query
		"[]") // loss query

	l := newTestLedger(mock)

	var mu sync.Mutex
	var got []domain.OutcomeEvent
	err := l.Subscribe(context.Background(), func(ev domain.OutcomeEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	deadline := time.After(500 * time.Millisecond)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for live event")
		case <-time.After(5 * time.Millisecond):
		}
	}

	l.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	if got[0].TxHash != "0xbbb" {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestLedger_Subscribe_Twice(t *testing.T) {
	mock := NewMockCaller()
	mock.Queue("eth_blockNumber", `"0x64"`)

	l := newTestLedger(mock)
	if err := l.Subscribe(context.Background(), func(domain.OutcomeEvent) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer l.Unsubscribe()

	if err := l.Subscribe(context.Background(), func(domain.OutcomeEvent) {}); err == nil {
		t.Fatal("second subscribe must fail")
	}
}

func TestBuildCallData(t *testing.T) {
	data, err := buildCallData("placeBets", []any{4242})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := selector("placeBets(uint256)") + encodeUint256(big.NewInt(4242))
	if data != want {
		t.Errorf("unexpected call data %s", data)
	}

	if _, err := buildCallData("placeBets", []any{-1}); err == nil {
		t.Error("negative argument must be rejected")
	}
	if _, err := buildCallData("placeBets", []any{"abcd"}); err == nil {
		t.Error("string argument must be rejected")
	}
}
