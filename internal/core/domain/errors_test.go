package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	f := NewFailure(FailReverted, "execution reverted", nil)

	if KindOf(f) != FailReverted {
		t.Errorf("expected reverted kind, got %s", KindOf(f))
	}

	// Kinds survive wrapping
	wrapped := fmt.Errorf("place bet: %w", f)
	if KindOf(wrapped) != FailReverted {
		t.Errorf("expected reverted kind through wrap, got %s", KindOf(wrapped))
	}

	// Untyped errors default to data fetch
	if KindOf(errors.New("boom")) != FailDataFetch {
		t.Error("untyped error should classify as data fetch")
	}
}

func TestIsKind(t *testing.T) {
	f := NewFailure(FailInvalidInput, "number out of range", nil)

	if !IsKind(f, FailInvalidInput) {
		t.Error("expected invalid input kind")
	}
	if IsKind(f, FailTimedOut) {
		t.Error("did not expect timed out kind")
	}
	if IsKind(nil, FailDataFetch) {
		t.Error("nil error has no kind")
	}
}

func TestTruncateReason(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := TruncateReason(long); len(got) != 100 {
		t.Errorf("expected reason truncated to 100, got %d", len(got))
	}
	if got := TruncateReason("short"); got != "short" {
		t.Errorf("short reason must pass through, got %q", got)
	}
}

func TestFailureUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	f := NewFailure(FailDataFetch, "jackpot read", inner)

	if !errors.Is(f, inner) {
		t.Error("failure must unwrap to the underlying error")
	}
}
