package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies every error the sync layer surfaces to callers.
type FailureKind string

const (
	// FailInvalidInput is a local validation failure; no I/O was attempted.
	FailInvalidInput FailureKind = "invalid_input"
	// FailConfiguration means the ledger returned an unusable configuration
	// value, e.g. a zero minimum stake.
	FailConfiguration FailureKind = "configuration_error"
	// FailDataFetch is any read or query failure; prior cached data, if any,
	// is left intact.
	FailDataFetch FailureKind = "data_fetch_error"
	// FailSubmissionRejected means the write call never reached the ledger.
	FailSubmissionRejected FailureKind = "submission_rejected"
	// FailReverted means the ledger accepted but rolled back the transaction.
	FailReverted FailureKind = "reverted"
	// FailTimedOut means the confirmation wait exceeded its deadline. The
	// outcome is unknown, not failed.
	FailTimedOut FailureKind = "timed_out"
)

// Failure is a typed error carrying its taxonomy kind and a display-safe
// reason.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure builds a Failure, truncating the reason for display.
func NewFailure(kind FailureKind, reason string, err error) *Failure {
	return &Failure{Kind: kind, Reason: TruncateReason(reason), Err: err}
}

// KindOf extracts the failure kind from an error chain. Untyped errors
// report as FailDataFetch, the catch-all for I/O problems.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailDataFetch
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind FailureKind) bool {
	return err != nil && KindOf(err) == kind
}

// maxReasonLen bounds the underlying reason surfaced to displays.
const maxReasonLen = 100

// TruncateReason trims a raw error message to a display-safe length.
func TruncateReason(s string) string {
	if len(s) > maxReasonLen {
		return s[:maxReasonLen]
	}
	return s
}
