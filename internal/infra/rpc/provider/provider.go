// Package provider implements JSON-RPC provider endpoints.
//
// This package contains:
//   - Provider interface: core abstraction for RPC endpoints
//   - HTTPProvider: JSON-RPC over HTTP implementation
package provider

import (
	"context"
	"encoding/json"
	"time"
)

// Provider defines the core interface for an RPC endpoint. It covers health
// checking alongside call execution so routing can skip degraded endpoints.
type Provider interface {
	// Name returns the provider identifier (e.g., "alchemy", "infura")
	Name() string

	// Call makes a single JSON-RPC call and returns the raw result field.
	Call(ctx context.Context, method string, params []any) (json.RawMessage, error)

	// Health returns current health metrics
	Health() HealthStatus

	// Available checks if the provider is healthy enough to use
	Available() bool

	// Close cleans up resources
	Close() error
}

// HealthStatus captures a provider's recent behavior.
type HealthStatus struct {
	Available     bool
	SuccessCount  int
	FailureCount  int
	AvgLatency    time.Duration
	LastSuccessAt time.Time
	LastFailureAt time.Time
}
