// Package rpc provides a resilient JSON-RPC client for the ledger chain.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minhvu/lottosync/internal/infra/rpc/provider"
	"github.com/minhvu/lottosync/internal/infra/rpc/routing"
	"github.com/minhvu/lottosync/internal/sync/metrics"
)

// Client is the high-level interface for making RPC calls. It rotates across
// providers and fails over when one is rejected or rate limited.
type Client struct {
	rotator *routing.Rotator
	retry   routing.RetryConfig
	log     *slog.Logger
}

// NewClient creates a new RPC client over the given providers.
func NewClient(providers []provider.Provider) *Client {
	return &Client{
		rotator: routing.NewRotator(providers),
		retry:   routing.DefaultRetryConfig,
		log:     slog.Default().With("component", "rpc"),
	}
}

// Call makes an RPC call with automatic retry and provider failover.
func (c *Client) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	var lastErr error

	attempts := c.rotator.Size()
	if attempts == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	for i := 0; i < attempts; i++ {
		p, err := c.rotator.Select()
		if err != nil {
			return nil, err
		}

		metrics.RPCCallsTotal.WithLabelValues(p.Name(), method).Inc()
		result, err := routing.CallWithRetry(ctx, p, method, params, c.retry)
		if err == nil {
			return result, nil
		}

		lastErr = err
		metrics.RPCErrorsTotal.WithLabelValues(p.Name(), method).Inc()

		if routing.ClassifyError(err) == routing.ActionFatal {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}

		c.log.Warn("provider call failed, failing over",
			"provider", p.Name(), "method", method, "error", err)
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

// Providers exposes the configured providers for health reporting.
func (c *Client) Providers() []provider.Provider {
	return c.rotator.Providers()
}

// Close releases all provider resources.
func (c *Client) Close() {
	for _, p := range c.rotator.Providers() {
		p.Close()
	}
}
