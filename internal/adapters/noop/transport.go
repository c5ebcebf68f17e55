// Package noop provides a transport that accepts every batch without I/O,
// for tests and for hosts that must not emit telemetry.
package noop

import (
	"context"
	"sync/atomic"

	"github.com/bft-labs/eventship/internal/domain"
)

// Transport reports success for every Send and only counts calls.
type Transport struct {
	calls atomic.Int64
	bytes atomic.Int64
}

// NewTransport creates a no-op transport.
func NewTransport() *Transport {
	return &Transport{}
}

func (t *Transport) Name() string  { return string(domain.StrategyNoop) }
func (t *Transport) Enabled() bool { return true }

// Send records the call and succeeds.
func (t *Transport) Send(_ context.Context, _ string, payload []byte) domain.Outcome {
	t.calls.Add(1)
	t.bytes.Add(int64(len(payload)))
	return domain.Succeeded(0)
}

// Calls returns the number of Send calls.
func (t *Transport) Calls() int64 {
	return t.calls.Load()
}

// Bytes returns the total payload bytes passed to Send.
func (t *Transport) Bytes() int64 {
	return t.bytes.Load()
}
