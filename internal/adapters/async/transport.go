// Package async delivers batches from detached goroutines so that flushing
// never waits for the network.
package async

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
)

// DefaultMaxInFlight bounds concurrent detached deliveries.
const DefaultMaxInFlight = 16

// Transport wraps a blocking transport and runs each Send in its own
// goroutine. Results are only logged; the caller sees a detached success.
type Transport struct {
	inner       ports.Transport
	sem         *semaphore.Weighted
	maxInFlight int64
	logger      ports.Logger
}

// NewTransport wraps inner. A non-positive maxInFlight selects DefaultMaxInFlight.
func NewTransport(inner ports.Transport, maxInFlight int64, logger ports.Logger) *Transport {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &Transport{
		inner:       inner,
		sem:         semaphore.NewWeighted(maxInFlight),
		maxInFlight: maxInFlight,
		logger:      logger,
	}
}

// Name returns the strategy name.
func (t *Transport) Name() string {
	return string(domain.StrategyAsync)
}

// Enabled reports whether the wrapped transport is enabled.
func (t *Transport) Enabled() bool {
	return t.inner.Enabled()
}

// Send starts the delivery and returns immediately. When MaxInFlight
// deliveries are already running the batch is dropped.
//
// The delivery uses its own context: it outlives ctx and cannot be cancelled.
func (t *Transport) Send(_ context.Context, path string, payload []byte) domain.Outcome {
	if !t.Enabled() {
		return domain.Failed(0, domain.ErrTransportDisabled)
	}
	if !t.sem.TryAcquire(1) {
		return domain.Failed(0, fmt.Errorf("%w: limit %d", domain.ErrInFlightLimit, t.maxInFlight))
	}

	go func() {
		defer t.sem.Release(1)
		outcome := t.inner.Send(context.Background(), path, payload)
		if !outcome.Success {
			t.logger.Warn("detached delivery failed",
				ports.Strategy(t.Name()),
				ports.String("path", path),
				ports.Int("status", outcome.StatusCode),
				ports.Bytes(len(payload)),
				ports.Err(outcome.Err),
			)
			return
		}
		t.logger.Debug("detached delivery done",
			ports.Strategy(t.Name()),
			ports.String("path", path),
			ports.Duration("duration", outcome.Duration),
		)
	}()

	return domain.Outcome{Success: true, Detached: true}
}

// Wait blocks until every running delivery has finished or ctx is done.
// Sends issued while Wait holds the semaphore are dropped.
func (t *Transport) Wait(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, t.maxInFlight); err != nil {
		return err
	}
	t.sem.Release(t.maxInFlight)
	return nil
}
