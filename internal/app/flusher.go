package app

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/eventship/internal/ports"
)

// FlushFunc drains the queue and delivers it.
type FlushFunc func(ctx context.Context) Report

// Flusher triggers a flush on a fixed interval while the queue is non-empty.
type Flusher struct {
	interval time.Duration
	queue    *Queue
	flush    FlushFunc
	logger   ports.Logger
	clock    clock.Clock
}

// NewFlusher creates a periodic flusher.
func NewFlusher(interval time.Duration, queue *Queue, flush FlushFunc, logger ports.Logger, clk clock.Clock) *Flusher {
	if clk == nil {
		clk = clock.New()
	}
	return &Flusher{
		interval: interval,
		queue:    queue,
		flush:    flush,
		logger:   logger,
		clock:    clk,
	}
}

// Run flushes on every tick until ctx is canceled. The final flush on exit
// is left to the caller, which owns the process-exit hook.
func (f *Flusher) Run(ctx context.Context) error {
	if f.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := f.clock.Ticker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if f.queue.Len() == 0 {
				continue
			}
			rep := f.flush(ctx)
			f.logger.Debug("periodic flush",
				ports.Int("batches", rep.Batches),
				ports.Int("failed", rep.Failed),
				ports.Int("discarded", rep.Discarded),
			)
		}
	}
}
