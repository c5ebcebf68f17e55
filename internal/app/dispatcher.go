package app

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
	"github.com/bft-labs/eventship/pkg/batch"
	"github.com/bft-labs/eventship/pkg/envelope"
)

// DeliveryEmitter is notified about every batch and every discarded envelope.
type DeliveryEmitter interface {
	OnDeliverySuccess(path string, envelopes, bytes int, outcome domain.Outcome)
	OnDeliveryError(path string, envelopes, bytes int, outcome domain.Outcome)
	OnDiscard(reason domain.DiscardReason, count int)
}

// DispatcherConfig contains configuration for the dispatcher.
type DispatcherConfig struct {
	// MaxPostLength is the request body ceiling in bytes.
	MaxPostLength int

	// Debug logs every batch at info level instead of debug.
	Debug bool
}

// Report summarizes one Deliver call.
type Report struct {
	Batches   int
	Succeeded int
	Failed    int
	Discarded int
}

// Dispatcher splits drained envelopes into size-bounded batches and hands
// them to the transport one by one. It never retries and never returns
// delivery errors.
type Dispatcher struct {
	config    DispatcherConfig
	transport ports.Transport
	logger    ports.Logger
	emitter   DeliveryEmitter
	clock     clock.Clock
}

// NewDispatcher creates a dispatcher. emitter may be nil.
func NewDispatcher(
	config DispatcherConfig,
	transport ports.Transport,
	logger ports.Logger,
	emitter DeliveryEmitter,
	clk clock.Clock,
) *Dispatcher {
	if config.MaxPostLength <= 0 {
		config.MaxPostLength = batch.DefaultMaxBytes
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Dispatcher{
		config:    config,
		transport: transport,
		logger:    logger,
		emitter:   emitter,
		clock:     clk,
	}
}

// Transport returns the underlying transport.
func (d *Dispatcher) Transport() ports.Transport {
	return d.transport
}

// Deliver sends envs. Runs of envelopes sharing a resource path are split
// independently and every batch is attempted, in order, even after failures.
func (d *Dispatcher) Deliver(ctx context.Context, envs []envelope.Envelope) Report {
	var rep Report
	if len(envs) == 0 {
		return rep
	}

	if !d.transport.Enabled() {
		d.logger.Debug("transport disabled, discarding envelopes",
			ports.Strategy(d.transport.Name()),
			ports.Int("envelopes", len(envs)),
		)
		d.discard(&rep, domain.ReasonDisabled, len(envs))
		return rep
	}

	for _, r := range groupByRoute(envs) {
		d.deliverRun(ctx, r, &rep)
	}
	return rep
}

func (d *Dispatcher) deliverRun(ctx context.Context, r run, rep *Report) {
	res, err := batch.Split(r.items, d.config.MaxPostLength)
	if err != nil {
		d.logger.Error("failed to encode envelopes",
			ports.Err(err),
			ports.String("path", r.path),
			ports.Int("envelopes", len(r.items)),
		)
		d.discard(rep, domain.ReasonEncodeError, len(r.items))
		return
	}

	for _, e := range res.Dropped {
		d.logger.Debug("dropping oversized envelope",
			ports.String("path", r.path),
			ports.String("type", string(e.Type())),
			ports.Int("max_post_length", d.config.MaxPostLength),
		)
	}
	if n := len(res.Dropped); n > 0 {
		d.discard(rep, domain.ReasonOversized, n)
	}

	for _, b := range res.Batches {
		d.send(ctx, r.path, b, rep)
	}
}

func (d *Dispatcher) send(ctx context.Context, path string, b batch.Batch[envelope.Envelope], rep *Report) {
	start := d.clock.Now()
	outcome := d.transport.Send(ctx, path, b.Payload)
	if outcome.Duration == 0 {
		outcome.Duration = d.clock.Since(start)
	}
	rep.Batches++

	if !outcome.Success {
		rep.Failed++
		d.logger.Warn("delivery failed",
			ports.Strategy(d.transport.Name()),
			ports.String("path", path),
			ports.Int("status", outcome.StatusCode),
			ports.Int("envelopes", b.Size()),
			ports.Bytes(len(b.Payload)),
			ports.Err(outcome.Err),
		)
		if d.emitter != nil {
			d.emitter.OnDeliveryError(path, b.Size(), len(b.Payload), outcome)
		}
		return
	}

	rep.Succeeded++
	fields := []ports.Field{
		ports.Strategy(d.transport.Name()),
		ports.String("path", path),
		ports.Int("status", outcome.StatusCode),
		ports.Int("envelopes", b.Size()),
		ports.Bytes(len(b.Payload)),
		ports.Bool("detached", outcome.Detached),
		ports.Duration("duration", outcome.Duration),
	}
	if d.config.Debug {
		d.logger.Info("delivered batch", fields...)
	} else {
		d.logger.Debug("delivered batch", fields...)
	}
	if d.emitter != nil {
		d.emitter.OnDeliverySuccess(path, b.Size(), len(b.Payload), outcome)
	}
}

func (d *Dispatcher) discard(rep *Report, reason domain.DiscardReason, n int) {
	rep.Discarded += n
	if d.emitter != nil {
		d.emitter.OnDiscard(reason, n)
	}
}

// run is a maximal contiguous sequence of envelopes with the same route.
type run struct {
	path  string
	items []envelope.Envelope
}

func groupByRoute(envs []envelope.Envelope) []run {
	var runs []run
	start := 0
	for i := 1; i <= len(envs); i++ {
		if i < len(envs) && envelope.Route(envs[i]) == envelope.Route(envs[start]) {
			continue
		}
		runs = append(runs, run{path: envelope.Route(envs[start]), items: envs[start:i:i]})
		start = i
	}
	return runs
}
