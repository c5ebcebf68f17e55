package eventship

import (
	"sync"
	"time"

	"github.com/bft-labs/eventship/internal/app"
	"github.com/bft-labs/eventship/internal/domain"
)

// State is the lifecycle state of a client's background workers.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns the state name.
func (s State) String() string {
	return app.State(s).String()
}

// DiscardReason explains why envelopes never reached a transport.
type DiscardReason = domain.DiscardReason

const (
	ReasonQueueOverflow = domain.ReasonQueueOverflow
	ReasonOversized     = domain.ReasonOversized
	ReasonDisabled      = domain.ReasonDisabled
	ReasonEncodeError   = domain.ReasonEncodeError
)

// StateChangeEvent is emitted on lifecycle transitions.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// DeliverySuccessEvent is emitted after a batch was accepted, or handed off
// by a detached strategy.
type DeliverySuccessEvent struct {
	Strategy   string
	Path       string
	Envelopes  int
	Bytes      int
	StatusCode int
	Detached   bool
	Duration   time.Duration
}

// DeliveryErrorEvent is emitted after a batch failed. The batch is not retried.
type DeliveryErrorEvent struct {
	Strategy   string
	Path       string
	Envelopes  int
	Bytes      int
	StatusCode int
	Error      error
}

// DiscardEvent is emitted when envelopes are dropped before delivery.
type DiscardEvent struct {
	Reason DiscardReason
	Count  int
}

// EventHandler receives client notifications. Callbacks run synchronously
// on the flushing goroutine and should return quickly.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnDeliverySuccess(DeliverySuccessEvent)
	OnDeliveryError(DeliveryErrorEvent)
	OnDiscard(DiscardEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)         {}
func (BaseEventHandler) OnDeliverySuccess(DeliverySuccessEvent) {}
func (BaseEventHandler) OnDeliveryError(DeliveryErrorEvent)     {}
func (BaseEventHandler) OnDiscard(DiscardEvent)                 {}

// emitter fans internal notifications out to the registered handlers.
type emitter struct {
	mu       sync.RWMutex
	strategy string
	handlers []EventHandler
}

func (e *emitter) each(fn func(EventHandler)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, h := range e.handlers {
		fn(h)
	}
}

func (e *emitter) OnStateChange(previous, current app.State, reason string) {
	ev := StateChangeEvent{Previous: State(previous), Current: State(current), Reason: reason}
	e.each(func(h EventHandler) { h.OnStateChange(ev) })
}

func (e *emitter) OnDeliverySuccess(path string, envelopes, bytes int, o domain.Outcome) {
	ev := DeliverySuccessEvent{
		Strategy:   e.strategy,
		Path:       path,
		Envelopes:  envelopes,
		Bytes:      bytes,
		StatusCode: o.StatusCode,
		Detached:   o.Detached,
		Duration:   o.Duration,
	}
	e.each(func(h EventHandler) { h.OnDeliverySuccess(ev) })
}

func (e *emitter) OnDeliveryError(path string, envelopes, bytes int, o domain.Outcome) {
	ev := DeliveryErrorEvent{
		Strategy:   e.strategy,
		Path:       path,
		Envelopes:  envelopes,
		Bytes:      bytes,
		StatusCode: o.StatusCode,
		Error:      o.Err,
	}
	e.each(func(h EventHandler) { h.OnDeliveryError(ev) })
}

func (e *emitter) OnDiscard(reason domain.DiscardReason, count int) {
	ev := DiscardEvent{Reason: reason, Count: count}
	e.each(func(h EventHandler) { h.OnDiscard(ev) })
}
