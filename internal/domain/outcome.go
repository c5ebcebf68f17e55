package domain

import (
	"fmt"
	"time"
)

// Strategy names a delivery strategy.
type Strategy string

const (
	// StrategySync posts each batch and waits for the response.
	StrategySync Strategy = "sync"
	// StrategyAsync posts each batch from a detached goroutine.
	StrategyAsync Strategy = "async"
	// StrategyExec hands each batch to a detached curl process.
	StrategyExec Strategy = "exec"
	// StrategyNoop discards every batch and reports success.
	StrategyNoop Strategy = "noop"
)

// ParseStrategy validates a strategy name. The empty string selects sync.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case "":
		return StrategySync, nil
	case StrategySync, StrategyAsync, StrategyExec, StrategyNoop:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown transport %q (want sync, async, exec or noop)", ErrInvalidConfig, name)
	}
}

// Outcome describes one delivery attempt. It is never surfaced to callers of
// the client as an error; the dispatcher logs it and forwards it to event
// handlers.
type Outcome struct {
	// Success is true when the remote service accepted the batch, or when a
	// detached strategy handed it off.
	Success bool

	// StatusCode is the HTTP status code, or the process exit code for the
	// detached-process strategy. Zero when no response was observed.
	StatusCode int

	// Err describes the failure. Nil on success.
	Err error

	// Detached is true when the real result is only observable
	// asynchronously, by the detached goroutine or process.
	Detached bool

	// Duration is the time spent inside Send.
	Duration time.Duration
}

// Succeeded builds a successful outcome.
func Succeeded(status int) Outcome {
	return Outcome{Success: true, StatusCode: status}
}

// Failed builds a failed outcome.
func Failed(status int, err error) Outcome {
	return Outcome{StatusCode: status, Err: err}
}

// DiscardReason explains why envelopes were dropped before delivery.
type DiscardReason string

const (
	// ReasonQueueOverflow means the queue was full when the envelope arrived.
	ReasonQueueOverflow DiscardReason = "queue_overflow"

	// ReasonOversized means a single envelope serialized larger than the
	// post size ceiling.
	ReasonOversized DiscardReason = "oversized"

	// ReasonDisabled means the transport was disabled at flush time.
	ReasonDisabled DiscardReason = "disabled"

	// ReasonEncodeError means the envelopes could not be serialized.
	ReasonEncodeError DiscardReason = "encode_error"
)
