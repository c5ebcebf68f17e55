package app

import (
	"sync"

	"github.com/bft-labs/eventship/pkg/envelope"
)

// DefaultQueueSize is the default number of envelopes held between flushes.
const DefaultQueueSize = 100

// Queue is a bounded, append-only buffer of pending envelopes.
// When full, new envelopes are refused and counted; the oldest are kept.
type Queue struct {
	mu      sync.Mutex
	items   []envelope.Envelope
	max     int
	dropped uint64
}

// NewQueue creates a queue holding at most max envelopes.
// A non-positive max selects DefaultQueueSize.
func NewQueue(max int) *Queue {
	if max <= 0 {
		max = DefaultQueueSize
	}
	return &Queue{
		items: make([]envelope.Envelope, 0, max),
		max:   max,
	}
}

// Append adds e to the tail. It returns false, leaving the queue unchanged,
// when the queue is already full.
func (q *Queue) Append(e envelope.Envelope) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.max {
		q.dropped++
		return false
	}
	q.items = append(q.items, e)
	return true
}

// DrainAll returns the queued envelopes in insertion order and empties the queue.
func (q *Queue) DrainAll() []envelope.Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = make([]envelope.Envelope, 0, q.max)
	return out
}

// Len returns the number of pending envelopes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the queue bound.
func (q *Queue) Cap() int {
	return q.max
}

// Dropped returns how many appends were refused since creation.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
