package batch

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultMaxBytes is the default request body ceiling of the ingestion service.
const DefaultMaxBytes = 64 << 10

// ErrInvalidLimit is returned when maxBytes is not positive.
var ErrInvalidLimit = errors.New("batch: max bytes must be positive")

// Batch is a contiguous group of items and their serialized form.
type Batch[T any] struct {
	Items   []T
	Payload []byte
}

// Size returns the number of items in the batch.
func (b Batch[T]) Size() int {
	return len(b.Items)
}

// Result is the output of Split.
type Result[T any] struct {
	// Batches are ready to send, in input order.
	Batches []Batch[T]

	// Dropped are single items whose own serialization exceeds the ceiling.
	Dropped []T
}

// Encoder serializes a group of items into one request body.
type Encoder func(v any) ([]byte, error)

// Split partitions items into batches whose JSON array encoding is at most
// maxBytes long.
func Split[T any](items []T, maxBytes int) (Result[T], error) {
	return SplitWith(items, maxBytes, json.Marshal)
}

// SplitWith is Split with a custom encoder. The encoder receives a []T.
func SplitWith[T any](items []T, maxBytes int, encode Encoder) (Result[T], error) {
	var res Result[T]
	if maxBytes <= 0 {
		return res, ErrInvalidLimit
	}
	if err := split(items, maxBytes, encode, &res); err != nil {
		return Result[T]{}, err
	}
	return res, nil
}

func split[T any](items []T, maxBytes int, encode Encoder, res *Result[T]) error {
	if len(items) == 0 {
		return nil
	}

	payload, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %d items: %w", len(items), err)
	}

	total := len(payload)
	if total <= maxBytes {
		res.Batches = append(res.Batches, Batch[T]{Items: items, Payload: payload})
		return nil
	}

	// A lone item that does not fit can never be delivered.
	if len(items) == 1 {
		res.Dropped = append(res.Dropped, items[0])
		return nil
	}

	chunks := (total + maxBytes - 1) / maxBytes
	size := len(items) / chunks
	if size < 1 {
		size = 1
	}

	// chunks >= 2 here, so size < len(items) and every recursion shrinks.
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		if err := split(items[start:end:end], maxBytes, encode, res); err != nil {
			return err
		}
	}
	return nil
}
