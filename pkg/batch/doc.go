// Package batch splits outbound items into payloads that fit a byte ceiling.
//
// The ingestion service rejects request bodies above a fixed size, so every
// flush runs the pending envelopes through [Split] before any transport sees
// them. The algorithm estimates how many chunks are needed from the total
// serialized size, cuts the list into contiguous equal-count groups and
// recurses into any group that is still too large. It is independent of the
// transports and can be used to build custom pipelines.
//
// # Usage
//
//	res, err := batch.Split(envelopes, 64<<10)
//	if err != nil {
//	    return err
//	}
//	for _, b := range res.Batches {
//	    // POST b.Payload ...
//	}
//	// res.Dropped holds single items that can never fit.
//
// # Guarantees
//
//   - Order is preserved: concatenating Batches then Dropped in position
//     order reproduces the input.
//   - Every batch payload is at most maxBytes long; an item that alone
//     exceeds maxBytes is dropped rather than sent.
//   - The number of batches is not guaranteed to be minimal. The chunk count
//     assumes items of uniform size, so skewed inputs may produce more,
//     smaller batches than strictly necessary.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package batch
