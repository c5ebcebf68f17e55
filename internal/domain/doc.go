// Package domain contains the core value types and errors shared by the
// delivery subsystem.
//
// It has no dependencies on infrastructure concerns (HTTP, processes,
// logging). Envelopes themselves live in pkg/envelope so that callers can
// build them without importing internal packages.
//
// # Types
//
//   - [Outcome]: the result of one delivery attempt, used only for logging
//   - [Strategy]: the name of a delivery strategy selected by configuration
//   - [DiscardReason]: why an envelope never reached the transport
package domain
