// Package eventship delivers product telemetry envelopes to an ingestion
// service. It re-exports the client from pkg/eventship for callers that
// prefer the short import path.
//
// Example usage:
//
//	client, err := eventship.New(eventship.Config{
//	    Endpoint: "https://ingest.example.com",
//	    APIKey:   "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	_ = client.Track("signup", "acme", "user-1")
package eventship

import (
	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/eventship"
)

// Config configures a Client. Only Endpoint and APIKey are required.
type Config = eventship.Config

// Client queues envelopes and delivers them in bounded batches.
type Client = eventship.Client

// Option configures optional behavior of a Client.
type Option = eventship.Option

// Envelope is one telemetry event as sent on the wire.
type Envelope = envelope.Envelope

// FeatureUsage describes one feature-usage event.
type FeatureUsage = envelope.FeatureUsage

// Delivery strategies accepted in Config.Transport.
const (
	TransportSync  = "sync"
	TransportAsync = "async"
	TransportExec  = "exec"
	TransportNoop  = "noop"
)

// New validates cfg and returns a ready Client. Configuration problems are
// returned here; delivery problems never are.
func New(cfg Config, opts ...Option) (*Client, error) {
	return eventship.New(cfg, opts...)
}

// Version is the client library version.
const Version = eventship.Version
