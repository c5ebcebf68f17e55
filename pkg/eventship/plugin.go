package eventship

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/eventship/pkg/envelope"
)

// Plugin extends a client with background work started by Client.Start.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize starts the plugin. Long-running work must run in its own
	// goroutine and stop when ctx is done or Shutdown is called.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and waits for its goroutines.
	Shutdown(ctx context.Context) error
}

// Sink accepts envelopes on behalf of a client.
type Sink interface {
	Append(e envelope.Envelope) bool
	Flush(ctx context.Context)
}

// PluginConfig is handed to plugins at initialization.
type PluginConfig struct {
	Sink     Sink
	Logger   Logger
	Clock    clock.Clock
	StateDir string
}
