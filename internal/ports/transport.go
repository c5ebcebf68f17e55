package ports

import (
	"context"
	"time"

	"github.com/bft-labs/eventship/internal/domain"
)

// Transport delivers a single serialized batch to the ingestion service.
// Implementations never retry and never panic on delivery failure; the
// outcome is informational only.
type Transport interface {
	// Name returns the strategy name used in logs.
	Name() string

	// Enabled reports whether the transport has an endpoint and API key.
	// A disabled transport performs no I/O and Send reports failure.
	Enabled() bool

	// Send posts payload to the endpoint joined with path.
	Send(ctx context.Context, path string, payload []byte) domain.Outcome
}

// Waiter is implemented by transports that keep deliveries running after
// Send returns. Wait blocks until they finish or ctx is done.
type Waiter interface {
	Wait(ctx context.Context) error
}

// TransportConfig is the validated, immutable configuration shared by all
// transport strategies.
type TransportConfig struct {
	// Endpoint is the base URL of the ingestion service, without trailing slash.
	Endpoint string

	// APIKey is sent as a bearer credential.
	APIKey string

	// Proxy is an optional http, https or socks5 proxy URL.
	Proxy string

	// Debug enables verbose delivery logging.
	Debug bool

	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration

	// Timeout bounds the whole request.
	Timeout time.Duration
}

// Enabled reports whether both endpoint and API key are set.
func (c TransportConfig) Enabled() bool {
	return c.Endpoint != "" && c.APIKey != ""
}

// Headers returns the fixed request headers for every strategy.
func (c TransportConfig) Headers() [][2]string {
	return [][2]string{
		{"Content-Type", "application/json"},
		{"Accept", "application/json"},
		{"Authorization", "Bearer " + c.APIKey},
	}
}
