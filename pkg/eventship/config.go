package eventship

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	httpAdapter "github.com/bft-labs/eventship/internal/adapters/http"
	"github.com/bft-labs/eventship/internal/app"
	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/pkg/batch"
)

// Default configuration values.
const (
	DefaultTransport      = "sync"
	DefaultMaxPostLength  = batch.DefaultMaxBytes
	DefaultQueueSize      = app.DefaultQueueSize
	DefaultConnectTimeout = httpAdapter.DefaultConnectTimeout
	DefaultTimeout        = httpAdapter.DefaultTimeout
	DefaultMaxInFlight    = 16
)

// Config contains the configuration of a Client.
type Config struct {
	// Endpoint is the base URL of the ingestion service. Required unless Disabled.
	Endpoint string

	// APIKey is sent as a bearer credential. Required unless Disabled.
	APIKey string

	// Disabled builds a client that accepts events and discards them at flush.
	Disabled bool

	// Transport selects the delivery strategy: sync, async, exec or noop.
	// Default: sync
	Transport string

	// Proxy is an optional http, https or socks5 proxy URL.
	Proxy string

	// Debug logs every delivered batch and every response body.
	Debug bool

	// MaxPostLength is the request body ceiling in bytes.
	// Default: 65536
	MaxPostLength int

	// QueueSize is the maximum number of envelopes held between flushes.
	// Default: 100
	QueueSize int

	// ConnectTimeout bounds connection establishment.
	// Default: 5s
	ConnectTimeout time.Duration

	// Timeout bounds a whole delivery request.
	// Default: 10s
	Timeout time.Duration

	// FlushInterval enables a periodic flush while the client is started.
	// Zero disables it; the queue is then flushed only explicitly and on Close.
	FlushInterval time.Duration

	// MaxInFlight bounds concurrent detached deliveries for the async strategy.
	// Default: 16
	MaxInFlight int

	// StateDir is handed to plugins that persist state, such as the spool tailer.
	StateDir string
}

// SetDefaults trims string fields and fills unset values.
func (c *Config) SetDefaults() {
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Proxy = strings.TrimSpace(c.Proxy)
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))

	if c.Transport == "" {
		c.Transport = DefaultTransport
	}
	if c.MaxPostLength == 0 {
		c.MaxPostLength = DefaultMaxPostLength
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxInFlight == 0 {
		c.MaxInFlight = DefaultMaxInFlight
	}
}

// Validate checks the configuration. All errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if !c.Disabled {
		if c.Endpoint == "" {
			return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
		}
		if c.APIKey == "" {
			return fmt.Errorf("%w: API key is required", ErrInvalidConfig)
		}
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: endpoint %q must be an http or https URL", ErrInvalidConfig, c.Endpoint)
		}
	}
	if _, err := domain.ParseStrategy(c.Transport); err != nil {
		return err
	}
	if _, err := httpAdapter.ParseProxy(c.Proxy); err != nil {
		return err
	}
	if c.MaxPostLength < 0 {
		return fmt.Errorf("%w: max post length must be positive", ErrInvalidConfig)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("%w: queue size must be positive", ErrInvalidConfig)
	}
	if c.ConnectTimeout < 0 || c.Timeout < 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("%w: flush interval must not be negative", ErrInvalidConfig)
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("%w: max in-flight must be positive", ErrInvalidConfig)
	}
	return nil
}
