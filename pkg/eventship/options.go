package eventship

import (
	"github.com/benbjohnson/clock"

	"github.com/bft-labs/eventship/internal/ports"
	"github.com/bft-labs/eventship/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the structured logger interface from pkg/log.
type Logger = log.Logger

// LogField is a structured log field.
type LogField = log.Field

// Transport delivers one serialized batch. Supply a custom implementation
// with WithTransport.
type Transport = ports.Transport

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	httpClient    ports.HTTPClient
	logger        ports.Logger
	transport     ports.Transport
	eventHandlers []EventHandler
	plugins       []Plugin
	clock         clock.Clock
	idGenerator   func() string
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clock.New(),
	}
}

// WithHTTPClient sets the HTTP client used by the sync and async strategies.
// When set, Proxy and the timeouts in Config are the caller's responsibility.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger. If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport replaces the configured strategy with t.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithEventHandler registers a handler for client events. It may be given
// more than once; handlers are called in registration order.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandlers = append(o.eventHandlers, handler)
	}
}

// WithPlugin registers a plugin to be initialized when the client starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithClock sets the clock used for envelope timestamps and periodic flushes.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithIDGenerator overrides how envelope message ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.idGenerator = fn
	}
}
