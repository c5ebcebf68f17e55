package domain

import "errors"

// Configuration errors are returned synchronously while building a client.
// Delivery errors never leave the dispatcher; they are logged and reported to
// event handlers only. All of them can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("eventship: invalid configuration")

	// ErrUnsupportedPlatform is returned when a strategy cannot run on the
	// current operating system.
	ErrUnsupportedPlatform = errors.New("eventship: strategy not supported on this platform")

	// ErrSpawnUnavailable is returned when the detached-process strategy
	// cannot locate or launch its external HTTP client.
	ErrSpawnUnavailable = errors.New("eventship: process launching unavailable")

	// ErrTransportDisabled is carried by the outcome of a send on a transport
	// without endpoint or API key.
	ErrTransportDisabled = errors.New("eventship: transport disabled")

	// ErrInFlightLimit is carried by the outcome of a detached send dropped
	// because too many deliveries are already running.
	ErrInFlightLimit = errors.New("eventship: too many deliveries in flight")

	// ErrAlreadyRunning is returned when Start() is called on a running client.
	ErrAlreadyRunning = errors.New("eventship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped client.
	ErrNotRunning = errors.New("eventship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("eventship: shutdown timeout")

	// ErrClosed is returned by operations on a closed client.
	ErrClosed = errors.New("eventship: client closed")
)
