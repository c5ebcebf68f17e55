package eventship

import "github.com/bft-labs/eventship/internal/domain"

// Errors returned by the client. Delivery failures are never returned; they
// are logged and reported to event handlers.
var (
	ErrInvalidConfig       = domain.ErrInvalidConfig
	ErrUnsupportedPlatform = domain.ErrUnsupportedPlatform
	ErrSpawnUnavailable    = domain.ErrSpawnUnavailable
	ErrAlreadyRunning      = domain.ErrAlreadyRunning
	ErrNotRunning          = domain.ErrNotRunning
	ErrShutdownTimeout     = domain.ErrShutdownTimeout
	ErrClosed              = domain.ErrClosed
)
