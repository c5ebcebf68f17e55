package ports

import (
	"context"

	"github.com/bft-labs/eventship/internal/domain"
)

// SpoolStateRepository persists the read position of a tailed spool file.
// Implementations persist state atomically (write to temp file, then rename)
// so a crash never leaves a torn offset.
type SpoolStateRepository interface {
	// Load retrieves the last saved state.
	// Returns an empty state and nil error if no state exists.
	Load(ctx context.Context) (domain.SpoolState, error)

	// Save persists the current state atomically.
	Save(ctx context.Context, state domain.SpoolState) error
}
