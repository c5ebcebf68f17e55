package ports

import "github.com/bft-labs/eventship/pkg/log"

// Logger is the structured logger used by the application layer and adapters.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for internal packages.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Strategy = log.Strategy
	Bytes    = log.Bytes
	Any      = log.Any
)
