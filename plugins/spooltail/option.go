package spooltail

import "github.com/bft-labs/eventship/pkg/eventship"

// WithSpoolTail registers a spool tailer for cfg.Path.
//
// Example:
//
//	client, err := eventship.New(cfg,
//	    spooltail.WithSpoolTail(spooltail.Config{Path: "/var/spool/app/events.ndjson"}),
//	)
func WithSpoolTail(cfg Config) eventship.Option {
	return eventship.WithPlugin(New(cfg))
}
