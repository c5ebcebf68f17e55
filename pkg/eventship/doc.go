// Package eventship provides an embeddable client that delivers business
// events (logins, account and user updates, feature usage, subscriptions
// and invoices) to a remote ingestion service.
//
// Events are queued in memory, split into batches whose JSON body never
// exceeds [Config.MaxPostLength], and posted by one of four strategies:
//
//   - sync: blocking POST per batch
//   - async: POST from a detached goroutine, bounded by [Config.MaxInFlight]
//   - exec: POST from a detached curl process
//   - noop: accept everything, send nothing
//
// Delivery is best effort. Failures are logged and reported to an
// [EventHandler]; they are never returned to the caller and never retried.
//
// # Basic Usage
//
//	client, err := eventship.New(eventship.Config{
//	    Endpoint: "https://ingest.example.com/api",
//	    APIKey:   "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	_ = client.Login("acme", "u-42")
//	_ = client.Feature(envelope.FeatureUsage{
//	    ProductID: "crm", ModuleID: "contacts", FeatureID: "export",
//	})
//
// Close flushes the queue and waits for detached deliveries, so it belongs
// on every exit path of the host process.
//
// # Periodic Flush and Plugins
//
// Set [Config.FlushInterval] and call [Client.Start] to flush in the
// background. Plugins registered with [WithPlugin] are initialized by Start
// and shut down by [Client.Stop] or [Client.Close]:
//
//	import "github.com/bft-labs/eventship/plugins/spooltail"
//	import "github.com/bft-labs/eventship/plugins/promstats"
//
//	client, err := eventship.New(cfg,
//	    spooltail.WithSpoolTail(spooltail.Config{Path: "/var/spool/app/events.ndjson"}),
//	    promstats.WithMetrics(prometheus.DefaultRegisterer),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules and
// [CompatibilityMatrix] to check minimum compatible versions.
package eventship
