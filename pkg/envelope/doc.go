// Package envelope builds the normalized event records shipped by eventship.
//
// An [Envelope] is a flat JSON object with a "type" discriminator, an
// ISO-8601 "timestamp" and a "messageId". The [Builder] validates the
// identifiers each event type needs and stamps time and id from injectable
// sources so tests stay deterministic.
//
// # Usage
//
//	b := envelope.NewBuilder()
//	e, err := b.Feature(envelope.FeatureUsage{
//	    AccountID: "acct-1",
//	    UserID:    "user-1",
//	    ProductID: "crm",
//	    ModuleID:  "reports",
//	    FeatureID: "export",
//	})
//
// [Route] maps an envelope to the resource path it is posted to.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package envelope
