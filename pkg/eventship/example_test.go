package eventship_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/eventship"
)

// ExampleNew demonstrates how to embed the client in an application.
func ExampleNew() {
	client, err := eventship.New(eventship.Config{
		Endpoint:  "https://ingest.example.com/api",
		APIKey:    "your-api-key",
		Transport: "noop",
	})
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}
	defer client.Close()

	_ = client.Login("acme", "u-42")
	_ = client.Feature(envelope.FeatureUsage{
		ProductID: "crm",
		ModuleID:  "contacts",
		FeatureID: "export",
	})
	fmt.Println("pending:", client.Pending())

	client.Flush(context.Background())
	fmt.Println("pending after flush:", client.Pending())

	// Output:
	// pending: 2
	// pending after flush: 0
}

// ExampleNew_missingKey shows that configuration errors surface at construction.
func ExampleNew_missingKey() {
	_, err := eventship.New(eventship.Config{Endpoint: "https://ingest.example.com/api"})
	fmt.Println(err)

	// Output: eventship: invalid configuration: API key is required
}

// Example_withEventHandler demonstrates how to observe deliveries.
func Example_withEventHandler() {
	client, err := eventship.New(eventship.Config{Disabled: true},
		eventship.WithEventHandler(&discardPrinter{}))
	if err != nil {
		fmt.Printf("failed to create client: %v\n", err)
		return
	}

	_ = client.Account("acme", map[string]any{"plan": "pro"})
	client.Flush(context.Background())

	// Output: discarded 1 envelope(s): disabled
}

// discardPrinter implements eventship.EventHandler.
type discardPrinter struct {
	eventship.BaseEventHandler // Embed for no-op defaults
}

func (discardPrinter) OnDiscard(e eventship.DiscardEvent) {
	fmt.Printf("discarded %d envelope(s): %s\n", e.Count, e.Reason)
}

// Example_moduleVersions demonstrates version checking.
func Example_moduleVersions() {
	fmt.Println("eventship version:", eventship.Version)
	fmt.Println("batch version:", eventship.ModuleVersions()["batch"])

	// Output:
	// eventship version: 1.0.0
	// batch version: 1.0.0
}
