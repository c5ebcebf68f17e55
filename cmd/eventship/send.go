package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/eventship"
)

// maxStdinLine bounds a single NDJSON envelope read by "send -".
const maxStdinLine = 1 << 20

type sendFlags struct {
	event          string
	accountID      string
	userID         string
	productID      string
	moduleID       string
	featureID      string
	total          int
	subscriptionID string
	invoiceID      string
	traits         map[string]string
}

// tally counts envelopes that never reached the service.
type tally struct {
	eventship.BaseEventHandler
	failed    atomic.Int64
	discarded atomic.Int64
}

func (t *tally) OnDeliveryError(e eventship.DeliveryErrorEvent) { t.failed.Add(int64(e.Envelopes)) }
func (t *tally) OnDiscard(e eventship.DiscardEvent)             { t.discarded.Add(int64(e.Count)) }

func newSendCommand(c *cli) *cobra.Command {
	var sf sendFlags

	cmd := &cobra.Command{
		Use:   "send <track|login|logout|account|user|feature|subscription|invoice|->",
		Short: "Send one envelope, or NDJSON envelopes from stdin with '-'",
		Args:  cobra.ExactArgs(1),
		ValidArgs: []string{
			"track", "login", "logout", "account", "user",
			"feature", "subscription", "invoice", "-",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}

			t := &tally{}
			client, err := c.newClient(eventship.WithEventHandler(t))
			if err != nil {
				return err
			}

			var queued int
			if args[0] == "-" {
				queued, err = appendStdin(cmd.Context(), client, cmd.InOrStdin())
			} else {
				err = sendOne(client, args[0], sf)
				queued = 1
			}
			if closeErr := client.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			lost := t.failed.Load() + t.discarded.Load()
			c.log.Info().Int("queued", queued).Int64("lost", lost).Str("strategy", client.Strategy()).Msg("send complete")
			if lost > 0 {
				return fmt.Errorf("%d of %d envelope(s) not delivered", lost, queued)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&sf.event, "event", "", "event name (track)")
	f.StringVar(&sf.accountID, "account", "", "account id")
	f.StringVar(&sf.userID, "user", "", "user id")
	f.StringVar(&sf.productID, "product", "", "product id (feature)")
	f.StringVar(&sf.moduleID, "module", "", "module id (feature)")
	f.StringVar(&sf.featureID, "feature", "", "feature id (feature)")
	f.IntVar(&sf.total, "total", 1, "usage count (feature)")
	f.StringVar(&sf.subscriptionID, "subscription", "", "subscription id")
	f.StringVar(&sf.invoiceID, "invoice", "", "invoice id (invoice)")
	f.StringToStringVar(&sf.traits, "trait", nil, "trait key=value, repeatable")
	return cmd
}

func sendOne(client *eventship.Client, kind string, sf sendFlags) error {
	traits := make(map[string]any, len(sf.traits))
	for k, v := range sf.traits {
		traits[k] = v
	}

	switch kind {
	case "track":
		return client.Track(sf.event, sf.accountID, sf.userID)
	case "login":
		return client.Login(sf.accountID, sf.userID)
	case "logout":
		return client.Logout(sf.accountID, sf.userID)
	case "account":
		return client.Account(sf.accountID, traits)
	case "user":
		return client.User(sf.accountID, sf.userID, traits)
	case "feature":
		return client.Feature(envelope.FeatureUsage{
			AccountID: sf.accountID,
			UserID:    sf.userID,
			ProductID: sf.productID,
			ModuleID:  sf.moduleID,
			FeatureID: sf.featureID,
			Total:     sf.total,
		})
	case "subscription":
		return client.Subscription(sf.accountID, sf.subscriptionID, traits)
	case "invoice":
		return client.Invoice(sf.accountID, sf.subscriptionID, sf.invoiceID, traits)
	default:
		return fmt.Errorf("unknown envelope type %q", kind)
	}
}

// appendStdin queues one envelope per line, flushing whenever the queue
// refuses an envelope so that large inputs are not truncated.
func appendStdin(ctx context.Context, client *eventship.Client, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxStdinLine)

	var n, lineNo int
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		e, err := envelope.Decode(line)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !client.Append(e) {
			return n, fmt.Errorf("line %d: client closed", lineNo)
		}
		n++
		if client.Pending() >= client.QueueCapacity() {
			client.Flush(ctx)
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read stdin: %w", err)
	}
	return n, nil
}
