package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
)

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 512

// Transport implements ports.Transport with one blocking POST per batch.
type Transport struct {
	config ports.TransportConfig
	client ports.HTTPClient
	logger ports.Logger
	clock  clock.Clock
}

// NewTransport creates the sync transport. client is usually built by NewClient.
func NewTransport(config ports.TransportConfig, client ports.HTTPClient, logger ports.Logger) *Transport {
	return NewTransportWithClock(config, client, logger, clock.New())
}

// NewTransportWithClock is NewTransport with an explicit clock for timing sends.
func NewTransportWithClock(config ports.TransportConfig, client ports.HTTPClient, logger ports.Logger, clk clock.Clock) *Transport {
	if clk == nil {
		clk = clock.New()
	}
	return &Transport{
		config: config,
		client: client,
		logger: logger,
		clock:  clk,
	}
}

// Name returns the strategy name.
func (t *Transport) Name() string {
	return string(domain.StrategySync)
}

// Enabled reports whether endpoint and API key are configured.
func (t *Transport) Enabled() bool {
	return t.config.Enabled()
}

// Send posts payload and waits for the response. Only 200 counts as success.
func (t *Transport) Send(ctx context.Context, path string, payload []byte) domain.Outcome {
	if !t.Enabled() {
		return domain.Failed(0, domain.ErrTransportDisabled)
	}

	start := t.clock.Now()
	outcome := t.post(ctx, path, payload)
	outcome.Duration = t.clock.Since(start)
	return outcome
}

func (t *Transport) post(ctx context.Context, path string, payload []byte) domain.Outcome {
	url := t.config.Endpoint + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.Failed(0, fmt.Errorf("create request: %w", err))
	}
	for _, h := range t.config.Headers() {
		req.Header.Set(h[0], h[1])
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Failed(0, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_, _ = io.Copy(io.Discard, resp.Body)

	if t.config.Debug {
		t.logger.Debug("ingestion response",
			ports.String("url", url),
			ports.Int("status", resp.StatusCode),
			ports.String("body", string(body)),
		)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Failed(resp.StatusCode, fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}
	return domain.Succeeded(resp.StatusCode)
}
