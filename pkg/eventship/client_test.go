package eventship_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/eventship/pkg/envelope"
	"github.com/bft-labs/eventship/pkg/eventship"
)

type ingestRequest struct {
	Path      string
	Auth      string
	Size      int
	Envelopes []envelope.Envelope
}

// ingest is a fake ingestion service recording every request.
type ingest struct {
	mu       sync.Mutex
	requests []ingestRequest
	status   int
}

func newIngest(t *testing.T) (*ingest, *httptest.Server) {
	t.Helper()
	in := &ingest{status: http.StatusOK}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var envs []envelope.Envelope
		if err := json.Unmarshal(body, &envs); err != nil {
			t.Errorf("body is not a JSON array: %v", err)
		}
		in.mu.Lock()
		in.requests = append(in.requests, ingestRequest{
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			Size:      len(body),
			Envelopes: envs,
		})
		status := in.status
		in.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return in, server
}

func (in *ingest) Requests() []ingestRequest {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]ingestRequest(nil), in.requests...)
}

type recordingHandler struct {
	eventship.BaseEventHandler
	mu        sync.Mutex
	discards  map[eventship.DiscardReason]int
	successes []eventship.DeliverySuccessEvent
	failures  []eventship.DeliveryErrorEvent
	states    []eventship.State
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{discards: make(map[eventship.DiscardReason]int)}
}

func (h *recordingHandler) OnDiscard(e eventship.DiscardEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discards[e.Reason] += e.Count
}

func (h *recordingHandler) OnDeliverySuccess(e eventship.DeliverySuccessEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.successes = append(h.successes, e)
}

func (h *recordingHandler) OnDeliveryError(e eventship.DeliveryErrorEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, e)
}

func (h *recordingHandler) OnStateChange(e eventship.StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e.Current)
}

func trackEnvelope(event string) envelope.Envelope {
	return envelope.Envelope{
		envelope.FieldType:      string(envelope.TypeTrack),
		envelope.FieldTimestamp: "2024-03-01T12:30:00+0000",
		envelope.FieldEvent:     event,
	}
}

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  eventship.Config
	}{
		{"empty endpoint", eventship.Config{APIKey: "k"}},
		{"empty key", eventship.Config{Endpoint: "https://ingest.example.com"}},
		{"blank key", eventship.Config{Endpoint: "https://ingest.example.com", APIKey: "   "}},
		{"endpoint not a URL", eventship.Config{Endpoint: "ingest", APIKey: "k"}},
		{"unknown transport", eventship.Config{Endpoint: "https://x.io", APIKey: "k", Transport: "carrier-pigeon"}},
		{"bad proxy", eventship.Config{Endpoint: "https://x.io", APIKey: "k", Proxy: "ftp://p"}},
		{"negative queue", eventship.Config{Endpoint: "https://x.io", APIKey: "k", QueueSize: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := eventship.New(tt.cfg)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, eventship.ErrInvalidConfig)
		})
	}
}

func TestClient_QueueOverflowKeepsOldest(t *testing.T) {
	in, server := newIngest(t)
	handler := newRecordingHandler()
	c, err := eventship.New(eventship.Config{
		Endpoint:  server.URL,
		APIKey:    "key",
		QueueSize: 3,
	}, eventship.WithEventHandler(handler))
	require.NoError(t, err)

	for _, ev := range []string{"a", "b", "c", "d", "e"} {
		c.Append(trackEnvelope(ev))
	}
	assert.Equal(t, 3, c.Pending())
	assert.Equal(t, uint64(2), c.Dropped())

	c.Flush(context.Background())

	reqs := in.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, envelope.PathTrack, reqs[0].Path)
	assert.Equal(t, "Bearer key", reqs[0].Auth)
	require.Len(t, reqs[0].Envelopes, 3)
	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, reqs[0].Envelopes[i].Event())
	}
	assert.Equal(t, 2, handler.discards[eventship.ReasonQueueOverflow])
	assert.Zero(t, c.Pending())
}

func TestClient_SplitsIntoBoundedBatches(t *testing.T) {
	in, server := newIngest(t)

	one, err := json.Marshal([]envelope.Envelope{trackEnvelope("evt-1")})
	require.NoError(t, err)
	max := len(one) + len(one)/2

	c, err := eventship.New(eventship.Config{
		Endpoint:      server.URL,
		APIKey:        "key",
		MaxPostLength: max,
	})
	require.NoError(t, err)

	for _, ev := range []string{"evt-1", "evt-2", "evt-3", "evt-4"} {
		c.Append(trackEnvelope(ev))
	}
	c.Flush(context.Background())

	reqs := in.Requests()
	assert.GreaterOrEqual(t, len(reqs), 2)
	var got []string
	for _, r := range reqs {
		assert.LessOrEqual(t, r.Size, max)
		for _, e := range r.Envelopes {
			got = append(got, e.Event())
		}
	}
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3", "evt-4"}, got)
}

func TestClient_FailuresAreNotReturned(t *testing.T) {
	in, server := newIngest(t)
	in.status = http.StatusServiceUnavailable
	handler := newRecordingHandler()

	c, err := eventship.New(eventship.Config{Endpoint: server.URL, APIKey: "key"},
		eventship.WithEventHandler(handler))
	require.NoError(t, err)

	require.NoError(t, c.Account("acme", map[string]any{"plan": "pro"}))
	require.NoError(t, c.User("acme", "u-1", nil))
	c.Flush(context.Background())

	assert.Len(t, in.Requests(), 2, "every batch is attempted")
	require.Len(t, handler.failures, 2)
	assert.Equal(t, http.StatusServiceUnavailable, handler.failures[0].StatusCode)
	assert.Equal(t, "sync", handler.failures[0].Strategy)
	assert.Zero(t, c.Pending(), "queue is cleared even when delivery fails")
}

func TestClient_DisabledDiscardsWithoutIO(t *testing.T) {
	in, _ := newIngest(t)
	handler := newRecordingHandler()

	c, err := eventship.New(eventship.Config{Disabled: true}, eventship.WithEventHandler(handler))
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Login("acme", "u-1"))
	c.Flush(context.Background())

	assert.Empty(t, in.Requests())
	assert.Equal(t, 1, handler.discards[eventship.ReasonDisabled])
}

func TestClient_NoopStrategy(t *testing.T) {
	c, err := eventship.New(eventship.Config{
		Endpoint:  "https://ingest.example.com",
		APIKey:    "key",
		Transport: "noop",
	})
	require.NoError(t, err)
	assert.Equal(t, "noop", c.Strategy())

	require.NoError(t, c.Login("acme", "u-1"))
	c.Flush(context.Background())
	assert.NoError(t, c.Close())
}

func TestClient_AsyncCloseWaitsForDeliveries(t *testing.T) {
	in, server := newIngest(t)
	handler := newRecordingHandler()

	c, err := eventship.New(eventship.Config{
		Endpoint:  server.URL,
		APIKey:    "key",
		Transport: "async",
	}, eventship.WithEventHandler(handler))
	require.NoError(t, err)

	require.NoError(t, c.Login("acme", "u-1"))
	require.NoError(t, c.Account("acme", nil))
	require.NoError(t, c.Close())

	reqs := in.Requests()
	require.Len(t, reqs, 2)
	paths := []string{reqs[0].Path, reqs[1].Path}
	assert.ElementsMatch(t, []string{envelope.PathLogin, envelope.PathAccount}, paths)
	for _, s := range handler.successes {
		assert.True(t, s.Detached)
	}
}

func TestClient_RoutesAndSession(t *testing.T) {
	in, server := newIngest(t)
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC))

	c, err := eventship.New(eventship.Config{Endpoint: server.URL + "/", APIKey: " key "},
		eventship.WithClock(mock),
		eventship.WithIDGenerator(func() string { return "id" }))
	require.NoError(t, err)

	require.NoError(t, c.Login("acme", "u-1"))
	acct, user := c.Session()
	assert.Equal(t, "acme", acct)
	assert.Equal(t, "u-1", user)

	require.NoError(t, c.Feature(envelope.FeatureUsage{ProductID: "crm", ModuleID: "contacts", FeatureID: "export"}))
	require.NoError(t, c.Subscription("acme", "sub-1", nil))
	require.NoError(t, c.Invoice("", "sub-1", "inv-9", nil))
	require.NoError(t, c.Logout("", ""))
	c.Flush(context.Background())

	acct, user = c.Session()
	assert.Empty(t, acct)
	assert.Empty(t, user)

	reqs := in.Requests()
	var paths []string
	for _, r := range reqs {
		paths = append(paths, r.Path)
		assert.Equal(t, "Bearer key", r.Auth)
	}
	assert.Equal(t, []string{
		envelope.PathLogin,
		envelope.PathFeature,
		envelope.PathSubscription,
		envelope.PathInvoice,
		envelope.PathLogout,
	}, paths)

	feature := reqs[1].Envelopes[0]
	assert.Equal(t, "acme", feature[envelope.FieldAccountID])
	assert.Equal(t, "u-1", feature[envelope.FieldUserID])
	assert.Equal(t, float64(1), feature[envelope.FieldTotal])
	assert.Equal(t, "2024-03-01T12:30:00+0000", feature.Timestamp())

	logout := reqs[4].Envelopes[0]
	assert.Equal(t, "acme", logout[envelope.FieldAccountID])
}

func TestClient_ValidationErrorsAreReturned(t *testing.T) {
	c, err := eventship.New(eventship.Config{Transport: "noop", Disabled: true})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Logout("", ""), envelope.ErrMissingAccountID)
	assert.ErrorIs(t, c.User("acme", "", nil), envelope.ErrMissingUserID)
	assert.Zero(t, c.Pending())
}

func TestClient_PeriodicFlush(t *testing.T) {
	in, server := newIngest(t)
	mock := clock.NewMock()

	c, err := eventship.New(eventship.Config{
		Endpoint:      server.URL,
		APIKey:        "key",
		FlushInterval: time.Minute,
	}, eventship.WithClock(mock))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, eventship.StateRunning, c.Status())
	assert.ErrorIs(t, c.Start(context.Background()), eventship.ErrAlreadyRunning)

	require.NoError(t, c.Account("acme", nil))
	require.Eventually(t, func() bool {
		mock.Add(time.Minute)
		return len(in.Requests()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Stop())
	assert.Equal(t, eventship.StateStopped, c.Status())
	assert.ErrorIs(t, c.Stop(), eventship.ErrNotRunning)
	require.NoError(t, c.Close())
}

func TestClient_CloseFlushesAndRejectsLaterAppends(t *testing.T) {
	in, server := newIngest(t)

	c, err := eventship.New(eventship.Config{Endpoint: server.URL, APIKey: "key"})
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Login("acme", "u-1"))

	require.NoError(t, c.Close())
	assert.Len(t, in.Requests(), 1)

	assert.False(t, c.Append(trackEnvelope("late")))
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), eventship.ErrClosed)
}

type stubPlugin struct {
	name    string
	order   *[]string
	initErr error
	stopErr error
	sink    eventship.Sink
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Initialize(_ context.Context, cfg eventship.PluginConfig) error {
	if p.initErr != nil {
		return p.initErr
	}
	p.sink = cfg.Sink
	*p.order = append(*p.order, "init:"+p.name)
	return nil
}

func (p *stubPlugin) Shutdown(context.Context) error {
	*p.order = append(*p.order, "stop:"+p.name)
	return p.stopErr
}

func TestClient_PluginLifecycle(t *testing.T) {
	var order []string
	first := &stubPlugin{name: "first", order: &order}
	second := &stubPlugin{name: "second", order: &order}
	handler := newRecordingHandler()

	c, err := eventship.New(eventship.Config{Transport: "noop", Disabled: true},
		eventship.WithPlugin(first),
		eventship.WithPlugin(second),
		eventship.WithEventHandler(handler))
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	require.NotNil(t, first.sink)
	assert.True(t, first.sink.Append(trackEnvelope("from-plugin")))
	require.NoError(t, c.Stop())

	assert.Equal(t, []string{"init:first", "init:second", "stop:second", "stop:first"}, order)
	assert.Equal(t, []eventship.State{
		eventship.StateStarting,
		eventship.StateRunning,
		eventship.StateStopping,
		eventship.StateStopped,
	}, handler.states)
	assert.Equal(t, 1, c.Pending())
}

func TestClient_PluginInitFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	ok := &stubPlugin{name: "ok", order: &order}
	bad := &stubPlugin{name: "bad", order: &order, initErr: boom}

	c, err := eventship.New(eventship.Config{Disabled: true},
		eventship.WithPlugin(ok),
		eventship.WithPlugin(bad))
	require.NoError(t, err)

	err = c.Start(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, eventship.StateCrashed, c.Status())
	assert.Equal(t, []string{"init:ok", "stop:ok"}, order)
}

func TestClient_PluginShutdownErrorsAreCombined(t *testing.T) {
	var order []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	c, err := eventship.New(eventship.Config{Disabled: true},
		eventship.WithPlugin(&stubPlugin{name: "a", order: &order, stopErr: errA}),
		eventship.WithPlugin(&stubPlugin{name: "b", order: &order, stopErr: errB}))
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	err = c.Close()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestModuleVersions(t *testing.T) {
	versions := eventship.ModuleVersions()
	assert.Equal(t, eventship.Version, versions["eventship"])
	assert.Contains(t, versions, "batch")
	assert.Contains(t, versions, "envelope")
	assert.Contains(t, eventship.CompatibilityMatrix(), "log")
}
