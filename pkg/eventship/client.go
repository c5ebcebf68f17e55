package eventship

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	asyncAdapter "github.com/bft-labs/eventship/internal/adapters/async"
	execAdapter "github.com/bft-labs/eventship/internal/adapters/exec"
	httpAdapter "github.com/bft-labs/eventship/internal/adapters/http"
	noopAdapter "github.com/bft-labs/eventship/internal/adapters/noop"
	"github.com/bft-labs/eventship/internal/app"
	"github.com/bft-labs/eventship/internal/domain"
	"github.com/bft-labs/eventship/internal/ports"
	"github.com/bft-labs/eventship/pkg/envelope"
)

// Client buffers business events and delivers them to the ingestion
// service in size-bounded batches. Use New to create one and Close it
// before the process exits.
type Client struct {
	config     Config
	opts       options
	queue      *app.Queue
	dispatcher *app.Dispatcher
	transport  ports.Transport
	builder    *envelope.Builder
	lifecycle  *app.Lifecycle
	emitter    *emitter
	logger     ports.Logger
	plugins    []Plugin

	flushMu   sync.Mutex
	mu        sync.Mutex
	sessionMu sync.Mutex
	session   session
	closed    atomic.Bool
}

// New creates a client. Configuration problems, including an empty endpoint
// or API key on an enabled client, are returned here and never later.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	transport := o.transport
	if transport == nil {
		var err error
		transport, err = newTransport(cfg, o)
		if err != nil {
			return nil, err
		}
	}

	em := &emitter{strategy: transport.Name(), handlers: o.eventHandlers}

	builderOpts := []envelope.BuilderOption{envelope.WithClock(o.clock)}
	if o.idGenerator != nil {
		builderOpts = append(builderOpts, envelope.WithIDGenerator(o.idGenerator))
	}

	dispatcher := app.NewDispatcher(app.DispatcherConfig{
		MaxPostLength: cfg.MaxPostLength,
		Debug:         cfg.Debug,
	}, transport, logger, em, o.clock)

	c := &Client{
		config:     cfg,
		opts:       o,
		queue:      app.NewQueue(cfg.QueueSize),
		dispatcher: dispatcher,
		transport:  transport,
		builder:    envelope.NewBuilder(builderOpts...),
		lifecycle:  app.NewLifecycleWithClock(logger, em, o.clock),
		emitter:    em,
		logger:     logger,
		plugins:    o.plugins,
	}

	logger.Debug("client created",
		ports.Strategy(transport.Name()),
		ports.Bool("enabled", transport.Enabled()),
		ports.Int("queue_size", cfg.QueueSize),
		ports.Int("max_post_length", cfg.MaxPostLength),
	)
	return c, nil
}

// newTransport builds the strategy named by cfg.Transport. A disabled
// configuration yields a transport that reports itself disabled.
func newTransport(cfg Config, o options) (ports.Transport, error) {
	tc := ports.TransportConfig{
		Endpoint:       cfg.Endpoint,
		APIKey:         cfg.APIKey,
		Proxy:          cfg.Proxy,
		Debug:          cfg.Debug,
		ConnectTimeout: cfg.ConnectTimeout,
		Timeout:        cfg.Timeout,
	}
	if cfg.Disabled {
		tc.Endpoint, tc.APIKey = "", ""
	}

	strategy, err := domain.ParseStrategy(cfg.Transport)
	if err != nil {
		return nil, err
	}
	if cfg.Disabled {
		strategy = domain.StrategySync
	}

	switch strategy {
	case domain.StrategyNoop:
		return noopAdapter.NewTransport(), nil
	case domain.StrategyExec:
		return execAdapter.NewTransport(tc, execAdapter.NewOSLauncher(), o.logger)
	}

	client := o.httpClient
	if client == nil {
		hc, err := httpAdapter.NewClient(tc)
		if err != nil {
			return nil, err
		}
		client = hc
	}
	blocking := httpAdapter.NewTransportWithClock(tc, client, o.logger, o.clock)
	if strategy == domain.StrategyAsync {
		return asyncAdapter.NewTransport(blocking, int64(cfg.MaxInFlight), o.logger), nil
	}
	return blocking, nil
}

// Append queues e for the next flush. It returns false when the client is
// closed or the queue is full; the envelope is then dropped.
func (c *Client) Append(e envelope.Envelope) bool {
	if c.closed.Load() {
		c.logger.Debug("append after close", ports.String("type", string(e.Type())))
		return false
	}
	if !c.queue.Append(e) {
		c.logger.Debug("queue full, dropping envelope",
			ports.String("type", string(e.Type())),
			ports.Int("queue_size", c.queue.Cap()),
		)
		c.emitter.OnDiscard(domain.ReasonQueueOverflow, 1)
		return false
	}
	return true
}

// Flush drains the queue and delivers it. Delivery failures are logged and
// reported to event handlers, never returned. Concurrent flushes are
// serialized.
func (c *Client) Flush(ctx context.Context) {
	c.flush(ctx)
}

func (c *Client) flush(ctx context.Context) app.Report {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	envs := c.queue.DrainAll()
	if len(envs) == 0 {
		return app.Report{}
	}
	return c.dispatcher.Deliver(ctx, envs)
}

// Pending returns the number of queued envelopes.
func (c *Client) Pending() int {
	return c.queue.Len()
}

// QueueCapacity returns the maximum number of queued envelopes.
func (c *Client) QueueCapacity() int {
	return c.queue.Cap()
}

// Dropped returns how many envelopes were refused by a full queue.
func (c *Client) Dropped() uint64 {
	return c.queue.Dropped()
}

// Enabled reports whether deliveries are attempted at all.
func (c *Client) Enabled() bool {
	return c.transport.Enabled()
}

// Strategy returns the name of the delivery strategy in use.
func (c *Client) Strategy() string {
	return c.transport.Name()
}

// Start initializes plugins and, when FlushInterval is set, starts the
// periodic flusher. It returns immediately.
func (c *Client) Start(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Sink:     c,
		Logger:   c.logger,
		Clock:    c.opts.clock,
		StateDir: c.config.StateDir,
	}
	for i, p := range c.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = c.shutdownPlugins(c.plugins[:i])
			_ = c.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		c.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	if c.config.FlushInterval > 0 {
		flusher := app.NewFlusher(c.config.FlushInterval, c.queue, c.flush, c.logger, c.opts.clock)
		c.lifecycle.Go(func() {
			if err := flusher.Run(runCtx); err != nil && err != context.Canceled {
				c.logger.Error("flusher stopped", ports.Err(err))
			}
		})
	}

	return c.lifecycle.TransitionTo(app.StateRunning, "started")
}

// Stop shuts down plugins and the periodic flusher. Pending envelopes stay
// queued; Close flushes them.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.CanStop() {
		return ErrNotRunning
	}
	if err := c.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	c.lifecycle.Cancel()
	err := c.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	err = multierr.Append(err, c.shutdownPlugins(c.plugins))

	if err != nil {
		_ = c.lifecycle.TransitionTo(app.StateCrashed, "shutdown failed")
	} else {
		_ = c.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

func (c *Client) shutdownPlugins(plugins []Plugin) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	var err error
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if shutdownErr := p.Shutdown(ctx); shutdownErr != nil {
			c.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
			err = multierr.Append(err, fmt.Errorf("plugin %s: %w", p.Name(), shutdownErr))
			continue
		}
		c.logger.Debug("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
	return err
}

// Status returns the current lifecycle state.
func (c *Client) Status() State {
	return State(c.lifecycle.State())
}

// Close is the process-exit hook: it stops background work, flushes the
// queue one last time and waits for detached deliveries. Later calls are
// no-ops. Delivery failures are not part of the returned error.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	var err error
	if c.lifecycle.CanStop() {
		err = multierr.Append(err, c.Stop())
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer cancel()

	rep := c.flush(ctx)
	c.logger.Debug("final flush",
		ports.Int("batches", rep.Batches),
		ports.Int("failed", rep.Failed),
		ports.Int("discarded", rep.Discarded),
	)

	if w, ok := c.transport.(ports.Waiter); ok {
		if waitErr := w.Wait(ctx); waitErr != nil {
			c.logger.Warn("detached deliveries still running", ports.Err(waitErr))
			err = multierr.Append(err, fmt.Errorf("%w: %v", ErrShutdownTimeout, waitErr))
		}
	}
	return err
}
