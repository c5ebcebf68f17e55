// Package promstats exports client delivery metrics to Prometheus.
//
// It is an eventship.EventHandler, registered with WithMetrics:
//
//	client, err := eventship.New(cfg, promstats.WithMetrics(prometheus.DefaultRegisterer))
package promstats

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/eventship/pkg/eventship"
)

const namespace = "eventship"

// Collector counts deliveries, failures and discards.
type Collector struct {
	eventship.BaseEventHandler

	batches   *prometheus.CounterVec
	envelopes *prometheus.CounterVec
	discarded *prometheus.CounterVec
	bytes     *prometheus.HistogramVec
	duration  *prometheus.HistogramVec
	state     prometheus.Gauge
}

// New creates a collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches handed to the transport, by result.",
		}, []string{"strategy", "path", "result"}),
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_delivered_total",
			Help:      "Envelopes in batches the transport accepted.",
		}, []string{"strategy", "path"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelopes_discarded_total",
			Help:      "Envelopes dropped before delivery, by reason.",
		}, []string{"reason"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_bytes",
			Help:      "Serialized batch size.",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 9),
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Time spent in the transport per successful batch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Lifecycle state: 0 stopped, 1 starting, 2 running, 3 stopping, 4 crashed.",
		}),
	}

	for _, m := range []prometheus.Collector{c.batches, c.envelopes, c.discarded, c.bytes, c.duration, c.state} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return c, nil
}

// WithMetrics registers a Collector with reg and attaches it to the client.
// It panics if registration fails, like prometheus.MustRegister.
func WithMetrics(reg prometheus.Registerer) eventship.Option {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return eventship.WithEventHandler(c)
}

func (c *Collector) OnDeliverySuccess(e eventship.DeliverySuccessEvent) {
	c.batches.WithLabelValues(e.Strategy, e.Path, "success").Inc()
	c.envelopes.WithLabelValues(e.Strategy, e.Path).Add(float64(e.Envelopes))
	c.bytes.WithLabelValues(e.Strategy).Observe(float64(e.Bytes))
	c.duration.WithLabelValues(e.Strategy).Observe(e.Duration.Seconds())
}

func (c *Collector) OnDeliveryError(e eventship.DeliveryErrorEvent) {
	c.batches.WithLabelValues(e.Strategy, e.Path, "failure").Inc()
	c.bytes.WithLabelValues(e.Strategy).Observe(float64(e.Bytes))
}

func (c *Collector) OnDiscard(e eventship.DiscardEvent) {
	c.discarded.WithLabelValues(string(e.Reason)).Add(float64(e.Count))
}

func (c *Collector) OnStateChange(e eventship.StateChangeEvent) {
	c.state.Set(float64(e.Current))
}
