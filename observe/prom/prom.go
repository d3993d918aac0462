// Package prom provides a Prometheus-backed buffer.Observer.
package prom

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/NetPo4ki/go-buffer/buffer"
)

// Metrics exports buffer traffic and lifecycle as Prometheus collectors and
// keeps in-memory mirrors of the counters for cheap inspection.
type Metrics struct {
	sent     prometheus.Counter
	received prometheus.Counter
	special  prometheus.Counter
	blocked  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	open     prometheus.Gauge
	inFlight prometheus.Gauge
	wait     *prometheus.HistogramVec

	// mirrors
	nSent      atomic.Int64
	nReceived  atomic.Int64
	nSpecial   atomic.Int64
	nBlocked   atomic.Int64
	nRejected  atomic.Int64
	nOpen      atomic.Int64
	bytesInUse atomic.Int64
}

const subsystem = "buffer"

func counterOpts(namespace, name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help}
}

// New creates the collectors under namespace and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		sent:     prometheus.NewCounter(counterOpts(namespace, "messages_sent_total", "Messages admitted by Send.")),
		received: prometheus.NewCounter(counterOpts(namespace, "messages_received_total", "Messages returned by Receive.")),
		special:  prometheus.NewCounter(counterOpts(namespace, "special_messages_total", "Received messages matching the sentinel payload.")),
		blocked:  prometheus.NewCounterVec(counterOpts(namespace, "blocked_total", "Operations that waited at least once."), []string{"op"}),
		rejected: prometheus.NewCounterVec(counterOpts(namespace, "rejected_total", "Operations that returned an error."), []string{"op", "reason"}),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "open",
			Help:      "Buffers created and not yet closed.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_in_flight",
			Help:      "Bytes sent and not yet received.",
		}),
		wait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "wait_seconds",
			Help:      "Time spent inside successful Send and Receive calls.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.sent, m.received, m.special, m.blocked, m.rejected, m.open, m.inFlight, m.wait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics if registration fails.
func MustNew(reg prometheus.Registerer, namespace string) *Metrics {
	m, err := New(reg, namespace)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Metrics) BufferCreated(_ int) {
	m.open.Inc()
	m.nOpen.Add(1)
}

func (m *Metrics) MessageSent(size int, wait time.Duration) {
	m.sent.Inc()
	m.inFlight.Add(float64(size))
	m.wait.WithLabelValues(buffer.OpSend.String()).Observe(wait.Seconds())
	m.nSent.Add(1)
	m.bytesInUse.Add(int64(size))
}

func (m *Metrics) MessageReceived(size int, wait time.Duration, special bool) {
	m.received.Inc()
	m.inFlight.Sub(float64(size))
	m.wait.WithLabelValues(buffer.OpReceive.String()).Observe(wait.Seconds())
	m.nReceived.Add(1)
	m.bytesInUse.Add(-int64(size))
	if special {
		m.special.Inc()
		m.nSpecial.Add(1)
	}
}

func (m *Metrics) Blocked(op buffer.Op) {
	m.blocked.WithLabelValues(op.String()).Inc()
	m.nBlocked.Add(1)
}

func (m *Metrics) OperationRejected(op buffer.Op, err error) {
	m.rejected.WithLabelValues(op.String(), Reason(err)).Inc()
	m.nRejected.Add(1)
}

func (m *Metrics) BufferClosed() {
	m.open.Dec()
	m.nOpen.Add(-1)
}

// BufferDestroyed drops bytes that were never received from the in-flight gauge.
func (m *Metrics) BufferDestroyed(discarded int) {
	m.inFlight.Sub(float64(discarded))
	m.bytesInUse.Add(-int64(discarded))
}

// Reason maps a buffer error onto a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, buffer.ErrClosed):
		return "closed"
	case errors.Is(err, buffer.ErrDestroy):
		return "open"
	case errors.Is(err, buffer.ErrTooLarge):
		return "too_large"
	default:
		return "error"
	}
}

// Snapshot exposes a copy of current metric values for exporting/inspection.
type Snapshot struct {
	Sent          int64
	Received      int64
	Special       int64
	Blocked       int64
	Rejected      int64
	OpenBuffers   int64
	BytesInFlight int64
}

// GetSnapshot returns the current metrics snapshot.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		Sent:          m.nSent.Load(),
		Received:      m.nReceived.Load(),
		Special:       m.nSpecial.Load(),
		Blocked:       m.nBlocked.Load(),
		Rejected:      m.nRejected.Load(),
		OpenBuffers:   m.nOpen.Load(),
		BytesInFlight: m.bytesInUse.Load(),
	}
}
