// Package observability wires protocol events into Prometheus counters.
package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"lendvault/core/events"
)

type engineMetrics struct {
	operations   *prometheus.CounterVec
	liquidations prometheus.Counter
}

var (
	engineMetricsOnce sync.Once
	engineRegistry    *engineMetrics
)

// Engine returns the metrics registry tracking lending engine events.
func Engine() *engineMetrics {
	engineMetricsOnce.Do(func() {
		engineRegistry = &engineMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lendvault",
				Subsystem: "engine",
				Name:      "operations_total",
				Help:      "Count of committed engine operations segmented by kind and token.",
			}, []string{"op", "token"}),
			liquidations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "lendvault",
				Subsystem: "engine",
				Name:      "liquidations_total",
				Help:      "Count of committed liquidation seizures.",
			}),
		}
		prometheus.MustRegister(engineRegistry.operations, engineRegistry.liquidations)
	})
	return engineRegistry
}

// RecordOperation increments the operation counter for the event kind and
// token ticker.
func (m *engineMetrics) RecordOperation(op, token string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToUpper(token))
	if normalized == "" {
		normalized = "UNKNOWN"
	}
	m.operations.WithLabelValues(op, normalized).Inc()
	if op == "lending.liquidate" {
		m.liquidations.Inc()
	}
}

// attributed is satisfied by events that carry a structured payload.
type attributed interface {
	Attributes() map[string]string
}

// MetricsEmitter forwards committed engine events into the Prometheus
// counters and then hands them to the wrapped emitter.
type MetricsEmitter struct {
	next events.Emitter
}

// NewMetricsEmitter wraps the given emitter. A nil next emitter is treated as
// a terminal sink.
func NewMetricsEmitter(next events.Emitter) *MetricsEmitter {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &MetricsEmitter{next: next}
}

// Emit implements the events.Emitter interface.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	token := ""
	if payload, ok := evt.(attributed); ok {
		token = payload.Attributes()["token"]
	}
	Engine().RecordOperation(evt.EventType(), token)
	m.next.Emit(evt)
}
