// Package metrics exports tile activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/tiled/internal/tile"
)

const namespace = "tiled"

// Metrics holds the collectors on a private registry so tests can build
// as many as they like.
type Metrics struct {
	reg *prometheus.Registry

	events    *prometheus.CounterVec
	value     *prometheus.GaugeVec
	current   *prometheus.GaugeVec
	pending   *prometheus.GaugeVec
	published *prometheus.CounterVec
}

// New creates the collectors, including the Go runtime and process ones.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_events_total",
			Help:      "Tile events delivered to listeners.",
		}, []string{"tile", "type"}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_value",
			Help:      "Target value of each tile.",
		}, []string{"tile"}),
		current: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_current_value",
			Help:      "Displayed value of each tile, including in-flight animation.",
		}, []string{"tile"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tile_pending_events",
			Help:      "Events queued while a tile is not visible.",
		}, []string{"tile"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_publish_total",
			Help:      "MQTT publish attempts by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.events, m.value, m.current, m.pending, m.published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listener returns a tile listener that counts events for name.
func (m *Metrics) Listener(name string) tile.Listener {
	return eventCounter{name: name, events: m.events}
}

type eventCounter struct {
	name   string
	events *prometheus.CounterVec
}

func (c eventCounter) OnTileEvent(e tile.Event) {
	c.events.WithLabelValues(c.name, string(e.Type)).Inc()
}

// Observe copies t's values into the gauges. Call it on the main loop.
func (m *Metrics) Observe(name string, t *tile.Tile) {
	m.value.WithLabelValues(name).Set(t.Value())
	m.current.WithLabelValues(name).Set(t.CurrentValue())
	m.pending.WithLabelValues(name).Set(float64(t.PendingEvents()))
}

// RecordPublish counts one MQTT publish attempt.
func (m *Metrics) RecordPublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(result).Inc()
}
