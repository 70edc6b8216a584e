package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds per-session counters. Nothing listens on a port; the
// registry is dumped to a node_exporter textfile on exit when configured.
type Metrics struct {
	reg *prometheus.Registry

	Lines      prometheus.Counter
	Transforms *prometheus.CounterVec // op, result
	BatchUnits prometheus.Counter
	SinkPushes *prometheus.CounterVec // sink, result
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Lines: f.NewCounter(prometheus.CounterOpts{
			Namespace: "serialx",
			Name:      "session_lines_total",
			Help:      "Input lines read by the interactive session.",
		}),
		Transforms: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialx",
			Name:      "transforms_total",
			Help:      "Serial transformations by operation and result.",
		}, []string{"op", "result"}),
		BatchUnits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "serialx",
			Name:      "batch_units_total",
			Help:      "Serials produced by batch generation.",
		}),
		SinkPushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialx",
			Name:      "sink_pushes_total",
			Help:      "Batches handed to sinks by sink and result.",
		}, []string{"sink", "result"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile is a no-op for an empty path.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
