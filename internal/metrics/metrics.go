// Package metrics exposes the pipeline's Prometheus instrumentation:
// bandwidth, ack cursor position and playout health, the way an
// operator would want to watch a live link.
//
// Grounded on the prometheus/client_golang usage pattern seen across
// the example pack (gauges/counters registered once at construction,
// updated inline from the hot path with no per-call allocation).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set is the collection of metrics one pipeline instance updates.
type Set struct {
	BandwidthKbps   prometheus.Gauge
	PacketsSent     prometheus.Counter
	PacketsReceived prometheus.Counter
	PacketsDropped  prometheus.Counter
	AckSequence     prometheus.Gauge
	PlayoutStalls   prometheus.Counter
}

// NewSet builds and registers a metrics Set against reg, tagging every
// series with the given link label so multiple pipeline instances
// (e.g. several simulated links in one process) don't collide.
func NewSet(reg prometheus.Registerer, link string) *Set {
	labels := prometheus.Labels{"link": link}

	s := &Set{
		BandwidthKbps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "cubesync",
			Name:        "bandwidth_kbps",
			Help:        "Measured send bandwidth in kilobits per second, excluding ack packets.",
			ConstLabels: labels,
		}),
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cubesync",
			Name:        "packets_sent_total",
			Help:        "Total snapshot packets sent.",
			ConstLabels: labels,
		}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cubesync",
			Name:        "packets_received_total",
			Help:        "Total snapshot packets successfully decoded.",
			ConstLabels: labels,
		}),
		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cubesync",
			Name:        "packets_dropped_total",
			Help:        "Total packets dropped on decode error (missing baseline, truncated buffer).",
			ConstLabels: labels,
		}),
		AckSequence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "cubesync",
			Name:        "ack_sequence",
			Help:        "Sender's current sliding-window ack sequence.",
			ConstLabels: labels,
		}),
		PlayoutStalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cubesync",
			Name:        "playout_stalls_total",
			Help:        "Total ticks where the playout buffer had no bracketing pair to interpolate between.",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(s.BandwidthKbps, s.PacketsSent, s.PacketsReceived, s.PacketsDropped, s.AckSequence, s.PlayoutStalls)
	return s
}
