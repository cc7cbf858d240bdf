// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons an ICMP datagram is discarded while waiting for a hop.
const (
	discardMalformed    = "malformed"
	discardUnrelated    = "unrelated-type"
	discardNotTCP       = "not-tcp"
	discardForeignDst   = "foreign-destination"
	discardForeignPort  = "foreign-port"
	discardForeignDPort = "foreign-destination-port"
	discardTruncatedMsg = "truncated"
)

// metrics defines the metric collectors of the traceroute
type metrics struct {
	outcomes  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	discarded *prometheus.CounterVec
	reached   *prometheus.GaugeVec
	hops      *prometheus.GaugeVec
}

// newMetrics initializes metric collectors of the traceroute
func newMetrics() metrics {
	return metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tcptrace_hop_outcomes_total",
				Help: "Total number of probed hops by outcome.",
			},
			[]string{"outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tcptrace_hop_latency_seconds",
				Help:    "Histogram of the time between sending a probe and classifying it in seconds.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		discarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tcptrace_icmp_discarded_total",
				Help: "Total number of received ICMP datagrams that did not belong to a probe.",
			},
			[]string{"reason"},
		),
		reached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tcptrace_destination_reached",
				Help: "Specifies if the destination was reached by the last trace.",
			},
			[]string{"target"},
		),
		hops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tcptrace_hops",
				Help: "Number of hops probed by the last trace.",
			},
			[]string{"target"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.outcomes,
		m.latency,
		m.discarded,
		m.reached,
		m.hops,
	}
}

// recordHop records the outcome of a single probed hop
func (m *metrics) recordHop(h Hop) {
	m.outcomes.WithLabelValues(h.Outcome.String()).Inc()
	m.latency.WithLabelValues(h.Outcome.String()).Observe(h.Latency.Seconds())
}

// recordDiscard records an ICMP datagram that was ignored
func (m *metrics) recordDiscard(reason string) {
	m.discarded.WithLabelValues(reason).Inc()
}

// recordSummary sets the metrics of a finished trace
func (m *metrics) recordSummary(target string, s Summary) {
	reached := 0.0
	if s.Reached {
		reached = 1
	}
	m.reached.WithLabelValues(target).Set(reached)
	m.hops.WithLabelValues(target).Set(float64(s.Hops))
}
