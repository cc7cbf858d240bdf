// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	runInfoMetricName = "tcptrace_run_info"
	runInfoHelp       = "Metadata of the trace run. Emitted once per run to correlate textfile metrics of different hosts."
)

// RegisterRunInfo registers the tcptrace_run_info info-style metric on the given registry.
// It sets the gauge to 1 with labels version, target, port and source.
// Empty strings are allowed for unknown values.
func RegisterRunInfo(registry *prometheus.Registry, version, target, port, source string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: runInfoMetricName,
			Help: runInfoHelp,
		},
		[]string{"version", "target", "port", "source"},
	)
	info.WithLabelValues(version, target, port, source).Set(1)
	return registry.Register(info)
}
