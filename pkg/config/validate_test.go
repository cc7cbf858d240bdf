// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/tcptrace/internal/traceroute"
	"github.com/telekom/tcptrace/pkg/telemetry"
)

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		modify   func(c *Config)
		wantErrs []error
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name: "valid full config",
			modify: func(c *Config) {
				c.Trace.Port = 443
				c.Trace.SourceMode = traceroute.SourceRoute
				c.Output.Format = "json"
				c.Telemetry = telemetry.Config{
					Exporter:    telemetry.GRPC,
					Url:         "http://localhost:4317",
					MetricsFile: filepath.Join(dir, "tcptrace.prom"),
				}
			},
		},
		{
			name: "invalid trace options",
			modify: func(c *Config) {
				c.Trace.MaxTTL = 0
				c.Trace.Port = 70000
			},
			wantErrs: []error{ErrInvalidTrace, traceroute.ErrInvalidMaxTTL, traceroute.ErrInvalidPort},
		},
		{
			name:     "unknown output format",
			modify:   func(c *Config) { c.Output.Format = "xml" },
			wantErrs: []error{ErrInvalidOutputFormat},
		},
		{
			name: "exporter without url",
			modify: func(c *Config) {
				c.Telemetry.Exporter = telemetry.HTTP
			},
			wantErrs: []error{ErrInvalidTelemetry, telemetry.ErrMissingURL},
		},
		{
			name: "metrics file in missing directory",
			modify: func(c *Config) {
				c.Telemetry.MetricsFile = filepath.Join(dir, "missing", "tcptrace.prom")
			},
			wantErrs: []error{ErrInvalidMetricsFile},
		},
		{
			name: "all violations are reported",
			modify: func(c *Config) {
				c.Trace.Timeout = 0
				c.Output.Format = ""
				c.Telemetry.Exporter = "kafka"
			},
			wantErrs: []error{ErrInvalidTrace, ErrInvalidOutputFormat, ErrInvalidTelemetry, telemetry.ErrUnsupportedExporter},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(c)

			err := c.Validate(t.Context())
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestConfig_Has(t *testing.T) {
	c := New()
	assert.False(t, c.HasTelemetry())
	assert.False(t, c.HasMetricsFile())

	c.Telemetry.Exporter = telemetry.STDOUT
	c.Telemetry.MetricsFile = "/var/lib/node_exporter/tcptrace.prom"
	assert.True(t, c.HasTelemetry())
	assert.True(t, c.HasMetricsFile())
}
