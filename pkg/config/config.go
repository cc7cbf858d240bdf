// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the configuration of a trace run.
package config

import (
	"github.com/telekom/tcptrace/internal/output"
	"github.com/telekom/tcptrace/internal/traceroute"
	"github.com/telekom/tcptrace/pkg/telemetry"
)

type Config struct {
	// Trace is the configuration of the traceroute itself
	Trace traceroute.Options `yaml:"trace" mapstructure:"trace"`
	// Output is the configuration of the rendered result
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	// Telemetry is the configuration for the telemetry
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// OutputConfig is the configuration for the output
type OutputConfig struct {
	// Format is one of text, json or yaml
	Format string `yaml:"format" mapstructure:"format"`
}

// New returns the configuration with all defaults set.
func New() *Config {
	return &Config{
		Trace:  traceroute.DefaultOptions(),
		Output: OutputConfig{Format: string(output.FormatText)},
	}
}

// HasTelemetry returns true if traces are exported
func (c *Config) HasTelemetry() bool {
	return !c.Telemetry.Exporter.IsNoop()
}

// HasMetricsFile returns true if the metrics are written to a file
func (c *Config) HasMetricsFile() bool {
	return c.Telemetry.MetricsFile != ""
}
