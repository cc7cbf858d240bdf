// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/telekom/tcptrace/internal/output"
	"github.com/telekom/tcptrace/internal/traceroute"
	"github.com/telekom/tcptrace/pkg/config"
)

// flagKeys maps the command line flags to their configuration keys.
var flagKeys = map[string]string{
	"max-ttl":            "trace.maxTTL",
	"timeout":            "trace.timeout",
	"recv-timeout":       "trace.recvTimeout",
	"recv-buffer-size":   "trace.recvBufferSize",
	"port":               "trace.port",
	"max-discards":       "trace.maxDiscards",
	"source":             "trace.source",
	"source-mode":        "trace.sourceMode",
	"resolve-names":      "trace.resolveNames",
	"nameserver":         "trace.nameserver",
	"lookup-retry-count": "trace.lookupRetry.count",
	"lookup-retry-delay": "trace.lookupRetry.delay",
	"output":             "output.format",
	"exporter":           "telemetry.exporter",
	"exporter-url":       "telemetry.url",
	"exporter-token":     "telemetry.token",
	"exporter-tls":       "telemetry.tls.enabled",
	"exporter-cert":      "telemetry.tls.certPath",
	"metrics-file":       "telemetry.metricsFile",
}

// registerTraceFlags adds the flags of a trace run, their defaults are the configuration defaults.
func registerTraceFlags(fs *pflag.FlagSet) {
	d := config.New()

	fs.IntP("max-ttl", "m", d.Trace.MaxTTL, "highest TTL that is probed")
	fs.Duration("timeout", d.Trace.Timeout, "timeout of a single connection attempt")
	fs.Duration("recv-timeout", d.Trace.RecvTimeout, "time to wait for the ICMP message of a router")
	fs.Int("recv-buffer-size", d.Trace.RecvBufferSize, "receive buffer size for a single ICMP datagram")
	fs.IntP("port", "p", d.Trace.Port, "destination port, should have no listener")
	fs.Int("max-discards", d.Trace.MaxDiscards, "unrelated ICMP messages ignored per hop")
	fs.StringP("source", "s", d.Trace.Source, "IPv4 source address the probes are bound to")
	fs.String("source-mode", string(d.Trace.SourceMode),
		fmt.Sprintf("how the source address is found if not set: %s or %s", traceroute.SourceInterface, traceroute.SourceRoute))
	fs.BoolP("resolve-names", "n", d.Trace.ResolveNames, "look up the names of the hops")
	fs.String("nameserver", d.Trace.Nameserver, "DNS server for all lookups as ip or ip:port, the system resolver if empty")
	fs.Int("lookup-retry-count", d.Trace.LookupRetry.Count, "retries of a failed name lookup")
	fs.Duration("lookup-retry-delay", d.Trace.LookupRetry.Delay, "initial delay between name lookup retries")

	formats := make([]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		formats = append(formats, string(f))
	}
	fs.StringP("output", "o", d.Output.Format, "output format: "+strings.Join(formats, ", "))

	fs.String("exporter", d.Telemetry.Exporter.String(), "trace exporter: none, stdout, grpc or http")
	fs.String("exporter-url", d.Telemetry.Url, "url of the trace collector")
	fs.String("exporter-token", d.Telemetry.Token, "bearer token for the trace collector")
	fs.Bool("exporter-tls", d.Telemetry.TLS.Enabled, "use tls for the trace collector")
	fs.String("exporter-cert", d.Telemetry.TLS.CertPath, "custom CA certificate of the trace collector")
	fs.String("metrics-file", d.Telemetry.MetricsFile, "write prometheus metrics to this file after the trace")
}

// bindFlags binds every flag to its configuration key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			errs = append(errs, fmt.Errorf("flag %q is not registered", name))
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("failed to bind flag %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
