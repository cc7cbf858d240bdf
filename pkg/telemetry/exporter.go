// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export the traces.
type Exporter string

const (
	// NOOP discards all traces.
	NOOP Exporter = ""
	// STDOUT writes the traces to stderr, stdout belongs to the trace output.
	STDOUT Exporter = "stdout"
	// GRPC exports the traces with otlp over gRPC.
	GRPC Exporter = "grpc"
	// HTTP exports the traces with otlp over HTTP.
	HTTP Exporter = "http"
)

// ErrUnsupportedExporter is returned for unknown exporters.
var ErrUnsupportedExporter = errors.New("unsupported exporter")

// String returns the string representation of the exporter.
func (e Exporter) String() string {
	if e == NOOP {
		return "none"
	}
	return string(e)
}

// Validate checks whether the exporter is supported.
func (e Exporter) Validate() error {
	switch {
	case e.IsNoop(), e == STDOUT, e.IsExporting():
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedExporter, string(e))
	}
}

// IsNoop reports whether the exporter discards all traces.
func (e Exporter) IsNoop() bool {
	return e == NOOP || e == "none"
}

// IsExporting reports whether the exporter sends traces to a collector.
func (e Exporter) IsExporting() bool {
	return e == GRPC || e == HTTP
}

// Create creates a new span exporter for the given configuration.
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	if e.IsNoop() {
		return tracetest.NewNoopExporter(), nil
	}
	switch e {
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	case GRPC:
		opts, err := grpcOptions(config)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, opts...)
	case HTTP:
		opts, err := httpOptions(config)
		if err != nil {
			return nil, err
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExporter, string(e))
	}
}

func grpcOptions(config *Config) ([]otlptracegrpc.Option, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpointURL(config.Url)}
	if config.Token != "" {
		opts = append(opts, otlptracegrpc.WithHeaders(authHeader(config.Token)))
	}

	if !config.TLS.Enabled {
		return append(opts, otlptracegrpc.WithInsecure()), nil
	}
	tlsCfg, err := config.TLS.tlsConfig()
	if err != nil {
		return nil, err
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg))), nil
}

func httpOptions(config *Config) ([]otlptracehttp.Option, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(config.Url)}
	if config.Token != "" {
		opts = append(opts, otlptracehttp.WithHeaders(authHeader(config.Token)))
	}

	if !config.TLS.Enabled {
		return append(opts, otlptracehttp.WithInsecure()), nil
	}
	tlsCfg, err := config.TLS.tlsConfig()
	if err != nil {
		return nil, err
	}
	return append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg)), nil
}

func authHeader(token string) map[string]string {
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return map[string]string{"Authorization": token}
}

// tlsConfig returns the tls configuration trusting the custom certificate, if any.
func (t TLSConfig) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if t.CertPath == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(t.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificate found in %s", t.CertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}
