// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tcptrace/internal/logger"
	"github.com/telekom/tcptrace/internal/route"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Client = (*tcpClient)(nil)

// Client is able to run a TCP traceroute to a target.
//
//go:generate go tool moq -out client_moq.go . Client
type Client interface {
	// Run traces the route to the target with the specified options.
	// Every probed hop is passed to the client's [Reporter] as soon as it is classified.
	// Returns a Summary of the trace, and an error if the destination was not reached.
	Run(ctx context.Context, target string, opts *Options) (Summary, error)
	// GetMetricCollectors returns the prometheus collectors of the client.
	GetMetricCollectors() []prometheus.Collector
}

type tcpClient struct {
	// reporter receives the progress of the trace.
	reporter Reporter
	// metrics are the prometheus collectors of the traceroute.
	metrics metrics
	// resolver resolves the destination and hop names.
	resolver resolver
	// interfaceAddrs enumerates the local interface addresses.
	interfaceAddrs func() ([]net.Addr, error)
	// routeSource returns the preferred source towards a destination.
	routeSource func(dst netip.Addr) (netip.Addr, error)
	// newProbe opens the channel sending the probes.
	newProbe func(timeout time.Duration, source netip.Addr) (probeChannel, error)
	// newObserver opens the channel receiving ICMP messages.
	newObserver func(bufSize int, timeout time.Duration) (observerChannel, error)
}

// NewClient creates a new TCP traceroute client reporting to r.
// A nil Reporter discards the progress.
func NewClient(r Reporter) Client {
	if r == nil {
		r = discardReporter{}
	}
	return &tcpClient{
		reporter:       r,
		metrics:        newMetrics(),
		resolver:       net.DefaultResolver,
		interfaceAddrs: net.InterfaceAddrs,
		routeSource:    route.Source,
		newProbe:       newTCPProbe,
		newObserver:    newRawObserver,
	}
}

// GetMetricCollectors returns the prometheus collectors of the client.
func (c *tcpClient) GetMetricCollectors() []prometheus.Collector {
	return c.metrics.GetCollectors()
}

// Run probes the TTLs 1 to [Options.MaxTTL] one after another until the destination answers.
// The returned error is nil only if the destination was reached.
// Nil options run with [DefaultOptions].
func (c *tcpClient) Run(ctx context.Context, target string, opts *Options) (Summary, error) {
	if opts == nil {
		d := DefaultOptions()
		opts = &d
	}
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("traceroute.tcpClient")
	ctx, sp := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("traceroute.target", target),
		attribute.Int("traceroute.options.max_hops", opts.MaxTTL),
		attribute.Stringer("traceroute.options.timeout", opts.Timeout),
		attribute.Int("traceroute.options.port", opts.Port),
	))
	defer sp.End()
	log := logger.FromContext(ctx)

	summary := Summary{MaxTTL: opts.MaxTTL}
	if err := opts.Validate(); err != nil {
		summary.Err = wrapError(ctx, err, "invalid options")
		return summary, summary.Err
	}

	if opts.Nameserver != "" {
		res, err := nameserverResolver(opts.Nameserver, opts.Timeout)
		if err != nil {
			summary.Err = wrapError(ctx, err, "invalid nameserver")
			return summary, summary.Err
		}
		log.DebugContext(ctx, "Using custom nameserver", "nameserver", opts.Nameserver)
		scoped := *c
		scoped.resolver = res
		c = &scoped
	}

	sess, err := c.openSession(ctx, target, opts)
	if err != nil {
		summary.Err = err
		return summary, err
	}
	defer func() {
		if cErr := sess.Close(); cErr != nil {
			log.WarnContext(ctx, "Failed to close trace session", "error", cErr)
		}
	}()

	summary.Destination = sess.header.Destination
	c.reporter.Start(sess.header)
	defer func() {
		c.metrics.recordSummary(target, summary)
		c.reporter.Finish(summary)
	}()

	log.DebugContext(ctx, "Starting TCP trace", "target", target, "destination", sess.header.Destination, "source", sess.header.Source)
	for ttl := 1; ttl <= opts.MaxTTL; ttl++ {
		if err := ctx.Err(); err != nil {
			summary.Err = wrapError(ctx, err, "trace canceled", "ttl", ttl)
			return summary, summary.Err
		}

		hop, err := c.probeHop(ctx, tracer, sess, ttl, opts)
		if err != nil {
			summary.Err = err
			return summary, err
		}
		if opts.ResolveNames && hop.Addr.IsValid() {
			hop.Name = c.lookupName(ctx, hop.Addr, opts.LookupRetry)
		}

		summary.Hops = ttl
		c.metrics.recordHop(hop)
		c.reporter.Hop(hop)
		log.DebugContext(ctx, hop.String(), "outcome", hop.Outcome, "latency", hop.Latency)

		if hop.Outcome.Terminal() {
			if hop.Outcome == OutcomeFatal {
				summary.Err = hop.Err
				return summary, hop.Err
			}
			summary.Reached = true
			sp.SetStatus(codes.Ok, "destination reached")
			return summary, nil
		}
	}

	summary.Err = ErrTraceExhausted
	sp.SetStatus(codes.Error, ErrTraceExhausted.Error())
	log.InfoContext(ctx, "Destination not reached", "target", target, "maxTTL", opts.MaxTTL)
	return summary, fmt.Errorf("%w: %d", ErrTraceExhausted, opts.MaxTTL)
}

// discardReporter is a [Reporter] that ignores everything.
type discardReporter struct{}

func (discardReporter) Start(Header)   {}
func (discardReporter) Hop(Hop)        {}
func (discardReporter) Finish(Summary) {}
