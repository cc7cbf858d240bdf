// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"net/netip"

	"github.com/telekom/tcptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// session holds the resolved endpoints and both channels of one trace.
// It must be closed on every path once it was opened.
type session struct {
	header   Header
	probe    probeChannel
	observer observerChannel
}

// openSession resolves the endpoints and opens the probe and observer channels.
// Nothing needs to be closed if an error is returned.
func (c *tcpClient) openSession(ctx context.Context, target string, opts *Options) (*session, error) {
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)

	dst, resolved, err := c.resolveDestination(ctx, target, opts.Port)
	if err != nil {
		return nil, wrapError(ctx, err, "trace setup failed", "target", target)
	}
	if resolved {
		log.DebugContext(ctx, "Resolved destination", "target", target, "addr", dst.Addr)
	}

	src, err := c.resolveSource(ctx, opts, dst.Addr)
	if err != nil {
		return nil, wrapError(ctx, err, "trace setup failed", "target", target)
	}

	var bind netip.Addr
	if opts.Source != "" {
		bind = src
	}
	probe, err := c.newProbe(opts.Timeout, bind)
	if err != nil {
		return nil, wrapError(ctx, err, "failed to create probe socket")
	}

	observer, err := c.newObserver(opts.recvBufferSize(), opts.RecvTimeout)
	if err != nil {
		_ = probe.Close()
		return nil, wrapError(ctx, err, "failed to create ICMP listener")
	}

	span.SetAttributes(
		attribute.Stringer("traceroute.source", src),
		attribute.Stringer("traceroute.destination", dst),
		attribute.Bool("traceroute.destination.resolved", resolved),
	)
	return &session{
		header: Header{
			Source:      src,
			Target:      target,
			Destination: dst,
			Resolved:    resolved,
			MaxTTL:      opts.MaxTTL,
		},
		probe:    probe,
		observer: observer,
	}, nil
}

// Close releases both channels.
func (s *session) Close() error {
	return errors.Join(s.probe.Close(), s.observer.Close())
}
