// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"github.com/telekom/tcptrace/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// probeHop sends a single probe with the given TTL and classifies the result.
// An error is returned only if the trace has to stop without a hop to report,
// e.g. because the context was canceled.
func (c *tcpClient) probeHop(ctx context.Context, tracer trace.Tracer, sess *session, ttl int, opts *Options) (Hop, error) {
	ctx, span := tracer.Start(ctx, "Hop", trace.WithAttributes(
		attribute.Int("traceroute.hop.ttl", ttl),
	))
	defer span.End()

	if err := sess.probe.SetTTL(ttl); err != nil {
		return Hop{
			TTL:     ttl,
			Outcome: OutcomeFatal,
			Err:     wrapError(ctx, err, "failed to set TTL", "ttl", ttl),
		}, nil
	}

	res := sess.probe.Connect(ctx, sess.header.Destination)
	if err := ctx.Err(); err != nil {
		return Hop{}, wrapError(ctx, err, "trace canceled", "ttl", ttl)
	}
	span.SetAttributes(
		attribute.Stringer("traceroute.hop.class", res.class),
		attribute.Int("traceroute.hop.port", res.port),
	)

	hop, err := c.classify(ctx, sess, ttl, res, opts)
	if err != nil {
		return Hop{}, err
	}

	span.SetAttributes(
		attribute.Stringer("traceroute.hop.outcome", hop.Outcome),
		attribute.Stringer("traceroute.hop.latency", hop.Latency),
	)
	if hop.Addr.IsValid() {
		span.SetAttributes(attribute.Stringer("traceroute.hop.addr", hop.Addr))
	}
	if hop.Err != nil && hop.Outcome == OutcomeTimeout {
		span.AddEvent("Hop timed out", trace.WithAttributes(
			attribute.String("traceroute.hop.error", hop.Err.Error()),
		))
	}
	return hop, nil
}

// classify maps the result of a connection attempt to a hop.
//
//	established, refused, reset      -> destination reached
//	timed out                        -> timeout
//	host unreachable                 -> wait for the router's ICMP message
//	anything else                    -> fatal
func (c *tcpClient) classify(ctx context.Context, sess *session, ttl int, res probeResult, opts *Options) (Hop, error) {
	log := logger.FromContext(ctx)
	hop := Hop{TTL: ttl, Latency: res.latency}

	switch res.class {
	case ClassEstablished, ClassRefused, ClassReset:
		log.DebugContext(ctx, "Destination answered", "class", res.class, "port", res.port)
		hop.Outcome = OutcomeReached
		hop.Addr = sess.header.Destination.Addr
		return hop, nil

	case ClassTimedOut:
		log.DebugContext(ctx, "Connection attempt timed out", "ttl", ttl, "error", res.err)
		hop.Outcome = OutcomeTimeout
		hop.Err = fmt.Errorf("%w: %w", errProbeTimeout, res.err)
		return hop, nil

	case ClassHostUnreachable:
		return c.awaitICMP(ctx, sess, hop, res.port, opts)

	default:
		hop.Outcome = OutcomeFatal
		hop.Code = res.code
		hop.Err = wrapError(ctx, &UnexpectedProbeError{Code: res.code, Err: res.err}, "unexpected connection error", "ttl", ttl)
		return hop, nil
	}
}

// awaitICMP reads ICMP messages until one belongs to the probe sent from port.
// The wait is bounded by [Options.RecvTimeout] and [Options.MaxDiscards],
// either limit turns the hop into a timeout.
func (c *tcpClient) awaitICMP(ctx context.Context, sess *session, hop Hop, port int, opts *Options) (Hop, error) {
	log := logger.FromContext(ctx)
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, opts.RecvTimeout)
	defer cancel()

	dst := sess.header.Destination
	for discarded := 0; discarded < opts.MaxDiscards; discarded++ {
		dg, err := sess.observer.Read(ctx)
		switch {
		case err == nil:
		case parent.Err() != nil:
			return Hop{}, wrapError(parent, parent.Err(), "trace canceled", "ttl", hop.TTL)
		case errors.Is(err, context.DeadlineExceeded):
			log.DebugContext(ctx, "ICMP read timeout exceeded, no response received", "ttl", hop.TTL)
			hop.Outcome = OutcomeTimeout
			hop.Err = errICMPTimeout
			return hop, nil
		default:
			return Hop{}, wrapError(ctx, err, "failed to read ICMP message", "ttl", hop.TTL)
		}

		sig, err := parseSignal(dg.payload)
		if err != nil {
			log.DebugContext(ctx, "Discarding malformed datagram", "from", dg.from, "error", err)
			c.metrics.recordDiscard(discardMalformed)
			continue
		}

		if sig.isPortUnreachable() {
			log.DebugContext(ctx, "Received port unreachable", "from", dg.from)
			hop.Outcome = OutcomeReached
			hop.Addr = dst.Addr
			return hop, nil
		}

		if reason := matchTimeExceeded(sig, dst, port); reason != "" {
			log.DebugContext(ctx, "Discarding ICMP message", "from", dg.from, "type", sig.typ, "code", sig.code, "reason", reason)
			c.metrics.recordDiscard(reason)
			continue
		}

		hop.Outcome = OutcomeIntermediate
		hop.Addr = dg.from
		if !hop.Addr.IsValid() {
			hop.Addr, _ = netip.AddrFromSlice(sig.outer.Src.To4())
		}
		log.DebugContext(ctx, "Received ICMP time exceeded", "port", port, "routerAddr", hop.Addr)
		return hop, nil
	}

	log.DebugContext(ctx, "Too many unrelated ICMP messages", "ttl", hop.TTL, "maxDiscards", opts.MaxDiscards)
	hop.Outcome = OutcomeTimeout
	hop.Err = errDiscardLimit
	return hop, nil
}

// matchTimeExceeded checks whether the signal is the time exceeded message
// of the probe sent from port to dst. It returns the reason to discard it,
// or an empty string if it matches.
func matchTimeExceeded(sig icmpSignal, dst Endpoint, port int) string {
	switch {
	case !sig.isTimeExceeded():
		return discardUnrelated
	case sig.inner == nil:
		return discardTruncatedMsg
	case !sig.innerTCP():
		return discardNotTCP
	}
	if innerDst, ok := sig.innerDst(); ok && innerDst != dst.Addr {
		return discardForeignDst
	}
	if dst.Port != 0 && sig.dstPort != 0 && sig.dstPort != dst.Port {
		return discardForeignDPort
	}
	if port != 0 && sig.srcPort != 0 && sig.srcPort != port {
		return discardForeignPort
	}
	return ""
}
