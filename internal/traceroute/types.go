// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// Endpoint is a resolved IPv4 address with the port used for probing.
type Endpoint struct {
	Addr netip.Addr
	Port int
}

func (e Endpoint) String() string {
	if e.Port != 0 {
		return net.JoinHostPort(e.Addr.String(), strconv.Itoa(e.Port))
	}
	return e.Addr.String()
}

// Outcome is the classification of a single probed TTL.
type Outcome int

const (
	// OutcomeIntermediate is a router that answered with an ICMP time exceeded message.
	OutcomeIntermediate Outcome = iota
	// OutcomeReached means the destination answered on the TCP or ICMP layer.
	OutcomeReached
	// OutcomeTimeout means nothing relevant answered in time.
	OutcomeTimeout
	// OutcomeFatal is an unrecognized probe failure that aborts the trace.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIntermediate:
		return "hop"
	case OutcomeReached:
		return "reached"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Terminal reports whether the trace stops after this outcome.
func (o Outcome) Terminal() bool {
	return o == OutcomeReached || o == OutcomeFatal
}

// Hop is the result of probing a single TTL.
type Hop struct {
	// TTL is the time to live the probe was sent with.
	TTL int
	// Outcome is the classification of the probe.
	Outcome Outcome
	// Addr is the responding router, or the destination when it was reached.
	// It is invalid for timeouts and fatal errors.
	Addr netip.Addr
	// Name is the reverse DNS name of Addr, if resolved.
	Name string
	// Latency is the time between the connection attempt and its classification.
	Latency time.Duration
	// Code is the raw error code of a fatal probe failure.
	Code int
	// Err is the cause of a timeout or fatal outcome.
	Err error
}

// String renders the hop as a single trace line.
func (h Hop) String() string {
	switch h.Outcome {
	case OutcomeIntermediate:
		if h.Name != "" {
			return fmt.Sprintf("%d: %s (%s)", h.TTL, h.Addr, h.Name)
		}
		return fmt.Sprintf("%d: %s", h.TTL, h.Addr)
	case OutcomeReached:
		if h.Name != "" {
			return fmt.Sprintf("%d: %s (%s) [complete]", h.TTL, h.Addr, h.Name)
		}
		return fmt.Sprintf("%d: %s [complete]", h.TTL, h.Addr)
	case OutcomeTimeout:
		return fmt.Sprintf("%d: * * * * * [timeout]", h.TTL)
	default:
		return fmt.Sprintf("%d: Unknown error: %d sending SYN packet", h.TTL, h.Code)
	}
}

// Header describes a trace once the session is set up.
type Header struct {
	// Source is the local address the trace originates from.
	Source netip.Addr
	// Target is the destination as given by the user.
	Target string
	// Destination is the resolved destination.
	Destination Endpoint
	// Resolved is true when Target had to be resolved through DNS.
	Resolved bool
	// MaxTTL is the highest TTL that will be probed.
	MaxTTL int
}

// Summary describes a finished trace.
type Summary struct {
	// Destination is the resolved destination.
	Destination Endpoint
	// Reached is true when the destination answered.
	Reached bool
	// Hops is the TTL of the last probe.
	Hops int
	// MaxTTL is the highest TTL that could have been probed.
	MaxTTL int
	// Err is the reason the trace failed, nil on success.
	Err error
}

// Exhausted reports whether the trace ran out of TTLs without reaching the destination.
func (s Summary) Exhausted() bool {
	return errors.Is(s.Err, ErrTraceExhausted)
}

// Reporter receives the progress of a trace as it happens.
// Hops are passed one by one and never collected.
type Reporter interface {
	// Start is called once after the session is set up.
	Start(h Header)
	// Hop is called once per probed TTL.
	Hop(h Hop)
	// Finish is called once when the trace stops.
	Finish(s Summary)
}
