// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var _ probeChannel = (*tcpProbe)(nil)

// probeChannel originates the SYN segments of the trace.
//
//go:generate go tool moq -out probe_moq.go . probeChannel
type probeChannel interface {
	// SetTTL sets the TTL of the following connection attempts.
	SetTTL(ttl int) error
	// Connect attempts a TCP connection to the destination and
	// returns the classified result.
	Connect(ctx context.Context, dst Endpoint) probeResult
	// Close releases the channel.
	Close() error
}

// ErrorClass is the classification of a connection attempt.
type ErrorClass int

const (
	// ClassEstablished means the handshake completed.
	ClassEstablished ErrorClass = iota
	// ClassHostUnreachable means an ICMP error aborted the attempt, typically TTL expiry.
	ClassHostUnreachable
	// ClassTimedOut means nothing answered within the timeout.
	ClassTimedOut
	// ClassRefused means the destination answered with a reset to the SYN.
	ClassRefused
	// ClassReset means the connection was reset by the destination.
	ClassReset
	// ClassOther is any error not covered by the other classes.
	ClassOther
)

func (c ErrorClass) String() string {
	switch c {
	case ClassEstablished:
		return "established"
	case ClassHostUnreachable:
		return "host-unreachable"
	case ClassTimedOut:
		return "timed-out"
	case ClassRefused:
		return "refused"
	case ClassReset:
		return "reset"
	default:
		return "other"
	}
}

// probeResult is the structured result of a single connection attempt.
type probeResult struct {
	// class is the classification of err.
	class ErrorClass
	// code is the raw error code for [ClassOther], 0 if none is available.
	code int
	// err is the error returned by the attempt.
	err error
	// port is the local port the attempt was sent from.
	port int
	// latency is the duration of the attempt.
	latency time.Duration
}

// classifyDialError maps the error of a connection attempt to its class.
// The raw error code is returned for [ClassOther].
func classifyDialError(err error) (ErrorClass, int) {
	if err == nil {
		return ClassEstablished, 0
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EHOSTUNREACH:
			return ClassHostUnreachable, 0
		case unix.ETIMEDOUT, unix.EINPROGRESS, unix.EALREADY:
			return ClassTimedOut, 0
		case unix.ECONNREFUSED:
			return ClassRefused, 0
		case unix.ECONNRESET:
			return ClassReset, 0
		default:
			return ClassOther, int(errno)
		}
	}

	var nErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &nErr) && nErr.Timeout()) {
		return ClassTimedOut, 0
	}
	return ClassOther, 0
}

// maxPortAttempts bounds the retries when the random local port is in use.
const maxPortAttempts = 5

// tcpProbe is a [probeChannel] dialing a new TCP connection per attempt.
type tcpProbe struct {
	// ttl is the TTL applied to the next attempt.
	ttl int
	// timeout bounds a single attempt.
	timeout time.Duration
	// source is the local address to bind to, unspecified lets the kernel choose.
	source netip.Addr
	// conn is the connection of the last successful attempt.
	conn net.Conn
	// dial establishes a connection, replaced in tests.
	dial func(ctx context.Context, d *net.Dialer, addr string) (net.Conn, error)
}

// newTCPProbe creates a [tcpProbe] with the given timeout and optional source address.
func newTCPProbe(timeout time.Duration, source netip.Addr) (probeChannel, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: send timeout must be positive, got %s", ErrSocketConfig, timeout)
	}
	return &tcpProbe{
		ttl:     1,
		timeout: timeout,
		source:  source,
		dial: func(ctx context.Context, d *net.Dialer, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp4", addr)
		},
	}, nil
}

// SetTTL sets the TTL of the following connection attempts.
func (p *tcpProbe) SetTTL(ttl int) error {
	if ttl < 1 || ttl > maxTTL {
		return fmt.Errorf("%w: TTL %d out of range", ErrSocketConfig, ttl)
	}
	p.ttl = ttl
	return nil
}

// Connect dials the destination from a random local port with the current TTL.
func (p *tcpProbe) Connect(ctx context.Context, dst Endpoint) probeResult {
	_ = p.closeConn()

	var (
		conn  net.Conn
		err   error
		port  int
		start time.Time
	)
	for range maxPortAttempts {
		port = randomPort()
		start = time.Now()
		conn, err = p.dial(ctx, p.dialer(port), dst.String())
		if !errors.Is(err, unix.EADDRINUSE) {
			break
		}
	}
	res := probeResult{
		err:     err,
		port:    port,
		latency: time.Since(start),
	}

	var cfgErr *socketConfigError
	if errors.As(err, &cfgErr) {
		res.class = ClassOther
		res.err = fmt.Errorf("%w: %w", ErrSocketConfig, cfgErr.err)
		return res
	}

	res.class, res.code = classifyDialError(err)
	if err == nil {
		p.conn = conn
	}
	return res
}

// dialer returns a dialer binding the given local port and setting the TTL on the socket.
func (p *tcpProbe) dialer(port int) *net.Dialer {
	local := &net.TCPAddr{Port: port}
	if p.source.IsValid() {
		local.IP = p.source.AsSlice()
	}
	ttl := p.ttl

	return &net.Dialer{
		LocalAddr: local,
		Timeout:   p.timeout,
		ControlContext: func(_ context.Context, _, _ string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl) // #nosec G115 // The net package is safe to use
			}); err != nil {
				return &socketConfigError{err: err}
			}
			if opErr != nil {
				return &socketConfigError{err: opErr}
			}
			return nil
		},
	}
}

// Close closes the connection of the last attempt, if any.
func (p *tcpProbe) Close() error {
	return p.closeConn()
}

func (p *tcpProbe) closeConn() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// socketConfigError marks a failure to apply a socket option before dialing.
type socketConfigError struct {
	err error
}

func (e *socketConfigError) Error() string { return "failed to set socket option: " + e.err.Error() }
func (e *socketConfigError) Unwrap() error { return e.err }
