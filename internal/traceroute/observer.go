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
	"time"

	"golang.org/x/sys/unix"
)

var _ observerChannel = (*rawObserver)(nil)

// observerChannel receives the ICMP messages triggered by the probes.
//
//go:generate go tool moq -out observer_moq.go . observerChannel
type observerChannel interface {
	// Read blocks until a datagram arrives or the context's deadline passes.
	Read(ctx context.Context) (datagram, error)
	// Close releases the channel.
	Close() error
}

// datagram is a raw IPv4 datagram including its header.
type datagram struct {
	// payload is the datagram starting with the IPv4 header.
	payload []byte
	// from is the sender of the datagram.
	from netip.Addr
}

// rawObserver is an [observerChannel] over a raw ICMP socket.
// It requires NET_RAW capabilities to be created successfully.
type rawObserver struct {
	// conn is the raw ICMP connection.
	conn *net.IPConn
	// buf receives a single datagram.
	buf []byte
	// timeout bounds a read if the context has no deadline.
	timeout time.Duration
}

// newRawObserver opens a raw ICMP socket receiving datagrams of at most bufSize bytes.
// The socket's receive queue keeps the kernel default, since it collects all
// ICMP traffic of the host while a connection attempt blocks.
func newRawObserver(bufSize int, timeout time.Duration) (observerChannel, error) {
	pc, err := net.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: no NET_RAW capabilities, ICMP not available: %w", ErrSocketCreation, err)
		}
		return nil, fmt.Errorf("%w: failed to create ICMP listener: %w", ErrSocketCreation, err)
	}
	conn, ok := pc.(*net.IPConn)
	if !ok {
		_ = pc.Close()
		return nil, fmt.Errorf("%w: unexpected connection type %T", ErrSocketCreation, pc)
	}

	return &rawObserver{
		conn:    conn,
		buf:     make([]byte, bufSize),
		timeout: timeout,
	}, nil
}

// Read receives the next datagram including its IPv4 header.
// It returns [context.DeadlineExceeded] when the context's deadline
// or the configured timeout passes first.
func (o *rawObserver) Read(ctx context.Context) (datagram, error) {
	if err := ctx.Err(); err != nil {
		return datagram{}, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(o.timeout)
	}
	if err := o.conn.SetReadDeadline(deadline); err != nil {
		return datagram{}, fmt.Errorf("failed to set read deadline: %w", err)
	}

	n, from, err := o.recvfrom()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			if cErr := ctx.Err(); cErr != nil && !errors.Is(cErr, context.DeadlineExceeded) {
				return datagram{}, cErr
			}
			return datagram{}, context.DeadlineExceeded
		}
		return datagram{}, fmt.Errorf("failed to read from ICMP socket: %w", err)
	}

	payload := make([]byte, n)
	copy(payload, o.buf[:n])
	return datagram{payload: payload, from: from}, nil
}

// recvfrom reads from the raw socket directly, since reads on
// a [net.IPConn] strip the IPv4 header the classifier needs.
func (o *rawObserver) recvfrom() (int, netip.Addr, error) {
	rc, err := o.conn.SyscallConn()
	if err != nil {
		return 0, netip.Addr{}, err
	}

	var (
		n     int
		from  unix.Sockaddr
		opErr error
	)
	err = rc.Read(func(fd uintptr) bool {
		n, from, opErr = unix.Recvfrom(int(fd), o.buf, 0) // #nosec G115 // The net package is safe to use
		return !errors.Is(opErr, unix.EAGAIN) && !errors.Is(opErr, unix.EWOULDBLOCK)
	})
	if err != nil {
		return 0, netip.Addr{}, err
	}
	if opErr != nil {
		return 0, netip.Addr{}, os.NewSyscallError("recvfrom", opErr)
	}

	var addr netip.Addr
	if sa, ok := from.(*unix.SockaddrInet4); ok {
		addr = netip.AddrFrom4(sa.Addr)
	}
	return n, addr, nil
}

// Close closes the raw socket.
func (o *rawObserver) Close() error {
	if o.conn != nil {
		return o.conn.Close()
	}
	return nil
}
