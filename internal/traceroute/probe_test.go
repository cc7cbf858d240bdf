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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tcptrace/test"
	"golang.org/x/sys/unix"
)

func TestClassifyDialError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClass ErrorClass
		wantCode  int
	}{
		{"nil", nil, ClassEstablished, 0},
		{"host unreachable", unix.EHOSTUNREACH, ClassHostUnreachable, 0},
		{"wrapped host unreachable", &net.OpError{Op: "dial", Net: "tcp4", Err: os.NewSyscallError("connect", unix.EHOSTUNREACH)}, ClassHostUnreachable, 0},
		{"timed out", unix.ETIMEDOUT, ClassTimedOut, 0},
		{"in progress", unix.EINPROGRESS, ClassTimedOut, 0},
		{"already", unix.EALREADY, ClassTimedOut, 0},
		{"dialer timeout", &net.OpError{Op: "dial", Net: "tcp4", Err: os.ErrDeadlineExceeded}, ClassTimedOut, 0},
		{"context deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), ClassTimedOut, 0},
		{"refused", unix.ECONNREFUSED, ClassRefused, 0},
		{"reset", &net.OpError{Op: "dial", Net: "tcp4", Err: os.NewSyscallError("connect", unix.ECONNRESET)}, ClassReset, 0},
		{"network unreachable", unix.ENETUNREACH, ClassOther, int(unix.ENETUNREACH)},
		{"permission denied", unix.EACCES, ClassOther, int(unix.EACCES)},
		{"no errno", errors.New("boom"), ClassOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, code := classifyDialError(tt.err)
			assert.Equal(t, tt.wantClass, class, "class %s", class)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestTCPProbe_SetTTL(t *testing.T) {
	p, err := newTCPProbe(time.Second, netip.Addr{})
	require.NoError(t, err)

	require.NoError(t, p.SetTTL(1))
	require.NoError(t, p.SetTTL(255))
	assert.Equal(t, 255, p.(*tcpProbe).ttl)

	assert.ErrorIs(t, p.SetTTL(0), ErrSocketConfig)
	assert.ErrorIs(t, p.SetTTL(256), ErrSocketConfig)
	assert.Equal(t, 255, p.(*tcpProbe).ttl, "invalid TTL must not be applied")
}

func TestNewTCPProbe_InvalidTimeout(t *testing.T) {
	_, err := newTCPProbe(0, netip.Addr{})
	require.ErrorIs(t, err, ErrSocketConfig)
}

func TestTCPProbe_Connect(t *testing.T) {
	dst := Endpoint{Addr: netip.MustParseAddr(testDestination), Port: DefaultPort}
	src := netip.MustParseAddr(testSource)

	tests := []struct {
		name      string
		dialErrs  []error
		wantClass ErrorClass
		wantCode  int
		wantDials int
		wantErr   error
	}{
		{
			name:      "established",
			dialErrs:  []error{nil},
			wantClass: ClassEstablished,
			wantDials: 1,
		},
		{
			name:      "ttl expired",
			dialErrs:  []error{unix.EHOSTUNREACH},
			wantClass: ClassHostUnreachable,
			wantDials: 1,
		},
		{
			name:      "local port in use is retried",
			dialErrs:  []error{unix.EADDRINUSE, unix.EADDRINUSE, unix.ECONNREFUSED},
			wantClass: ClassRefused,
			wantDials: 3,
		},
		{
			name:      "local port always in use",
			dialErrs:  []error{unix.EADDRINUSE, unix.EADDRINUSE, unix.EADDRINUSE, unix.EADDRINUSE, unix.EADDRINUSE, nil},
			wantClass: ClassOther,
			wantCode:  int(unix.EADDRINUSE),
			wantDials: maxPortAttempts,
		},
		{
			name:      "socket option rejected",
			dialErrs:  []error{&net.OpError{Op: "dial", Err: &socketConfigError{err: unix.EPERM}}},
			wantClass: ClassOther,
			wantDials: 1,
			wantErr:   ErrSocketConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := newTCPProbe(time.Second, src)
			require.NoError(t, err)
			probe := p.(*tcpProbe)
			require.NoError(t, probe.SetTTL(7))

			dials := 0
			var client, server net.Conn
			probe.dial = func(_ context.Context, d *net.Dialer, addr string) (net.Conn, error) {
				assert.Equal(t, dst.String(), addr)
				assert.Equal(t, time.Second, d.Timeout)
				local := d.LocalAddr.(*net.TCPAddr)
				assert.GreaterOrEqual(t, local.Port, basePort)
				assert.Less(t, local.Port, basePort+portRange)
				assert.Equal(t, src.String(), local.IP.String())

				err := tt.dialErrs[dials]
				dials++
				if err != nil {
					return nil, err
				}
				client, server = net.Pipe()
				return client, nil
			}

			res := probe.Connect(t.Context(), dst)
			assert.Equal(t, tt.wantClass, res.class)
			assert.Equal(t, tt.wantCode, res.code)
			assert.Equal(t, tt.wantDials, dials)
			assert.GreaterOrEqual(t, res.port, basePort)
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.err, tt.wantErr)
			}

			if tt.wantClass == ClassEstablished {
				require.NotNil(t, probe.conn)
				require.NoError(t, probe.Close())
				assert.Nil(t, probe.conn)
				_, err := server.Read(make([]byte, 1))
				assert.Error(t, err, "connection must be closed")
			}
		})
	}
}

func TestTCPProbe_Connect_Loopback(t *testing.T) {
	test.MarkAsLong(t)

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	open := ln.Addr().(*net.TCPAddr).Port

	closed, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := closed.Addr().(*net.TCPAddr).Port
	require.NoError(t, closed.Close())

	p, err := newTCPProbe(time.Second, netip.Addr{})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()
	require.NoError(t, p.SetTTL(64))

	loopback := netip.MustParseAddr("127.0.0.1")
	res := p.Connect(t.Context(), Endpoint{Addr: loopback, Port: open})
	require.NoError(t, res.err)
	assert.Equal(t, ClassEstablished, res.class)

	res = p.Connect(t.Context(), Endpoint{Addr: loopback, Port: closedPort})
	assert.Equal(t, ClassRefused, res.class, "unexpected error: %v", res.err)
}
