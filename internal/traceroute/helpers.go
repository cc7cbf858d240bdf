// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"

	"github.com/telekom/tcptrace/internal/logger"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// basePort is the starting port for the TCP connection
	basePort = 30000
	// portRange is the range of ports to generate a random port from
	portRange = 10000
)

// randomPort returns a random port in the interval [30000, 40000)
func randomPort() int {
	return rand.N(portRange) + basePort // #nosec G404 // math.rand is fine here, we're not doing encryption
}

// addrFromNet extracts the IP address from a [net.Addr] as returned by
// interface enumeration or socket reads. IPv4-mapped addresses are unmapped.
func addrFromNet(addr net.Addr) netip.Addr {
	var ip net.IP
	switch a := addr.(type) {
	case *net.IPNet:
		ip = a.IP
	case *net.IPAddr:
		ip = a.IP
	case *net.TCPAddr:
		ip = a.IP
	case *net.UDPAddr:
		ip = a.IP
	default:
		return netip.Addr{}
	}
	res, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}
	return res.Unmap()
}

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
// The optional attrs are added to the log record as key value pairs.
func wrapError(ctx context.Context, err error, msg string, attrs ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)

	log.ErrorContext(ctx, caser.String(msg), append([]any{"error", err}, attrs...)...)
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", msg, err)
}
