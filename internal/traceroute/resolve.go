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
	"strings"
	"time"

	"github.com/telekom/tcptrace/internal/helper"
	"github.com/telekom/tcptrace/internal/logger"
)

// resolver looks up names and addresses. It is satisfied by [net.Resolver].
type resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// dnsPort is the port of a nameserver given without one.
const dnsPort = 53

// nameserverAddr returns the address of the nameserver given as ip or ip:port.
func nameserverAddr(s string) (string, error) {
	if addr, err := netip.ParseAddr(s); err == nil {
		return netip.AddrPortFrom(addr, dnsPort).String(), nil
	}
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return "", fmt.Errorf("%q is neither ip nor ip:port", s)
	}
	return ap.String(), nil
}

// nameserverResolver returns a resolver sending every query to the given server.
func nameserverResolver(server string, timeout time.Duration) (resolver, error) {
	addr, err := nameserverAddr(server)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	d := &net.Dialer{Timeout: timeout}
	return &net.Resolver{
		// The pure Go resolver is required for the custom dialer to be used
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			return d.DialContext(ctx, network, addr)
		},
	}, nil
}

// resolveDestination returns the destination endpoint for the target.
// A literal IPv4 address is used as is, anything else is looked up
// and the first IPv4 address wins. The returned bool reports whether DNS was used.
func (c *tcpClient) resolveDestination(ctx context.Context, target string, port int) (Endpoint, bool, error) {
	if addr, err := netip.ParseAddr(target); err == nil {
		addr = addr.Unmap()
		if !addr.Is4() {
			return Endpoint{}, false, fmt.Errorf("%w: %s is not an IPv4 address", ErrResolution, target)
		}
		return Endpoint{Addr: addr, Port: port}, false, nil
	}

	addrs, err := c.resolver.LookupNetIP(ctx, "ip4", target)
	if err != nil {
		return Endpoint{}, true, fmt.Errorf("%w: %w", ErrResolution, err)
	}
	for _, addr := range addrs {
		if addr = addr.Unmap(); addr.Is4() {
			return Endpoint{Addr: addr, Port: port}, true, nil
		}
	}
	return Endpoint{}, true, fmt.Errorf("%w: %s has no IPv4 address", ErrResolution, target)
}

// resolveSource returns the local address the trace originates from.
func (c *tcpClient) resolveSource(ctx context.Context, opts *Options, dst netip.Addr) (netip.Addr, error) {
	if opts.Source != "" {
		addr, err := netip.ParseAddr(opts.Source)
		if err != nil || !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%w: invalid source %q", ErrInterfaceEnumeration, opts.Source)
		}
		return addr, nil
	}

	if opts.SourceMode == SourceRoute {
		addr, err := c.routeSource(dst)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("%w: route lookup towards %s failed: %w", ErrInterfaceEnumeration, dst, err)
		}
		logger.FromContext(ctx).DebugContext(ctx, "Selected source address from routing table", "source", addr, "destination", dst)
		return addr, nil
	}

	addrs, err := c.interfaceAddrs()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %w", ErrInterfaceEnumeration, err)
	}
	addr, err := pickSource(addrs)
	if err != nil {
		return netip.Addr{}, err
	}
	logger.FromContext(ctx).DebugContext(ctx, "Selected source address from interfaces", "source", addr)
	return addr, nil
}

// pickSource returns the first non-loopback IPv4 address.
// The first loopback IPv4 address is used if there is no other.
func pickSource(addrs []net.Addr) (netip.Addr, error) {
	var fallback netip.Addr
	for _, a := range addrs {
		addr := addrFromNet(a)
		if !addr.Is4() {
			continue
		}
		if !addr.IsLoopback() {
			return addr, nil
		}
		if !fallback.IsValid() {
			fallback = addr
		}
	}
	if fallback.IsValid() {
		return fallback, nil
	}
	return netip.Addr{}, fmt.Errorf("%w: no IPv4 interface address found", ErrInterfaceEnumeration)
}

// lookupName performs a reverse DNS lookup for the given address.
// Transient failures are retried, a missing record is not.
// If the lookup fails or returns no names, it returns an empty string.
func (c *tcpClient) lookupName(ctx context.Context, addr netip.Addr, rc helper.RetryConfig) string {
	if !addr.IsValid() {
		return ""
	}

	var name string
	lookup := func(ctx context.Context) error {
		names, err := c.resolver.LookupAddr(ctx, addr.String())
		if err != nil {
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
				return helper.Permanent(err)
			}
			return err
		}
		if len(names) > 0 {
			name = strings.TrimSuffix(names[0], ".")
		}
		return nil
	}

	if err := helper.Retry(lookup, rc)(ctx); err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "Reverse lookup failed", "addr", addr, "error", err)
		return ""
	}
	return name
}
