// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package route asks the kernel routing table which source address
// and interface it would use to reach a destination.
package route

import (
	"errors"
	"net"
	"net/netip"
)

// ErrUnsupported is returned on platforms without a routing table lookup.
var ErrUnsupported = errors.New("route lookup not supported on this platform")

// Route is the kernel's choice for reaching a destination.
type Route struct {
	// Destination is the address the route was looked up for.
	Destination netip.Addr
	// Gateway is the next hop, invalid for directly connected destinations.
	Gateway netip.Addr
	// Source is the preferred source address.
	Source netip.Addr
	// Interface is the outgoing interface.
	Interface *net.Interface
}

// Get returns the route the kernel uses for the given IPv4 address.
func Get(ip netip.Addr) (Route, error) {
	return get(ip.Unmap())
}

// Source returns the preferred source address towards the given IPv4 address.
func Source(ip netip.Addr) (netip.Addr, error) {
	r, err := Get(ip)
	if err != nil {
		return netip.Addr{}, err
	}
	return r.Source, nil
}
