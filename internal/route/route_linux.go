// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package route

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink"
	"golang.org/x/sys/unix"
)

// fetchRouteMessages asks the kernel for the route towards ip.
// Variable for mocking in tests.
var fetchRouteMessages = func(ip netip.Addr) ([]rtnetlink.RouteMessage, error) {
	c, err := rtnetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rtnetlink: %w", err)
	}
	defer func() { _ = c.Close() }()

	tx := &rtnetlink.RouteMessage{
		Family: unix.AF_INET,
		Table:  unix.RT_TABLE_MAIN,
		Attributes: rtnetlink.RouteAttributes{
			Dst: ip.AsSlice(),
		},
	}
	return c.Route.Get(tx)
}

// interfaceByIndex resolves the outgoing interface of a route.
// Variable for mocking in tests.
var interfaceByIndex = net.InterfaceByIndex

// selectRoute converts the kernel's answer for ip into a [Route].
func selectRoute(ip netip.Addr, msgs []rtnetlink.RouteMessage) (Route, error) {
	// RTM_GETROUTE returns the single most specific route
	switch {
	case len(msgs) == 0:
		return Route{}, fmt.Errorf("no route found for %s", ip)
	case len(msgs) > 1:
		return Route{}, fmt.Errorf("multiple routes found for %s", ip)
	}
	m := msgs[0]

	dst, ok := netip.AddrFromSlice(m.Attributes.Dst)
	if !ok || dst.Unmap() != ip {
		return Route{}, fmt.Errorf("no matching route found for %s", ip)
	}
	src, ok := netip.AddrFromSlice(m.Attributes.Src)
	if !ok || !src.Unmap().Is4() {
		return Route{}, fmt.Errorf("route to %s has no IPv4 source address", ip)
	}
	gw, _ := netip.AddrFromSlice(m.Attributes.Gateway)

	intf, err := interfaceByIndex(int(m.Attributes.OutIface))
	if err != nil {
		return Route{}, fmt.Errorf("failed to get interface by index %d: %w", m.Attributes.OutIface, err)
	}
	if intf.Flags&net.FlagUp == 0 {
		return Route{}, fmt.Errorf("interface %s is down", intf.Name)
	}

	return Route{
		Destination: ip,
		Gateway:     gw.Unmap(),
		Source:      src.Unmap(),
		Interface:   intf,
	}, nil
}

func get(ip netip.Addr) (Route, error) {
	if !ip.Is4() {
		return Route{}, errors.New("only IPv4 destinations are supported")
	}
	msgs, err := fetchRouteMessages(ip)
	if err != nil {
		return Route{}, err
	}
	r, err := selectRoute(ip, msgs)
	if err != nil {
		return Route{}, fmt.Errorf("failed to get most specific route: %w", err)
	}
	return r, nil
}
