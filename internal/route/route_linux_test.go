// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package route

import (
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jsimonetti/rtnetlink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSelectRoute(t *testing.T) {
	ip := netip.MustParseAddr("192.0.2.100")
	eth0 := &net.Interface{Index: 2, Name: "eth0", Flags: net.FlagUp}
	down := &net.Interface{Index: 3, Name: "eth1"}

	msg := func(dst, gw, src string, idx uint32) rtnetlink.RouteMessage {
		m := rtnetlink.RouteMessage{
			Family: unix.AF_INET,
			Attributes: rtnetlink.RouteAttributes{
				Dst:      netip.MustParseAddr(dst).AsSlice(),
				OutIface: idx,
			},
		}
		if gw != "" {
			m.Attributes.Gateway = netip.MustParseAddr(gw).AsSlice()
		}
		if src != "" {
			m.Attributes.Src = netip.MustParseAddr(src).AsSlice()
		}
		return m
	}

	tests := []struct {
		name    string
		msgs    []rtnetlink.RouteMessage
		want    Route
		wantErr bool
	}{
		{
			name: "via gateway",
			msgs: []rtnetlink.RouteMessage{msg("192.0.2.100", "192.0.2.1", "192.0.2.10", 2)},
			want: Route{
				Destination: ip,
				Gateway:     netip.MustParseAddr("192.0.2.1"),
				Source:      netip.MustParseAddr("192.0.2.10"),
				Interface:   eth0,
			},
		},
		{
			name: "directly connected",
			msgs: []rtnetlink.RouteMessage{msg("192.0.2.100", "", "192.0.2.10", 2)},
			want: Route{
				Destination: ip,
				Source:      netip.MustParseAddr("192.0.2.10"),
				Interface:   eth0,
			},
		},
		{
			name:    "no routes",
			wantErr: true,
		},
		{
			name: "multiple routes",
			msgs: []rtnetlink.RouteMessage{
				msg("192.0.2.100", "", "192.0.2.10", 2),
				msg("192.0.2.100", "", "192.0.2.20", 2),
			},
			wantErr: true,
		},
		{
			name:    "other destination",
			msgs:    []rtnetlink.RouteMessage{msg("192.0.2.101", "", "192.0.2.10", 2)},
			wantErr: true,
		},
		{
			name:    "missing source",
			msgs:    []rtnetlink.RouteMessage{msg("192.0.2.100", "192.0.2.1", "", 2)},
			wantErr: true,
		},
		{
			name:    "interface down",
			msgs:    []rtnetlink.RouteMessage{msg("192.0.2.100", "", "192.0.2.10", 3)},
			wantErr: true,
		},
		{
			name:    "unknown interface",
			msgs:    []rtnetlink.RouteMessage{msg("192.0.2.100", "", "192.0.2.10", 9)},
			wantErr: true,
		},
	}

	orig := interfaceByIndex
	t.Cleanup(func() { interfaceByIndex = orig })
	interfaceByIndex = func(idx int) (*net.Interface, error) {
		switch idx {
		case eth0.Index:
			return eth0, nil
		case down.Index:
			return down, nil
		default:
			return nil, errors.New("no such network interface")
		}
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectRoute(ip, tt.msgs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
				t.Errorf("selectRoute() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet(t *testing.T) {
	origFetch, origIface := fetchRouteMessages, interfaceByIndex
	t.Cleanup(func() {
		fetchRouteMessages = origFetch
		interfaceByIndex = origIface
	})
	interfaceByIndex = func(idx int) (*net.Interface, error) {
		return &net.Interface{Index: idx, Name: "eth0", Flags: net.FlagUp}, nil
	}

	ip := netip.MustParseAddr("198.51.100.7")
	fetchRouteMessages = func(got netip.Addr) ([]rtnetlink.RouteMessage, error) {
		assert.Equal(t, ip, got)
		return []rtnetlink.RouteMessage{{
			Family: unix.AF_INET,
			Attributes: rtnetlink.RouteAttributes{
				Dst:      ip.AsSlice(),
				Src:      netip.MustParseAddr("192.0.2.10").AsSlice(),
				OutIface: 2,
			},
		}}, nil
	}

	src, err := Source(ip)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("192.0.2.10"), src)

	fetchRouteMessages = func(netip.Addr) ([]rtnetlink.RouteMessage, error) {
		return nil, errors.New("netlink unavailable")
	}
	_, err = Source(ip)
	require.Error(t, err)

	_, err = Get(netip.MustParseAddr("2001:db8::1"))
	require.Error(t, err)
}
