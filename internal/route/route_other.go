// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package route

import "net/netip"

func get(netip.Addr) (Route, error) {
	return Route{}, ErrUnsupported
}
