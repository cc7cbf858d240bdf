// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package traceroute discovers the routers between this host and a
// destination using TCP SYN probes.
//
// The [Client] connects to the destination port with TTLs 1, 2, 3 and so on,
// one probe at a time. The kernel's answer to each connection attempt decides
// what happened to the probe:
//   - the handshake completed, or the destination refused or reset it:
//     the destination was reached
//   - the host is unreachable: a router dropped the probe, its address is
//     taken from the ICMP time exceeded message read on a raw socket
//   - the attempt timed out: nothing answered at this TTL
//
// Any other error aborts the trace. Every hop is passed to a [Reporter]
// as soon as it is known.
//
// Reading ICMP messages requires the NET_RAW capability.
//
// Typical usage:
//
//	client := traceroute.NewClient(reporter)
//	opts := traceroute.DefaultOptions()
//	summary, err := client.Run(ctx, "example.com", &opts)
package traceroute
