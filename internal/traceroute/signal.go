// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	// protocolICMP is the IANA protocol number of ICMP for IPv4.
	protocolICMP = 1
	// protocolTCP is the IANA protocol number of TCP.
	protocolTCP = 6
)

// ICMP codes for Time Exceeded and Destination Unreachable messages.
// For more information, see:
// https://www.iana.org/assignments/icmp-parameters/icmp-parameters.xhtml
const (
	// icmpTimeExceededTransit is the ICMP code for Time Exceeded - "TTL exceeded in transit" messages.
	icmpTimeExceededTransit = 0
	// icmpUnreachablePort is the ICMP code for Destination Unreachable - "Port Unreachable" messages.
	icmpUnreachablePort = 3
)

var errNotICMP = errors.New("datagram does not carry ICMP")

// icmpSignal is the parsed view of a received ICMP datagram.
type icmpSignal struct {
	// outer is the IPv4 header of the received datagram.
	outer *ipv4.Header
	// typ is the ICMP message type.
	typ icmp.Type
	// code is the ICMP message code.
	code int
	// inner is the IPv4 header embedded in time exceeded and destination
	// unreachable messages. It is nil for other messages or if the
	// embedded header is truncated.
	inner *ipv4.Header
	// srcPort and dstPort are the first two transport fields following
	// the inner header, zero if the datagram is too short.
	srcPort, dstPort int
}

// parseSignal parses a raw IPv4 datagram including its header into an [icmpSignal].
// The header length declared by the outer header locates the ICMP message,
// and the embedded header length locates the transport ports.
func parseSignal(b []byte) (icmpSignal, error) {
	outer, err := ipv4.ParseHeader(b)
	if err != nil {
		return icmpSignal{}, fmt.Errorf("failed to parse IPv4 header: %w", err)
	}
	if outer.Protocol != protocolICMP {
		return icmpSignal{}, fmt.Errorf("%w: protocol %d", errNotICMP, outer.Protocol)
	}
	if outer.Len > len(b) {
		return icmpSignal{}, fmt.Errorf("IPv4 header length %d exceeds datagram length %d", outer.Len, len(b))
	}

	msg, err := icmp.ParseMessage(protocolICMP, b[outer.Len:])
	if err != nil {
		return icmpSignal{}, fmt.Errorf("failed to parse ICMP message: %w", err)
	}

	sig := icmpSignal{
		outer: outer,
		typ:   msg.Type,
		code:  msg.Code,
	}

	var data []byte
	switch body := msg.Body.(type) {
	case *icmp.TimeExceeded:
		data = body.Data
	case *icmp.DstUnreach:
		data = body.Data
	default:
		return sig, nil
	}

	inner, err := ipv4.ParseHeader(data)
	if err != nil {
		// Routers may truncate the quoted datagram,
		// the type and code are still usable.
		return sig, nil
	}
	sig.inner = inner

	if len(data) >= inner.Len+4 {
		sig.srcPort = int(binary.BigEndian.Uint16(data[inner.Len:]))
		sig.dstPort = int(binary.BigEndian.Uint16(data[inner.Len+2:]))
	}
	return sig, nil
}

// isTimeExceeded reports whether the signal is an ICMP "TTL exceeded in transit" message.
func (s icmpSignal) isTimeExceeded() bool {
	return s.typ == ipv4.ICMPTypeTimeExceeded && s.code == icmpTimeExceededTransit
}

// isPortUnreachable reports whether the signal is an ICMP "port unreachable" message.
func (s icmpSignal) isPortUnreachable() bool {
	return s.typ == ipv4.ICMPTypeDestinationUnreachable && s.code == icmpUnreachablePort
}

// innerTCP reports whether the embedded datagram was a TCP segment.
func (s icmpSignal) innerTCP() bool {
	return s.inner != nil && s.inner.Protocol == protocolTCP
}

// innerDst returns the destination of the embedded datagram.
func (s icmpSignal) innerDst() (netip.Addr, bool) {
	if s.inner == nil {
		return netip.Addr{}, false
	}
	addr, ok := netip.AddrFromSlice(s.inner.Dst.To4())
	return addr, ok
}
