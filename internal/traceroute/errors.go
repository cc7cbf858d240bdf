// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
)

var (
	// ErrResolution is returned when the destination has no IPv4 address.
	ErrResolution = errors.New("unable to resolve destination")
	// ErrInterfaceEnumeration is returned when no local IPv4 source address can be determined.
	ErrInterfaceEnumeration = errors.New("unable to determine local source address")
	// ErrSocketCreation is returned when the probe or observer channel cannot be opened.
	// Opening the observer requires the NET_RAW capability.
	ErrSocketCreation = errors.New("unable to create socket")
	// ErrSocketConfig is returned when a socket option cannot be applied.
	ErrSocketConfig = errors.New("unable to configure socket")
	// ErrTraceExhausted is returned when the destination was not reached within the maximum TTL.
	ErrTraceExhausted = errors.New("destination not reached within maximum TTL")
)

var (
	// errICMPTimeout is the reason of a timeout hop when no matching ICMP message arrived in time.
	errICMPTimeout = errors.New("no matching ICMP message received before deadline")
	// errDiscardLimit is the reason of a timeout hop when too many unrelated ICMP messages arrived.
	errDiscardLimit = errors.New("too many unrelated ICMP messages")
	// errProbeTimeout is the reason of a timeout hop when the connection attempt timed out.
	errProbeTimeout = errors.New("connection attempt timed out")
)

// UnexpectedProbeError is returned when a connection attempt fails
// with an error the classifier does not recognize.
type UnexpectedProbeError struct {
	// Code is the raw error code, 0 if the error carried none.
	Code int
	// Err is the underlying error.
	Err error
}

func (e *UnexpectedProbeError) Error() string {
	return fmt.Sprintf("unknown error: %d sending SYN packet: %v", e.Code, e.Err)
}

func (e *UnexpectedProbeError) Unwrap() error {
	return e.Err
}
