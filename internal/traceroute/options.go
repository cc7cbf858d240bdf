// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"time"

	"github.com/telekom/tcptrace/internal/helper"
	"golang.org/x/net/ipv4"
)

const (
	// DefaultMaxTTL is the highest TTL probed by default.
	DefaultMaxTTL = 30
	// DefaultTimeout bounds a single connection attempt.
	DefaultTimeout = 10 * time.Second
	// DefaultRecvTimeout bounds the wait for a matching ICMP message.
	DefaultRecvTimeout = 10 * time.Second
	// DefaultRecvBufferSize is the size of the buffer a single ICMP datagram is read into.
	DefaultRecvBufferSize = 10000
	// DefaultPort is the destination port probed. It is unlikely to have a listener.
	DefaultPort = 12564
	// DefaultMaxDiscards is the number of unrelated ICMP messages tolerated per hop.
	DefaultMaxDiscards = 100

	// maxTTL is the highest TTL an IPv4 header can carry.
	maxTTL = 255
	// minRecvBufferSize fits an IPv4 header with options, the ICMP header
	// and the embedded IPv4 header with the first transport bytes.
	minRecvBufferSize = 64
)

// SourceMode selects how the local source address is determined.
type SourceMode string

const (
	// SourceInterface picks the first non-loopback IPv4 interface address.
	SourceInterface SourceMode = "interface"
	// SourceRoute asks the routing table for the preferred source towards the destination.
	SourceRoute SourceMode = "route"
)

func (m SourceMode) IsValid() bool {
	return slices.Contains([]SourceMode{SourceInterface, SourceRoute}, m)
}

// Options contains the configuration for the traceroute.
type Options struct {
	// MaxTTL is the maximum TTL to use for the traceroute.
	MaxTTL int `json:"maxTTL" yaml:"maxTTL" mapstructure:"maxTTL"`
	// Timeout is the timeout of a single connection attempt.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// RecvTimeout is the time to wait for a matching ICMP message per hop.
	RecvTimeout time.Duration `json:"recvTimeout" yaml:"recvTimeout" mapstructure:"recvTimeout"`
	// RecvBufferSize is the receive buffer size for a single ICMP datagram.
	RecvBufferSize int `json:"recvBufferSize" yaml:"recvBufferSize" mapstructure:"recvBufferSize"`
	// Port is the destination port that is probed.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// MaxDiscards is the number of unrelated ICMP messages ignored per hop
	// before the hop is reported as a timeout.
	MaxDiscards int `json:"maxDiscards" yaml:"maxDiscards" mapstructure:"maxDiscards"`
	// Source overrides the local source address. The probes are bound to it.
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	// SourceMode selects how the source address is determined if Source is empty.
	SourceMode SourceMode `json:"sourceMode" yaml:"sourceMode" mapstructure:"sourceMode"`
	// ResolveNames enables reverse DNS lookups of the hop addresses.
	ResolveNames bool `json:"resolveNames" yaml:"resolveNames" mapstructure:"resolveNames"`
	// Nameserver is the DNS server used for all lookups, as ip or ip:port.
	// The system resolver is used if empty.
	Nameserver string `json:"nameserver,omitempty" yaml:"nameserver,omitempty" mapstructure:"nameserver"`
	// LookupRetry is the retry configuration for reverse DNS lookups.
	LookupRetry helper.RetryConfig `json:"lookupRetry" yaml:"lookupRetry" mapstructure:"lookupRetry"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxTTL:         DefaultMaxTTL,
		Timeout:        DefaultTimeout,
		RecvTimeout:    DefaultRecvTimeout,
		RecvBufferSize: DefaultRecvBufferSize,
		Port:           DefaultPort,
		MaxDiscards:    DefaultMaxDiscards,
		SourceMode:     SourceInterface,
		LookupRetry: helper.RetryConfig{
			Count: 2,
			Delay: 100 * time.Millisecond,
		},
	}
}

// Validate checks the options and returns all violations joined.
func (o *Options) Validate() error {
	var errs []error
	if o.MaxTTL < 1 || o.MaxTTL > maxTTL {
		errs = append(errs, fmt.Errorf("%w: %d, must be between 1 and %d", ErrInvalidMaxTTL, o.MaxTTL, maxTTL))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidTimeout, o.Timeout))
	}
	if o.RecvTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidRecvTimeout, o.RecvTimeout))
	}
	if o.RecvBufferSize < minRecvBufferSize {
		errs = append(errs, fmt.Errorf("%w: %d, must be at least %d", ErrInvalidBufferSize, o.RecvBufferSize, minRecvBufferSize))
	}
	if o.Port < 1 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %d, must be between 1 and 65535", ErrInvalidPort, o.Port))
	}
	if o.MaxDiscards < 1 {
		errs = append(errs, fmt.Errorf("%w: %d, must be at least 1", ErrInvalidMaxDiscards, o.MaxDiscards))
	}
	if o.Source != "" {
		if addr, err := netip.ParseAddr(o.Source); err != nil || !addr.Is4() {
			errs = append(errs, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidSource, o.Source))
		}
	}
	if !o.SourceMode.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidSourceMode, o.SourceMode))
	}
	if o.Nameserver != "" {
		if _, err := nameserverAddr(o.Nameserver); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidNameserver, err))
		}
	}
	if err := o.LookupRetry.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var (
	ErrInvalidMaxTTL      = errors.New("invalid max TTL")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrInvalidRecvTimeout = errors.New("invalid receive timeout")
	ErrInvalidBufferSize  = errors.New("invalid receive buffer size")
	ErrInvalidPort        = errors.New("invalid port")
	ErrInvalidMaxDiscards = errors.New("invalid max discards")
	ErrInvalidSource      = errors.New("invalid source address")
	ErrInvalidSourceMode  = errors.New("invalid source mode")
	ErrInvalidNameserver  = errors.New("invalid nameserver")
)

// recvBufferSize returns the buffer size, never smaller than an IPv4 header.
func (o *Options) recvBufferSize() int {
	return max(o.RecvBufferSize, ipv4.HeaderLen)
}
