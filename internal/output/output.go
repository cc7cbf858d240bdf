// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package output renders the progress of a trace.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/telekom/tcptrace/internal/traceroute"
)

var (
	_ Output              = (*Manager)(nil)
	_ traceroute.Reporter = (*Manager)(nil)
)

// Output is a [traceroute.Reporter] that holds resources.
type Output interface {
	traceroute.Reporter
	// Close flushes and releases the output.
	Close() error
}

// Format is the name of an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

// IsValid reports whether the format is supported.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ParseFormat returns the format with the given case-insensitive name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q, want one of %v", ErrUnknownFormat, s, Formats())
	}
	return f, nil
}

// New creates an output of the given format writing to w.
func New(f Format, w io.Writer) (Output, error) {
	switch f {
	case FormatText:
		return NewText(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	case FormatYAML:
		return NewYAML(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Manager fans every event out to all registered outputs.
type Manager struct {
	outputs []Output
}

// NewManager creates a manager with the given outputs registered.
func NewManager(outputs ...Output) *Manager {
	m := &Manager{}
	for _, o := range outputs {
		m.Register(o)
	}
	return m
}

// Register adds an output. Nil outputs are ignored.
func (m *Manager) Register(o Output) {
	if o == nil {
		return
	}
	m.outputs = append(m.outputs, o)
}

func (m *Manager) Start(h traceroute.Header) {
	for _, o := range m.outputs {
		o.Start(h)
	}
}

func (m *Manager) Hop(h traceroute.Hop) {
	for _, o := range m.outputs {
		o.Hop(h)
	}
}

func (m *Manager) Finish(s traceroute.Summary) {
	for _, o := range m.outputs {
		o.Finish(s)
	}
}

// Close closes all outputs and returns their joined errors.
func (m *Manager) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
