// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/telekom/tcptrace/internal/traceroute"
)

const (
	bannerResults    = "--------------- traceroute results ---------------"
	bannerTerminated = "--------------- traceroute terminated ---------------"
)

var _ Output = (*Text)(nil)

// Text renders a trace as human readable lines, one per hop.
type Text struct {
	w *bufio.Writer
	// err is the first write error, later writes are skipped.
	err error
}

// NewText creates a text output writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: bufio.NewWriter(w)}
}

func (t *Text) Start(h traceroute.Header) {
	t.println("Traceroute from host: %s", h.Source)
	if h.Resolved {
		t.println("[DNS resolution] %s resolved to %s", h.Target, h.Destination.Addr)
	}
	t.println(bannerResults)
	t.println("0: %s [start]", h.Source)
	t.flush()
}

// Hop writes the hop line and flushes it, the next hop may take seconds.
func (t *Text) Hop(h traceroute.Hop) {
	t.println("%s", h)
	t.flush()
}

// Finish writes the closing lines. Nothing is written if the trace failed
// with an error other than running out of TTLs.
func (t *Text) Finish(s traceroute.Summary) {
	switch {
	case s.Reached:
		t.println(bannerTerminated)
	case s.Exhausted():
		t.println("Unable to reach host within TTL of %d", s.MaxTTL)
		t.println(bannerTerminated)
	}
	t.flush()
}

// Close flushes the output and returns the first write error.
func (t *Text) Close() error {
	t.flush()
	return t.err
}

func (t *Text) println(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Text) flush() {
	if t.err != nil {
		return
	}
	t.err = t.w.Flush()
}
