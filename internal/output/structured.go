// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/telekom/tcptrace/internal/traceroute"
	"gopkg.in/yaml.v3"
)

var (
	_ Output  = (*Structured)(nil)
	_ encoder = (*json.Encoder)(nil)
	_ encoder = (*yaml.Encoder)(nil)
)

// encoder writes a single value.
type encoder interface {
	Encode(v any) error
}

// Structured writes every event as a [Record] as soon as it happens.
type Structured struct {
	mu  sync.Mutex
	enc encoder

	// close finishes the stream, it may be nil.
	close func() error
	err   error
}

// NewJSON creates an output writing one JSON object per line.
func NewJSON(w io.Writer) *Structured {
	return &Structured{enc: json.NewEncoder(w)}
}

// NewYAML creates an output writing one YAML document per event.
func NewYAML(w io.Writer) *Structured {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &Structured{enc: enc, close: enc.Close}
}

func (s *Structured) Start(h traceroute.Header) {
	s.write(newStartRecord(h))
}

func (s *Structured) Hop(h traceroute.Hop) {
	s.write(newHopRecord(h))
}

func (s *Structured) Finish(sum traceroute.Summary) {
	s.write(newFinishRecord(sum))
}

// Close finishes the stream and returns the first encoding error.
func (s *Structured) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.close != nil && s.err == nil {
		s.err = s.close()
		s.close = nil
	}
	return s.err
}

func (s *Structured) write(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.err = s.enc.Encode(r)
}
