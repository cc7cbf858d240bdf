// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"errors"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/telekom/tcptrace/internal/traceroute"
)

// Event is the kind of a [Record].
type Event string

const (
	EventStart  Event = "start"
	EventHop    Event = "hop"
	EventFinish Event = "finish"
)

// Record is a single event of a trace as written by the structured outputs.
// Exactly one of Start, Hop and Finish is set, depending on Event.
type Record struct {
	Event  Event         `json:"event" yaml:"event"`
	Time   time.Time     `json:"time" yaml:"time"`
	Start  *StartRecord  `json:"start,omitempty" yaml:"start,omitempty"`
	Hop    *HopRecord    `json:"hop,omitempty" yaml:"hop,omitempty"`
	Finish *FinishRecord `json:"finish,omitempty" yaml:"finish,omitempty"`
}

// StartRecord describes the set up trace.
type StartRecord struct {
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	Destination string `json:"destination" yaml:"destination"`
	Port        int    `json:"port" yaml:"port"`
	Resolved    bool   `json:"resolved" yaml:"resolved"`
	MaxTTL      int    `json:"maxTTL" yaml:"maxTTL"`
}

// HopRecord describes a single probed TTL.
type HopRecord struct {
	TTL     int     `json:"ttl" yaml:"ttl"`
	Outcome string  `json:"outcome" yaml:"outcome"`
	Addr    string  `json:"addr,omitempty" yaml:"addr,omitempty"`
	Name    string  `json:"name,omitempty" yaml:"name,omitempty"`
	Latency float64 `json:"latencyMs" yaml:"latencyMs"`
	Code    int     `json:"code,omitempty" yaml:"code,omitempty"`
	Reason  string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// FinishRecord describes the end of a trace.
type FinishRecord struct {
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Reached     bool   `json:"reached" yaml:"reached"`
	Exhausted   bool   `json:"exhausted" yaml:"exhausted"`
	Hops        int    `json:"hops" yaml:"hops"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// now is replaced in tests.
var now = time.Now

func newStartRecord(h traceroute.Header) Record {
	return Record{
		Event: EventStart,
		Time:  now(),
		Start: &StartRecord{
			Source:      h.Source.String(),
			Target:      h.Target,
			Destination: h.Destination.Addr.String(),
			Port:        h.Destination.Port,
			Resolved:    h.Resolved,
			MaxTTL:      h.MaxTTL,
		},
	}
}

func newHopRecord(h traceroute.Hop) Record {
	hr := &HopRecord{
		TTL:     h.TTL,
		Outcome: h.Outcome.String(),
		Name:    h.Name,
		Latency: float64(h.Latency.Microseconds()) / 1000,
		Code:    h.Code,
	}
	if h.Addr.IsValid() {
		hr.Addr = h.Addr.String()
	}
	if h.Err != nil {
		hr.Reason = h.Err.Error()
	}
	return Record{Event: EventHop, Time: now(), Hop: hr}
}

func newFinishRecord(s traceroute.Summary) Record {
	fr := &FinishRecord{
		Reached:   s.Reached,
		Exhausted: s.Exhausted(),
		Hops:      s.Hops,
	}
	if s.Destination.Addr.IsValid() {
		fr.Destination = s.Destination.Addr.String()
	}
	if s.Err != nil {
		fr.Error = s.Err.Error()
	}
	return Record{Event: EventFinish, Time: now(), Finish: fr}
}

// Schema returns the OpenAPI schema of a [Record].
func Schema() (*openapi3.SchemaRef, error) {
	ref, err := openapi3gen.NewSchemaRefForValue(Record{}, nil)
	if err != nil {
		return nil, errors.Join(errors.New("failed to generate record schema"), err)
	}
	return ref, nil
}
