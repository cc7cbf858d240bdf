// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tcptrace/internal/traceroute"
)

// fakeTrace reports a three hop trace to the reporter the client was created with.
func fakeTrace(t *testing.T, runErr error) (*traceroute.ClientMock, func(traceroute.Reporter) traceroute.Client) {
	t.Helper()
	mock := &traceroute.ClientMock{
		GetMetricCollectorsFunc: func() []prometheus.Collector { return nil },
	}
	return mock, func(r traceroute.Reporter) traceroute.Client {
		mock.RunFunc = func(_ context.Context, target string, opts *traceroute.Options) (traceroute.Summary, error) {
			dst := traceroute.Endpoint{Addr: netip.MustParseAddr("198.51.100.7"), Port: opts.Port}
			r.Start(traceroute.Header{
				Source:      netip.MustParseAddr("192.0.2.10"),
				Target:      target,
				Destination: dst,
				Resolved:    target != dst.Addr.String(),
				MaxTTL:      opts.MaxTTL,
			})
			r.Hop(traceroute.Hop{TTL: 1, Outcome: traceroute.OutcomeIntermediate, Addr: netip.MustParseAddr("203.0.113.1")})
			if runErr != nil {
				r.Hop(traceroute.Hop{TTL: 2, Outcome: traceroute.OutcomeTimeout})
				s := traceroute.Summary{Destination: dst, Hops: 2, MaxTTL: opts.MaxTTL, Err: runErr}
				r.Finish(s)
				return s, runErr
			}
			r.Hop(traceroute.Hop{TTL: 2, Outcome: traceroute.OutcomeReached, Addr: dst.Addr, Latency: time.Millisecond})
			s := traceroute.Summary{Destination: dst, Reached: true, Hops: 2, MaxTTL: opts.MaxTTL}
			r.Finish(s)
			return s, nil
		}
		return mock
	}
}

// execute runs the command tree with the given arguments and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	c := BuildCmd("test")
	c.SetArgs(args)
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	err := c.Execute()
	return stdout.String(), err
}

func useClient(t *testing.T, f func(traceroute.Reporter) traceroute.Client) {
	t.Helper()
	old := newClient
	newClient = f
	t.Cleanup(func() { newClient = old })
}

func TestRoot_Text(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	out, err := execute(t, "example.com")
	require.NoError(t, err)

	want := strings.Join([]string{
		"Traceroute from host: 192.0.2.10",
		"[DNS resolution] example.com resolved to 198.51.100.7",
		"--------------- traceroute results ---------------",
		"0: 192.0.2.10 [start]",
		"1: 203.0.113.1",
		"2: 198.51.100.7 [complete]",
		"--------------- traceroute terminated ---------------",
	}, "\n") + "\n"
	assert.Equal(t, want, out)

	require.Len(t, mock.RunCalls(), 1)
	call := mock.RunCalls()[0]
	assert.Equal(t, "example.com", call.Target)
	assert.Equal(t, traceroute.DefaultOptions(), *call.Opts)
}

func TestRoot_Exhausted(t *testing.T) {
	_, f := fakeTrace(t, fmt.Errorf("%w: 30", traceroute.ErrTraceExhausted))
	useClient(t, f)

	out, err := execute(t, "198.51.100.7")
	require.ErrorIs(t, err, traceroute.ErrTraceExhausted)
	assert.NotContains(t, out, "[DNS resolution]")
	assert.True(t, strings.HasSuffix(out, "Unable to reach host within TTL of 30\n--------------- traceroute terminated ---------------\n"), out)
}

func TestRoot_ErrorPrintedOnce(t *testing.T) {
	_, f := fakeTrace(t, fmt.Errorf("%w: 30", traceroute.ErrTraceExhausted))
	useClient(t, f)
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	c := BuildCmd("test")
	c.SetArgs([]string{"198.51.100.7"})
	c.SetOut(&stdout)
	c.SetErr(&stderr)

	require.ErrorIs(t, c.Execute(), traceroute.ErrTraceExhausted)
	assert.NotContains(t, stderr.String(), "Error:", "Execute prints the error")
	assert.NotContains(t, stderr.String(), "Usage:")
}

func TestRoot_Args(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	for _, args := range [][]string{{}, {"a.example.com", "b.example.com"}} {
		_, err := execute(t, args...)
		assert.Error(t, err, "args %v", args)
	}
	assert.Empty(t, mock.RunCalls())
}

func TestRoot_Flags(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	out, err := execute(t,
		"--max-ttl", "12",
		"-p", "443",
		"--timeout", "2s",
		"--source-mode", "route",
		"--resolve-names",
		"--output", "json",
		"example.com",
	)
	require.NoError(t, err)

	require.Len(t, mock.RunCalls(), 1)
	opts := mock.RunCalls()[0].Opts
	assert.Equal(t, 12, opts.MaxTTL)
	assert.Equal(t, 443, opts.Port)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, traceroute.SourceRoute, opts.SourceMode)
	assert.True(t, opts.ResolveNames)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "start, two hops and finish")
	for _, l := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec), l)
		assert.Contains(t, rec, "event")
	}
}

func TestRoot_Env(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)
	t.Setenv("TCPTRACE_TRACE_MAXTTL", "7")
	t.Setenv("TCPTRACE_TRACE_RECVTIMEOUT", "250ms")

	_, err := execute(t, "--max-ttl", "9", "example.com")
	require.NoError(t, err)
	opts := mock.RunCalls()[0].Opts
	assert.Equal(t, 9, opts.MaxTTL, "flags take precedence over the environment")
	assert.Equal(t, 250*time.Millisecond, opts.RecvTimeout)
}

func TestRoot_ConfigFile(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	path := filepath.Join(t.TempDir(), "tcptrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
trace:
  maxTTL: 20
  port: 8443
  maxDiscards: 5
  lookupRetry:
    count: 4
    delay: 1s
output:
  format: yaml
`), 0o600))

	out, err := execute(t, "--config", path, "example.com")
	require.NoError(t, err)

	opts := mock.RunCalls()[0].Opts
	assert.Equal(t, 20, opts.MaxTTL)
	assert.Equal(t, 8443, opts.Port)
	assert.Equal(t, 5, opts.MaxDiscards)
	assert.Equal(t, 4, opts.LookupRetry.Count)
	assert.Equal(t, time.Second, opts.LookupRetry.Delay)
	assert.Contains(t, out, "event: start")
}

func TestRoot_ConfigFileMissing(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "example.com")
	require.Error(t, err)
	assert.Empty(t, mock.RunCalls())
}

func TestRoot_InvalidConfig(t *testing.T) {
	mock, f := fakeTrace(t, nil)
	useClient(t, f)

	_, err := execute(t, "--max-ttl", "0", "--output", "xml", "example.com")
	require.ErrorIs(t, err, traceroute.ErrInvalidMaxTTL)
	assert.Empty(t, mock.RunCalls())
}

func TestRoot_MetricsFile(t *testing.T) {
	_, f := fakeTrace(t, nil)
	useClient(t, f)
	path := filepath.Join(t.TempDir(), "tcptrace.prom")

	_, err := execute(t, "--metrics-file", path, "example.com")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `tcptrace_run_info{port="12564",source="",target="example.com",version="test"} 1`)
}

func TestSchema(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, out, "latencyMs")

	out, err = execute(t, "schema", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "properties:")
}
