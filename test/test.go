// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test contains helpers shared by the tests of this module.
package test

import "testing"

// MarkAsLong marks the test as long running, e.g. because it opens
// real sockets or exporters. It is skipped when running with -short.
func MarkAsLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long running test in short mode")
	}
}
