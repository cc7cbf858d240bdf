// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package pkg contains metadata about tcptrace.
package pkg

// Version is the current version of tcptrace.
// It is set by the main package from the version given at build time.
var Version = "dev"
