// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidTrace is returned when the trace options are invalid
	ErrInvalidTrace = errors.New("invalid trace options")
	// ErrInvalidOutputFormat is returned when the output format is unknown
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidTelemetry is returned when the telemetry configuration is invalid
	ErrInvalidTelemetry = errors.New("invalid telemetry configuration")
	// ErrInvalidMetricsFile is returned when the metrics file cannot be written
	ErrInvalidMetricsFile = errors.New("invalid metrics file")
)
