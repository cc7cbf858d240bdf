// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/telekom/tcptrace/internal/logger"
	"github.com/telekom/tcptrace/internal/output"
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	if vErr := c.Trace.Validate(); vErr != nil {
		log.Error("The trace configuration is invalid")
		err = errors.Join(err, ErrInvalidTrace, vErr)
	}

	if _, fErr := output.ParseFormat(c.Output.Format); fErr != nil {
		log.Error("The output format is invalid", "format", c.Output.Format)
		err = errors.Join(err, ErrInvalidOutputFormat, fErr)
	}

	if vErr := c.Telemetry.Validate(ctx); vErr != nil {
		log.Error("The telemetry configuration is invalid")
		err = errors.Join(err, ErrInvalidTelemetry, vErr)
	}

	if c.HasMetricsFile() {
		if vErr := validateMetricsFile(c.Telemetry.MetricsFile); vErr != nil {
			log.Error("The metrics file cannot be written", "file", c.Telemetry.MetricsFile)
			err = errors.Join(err, vErr)
		}
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// validateMetricsFile checks that the directory of the metrics file exists.
func validateMetricsFile(path string) error {
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMetricsFile, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidMetricsFile, filepath.Dir(path))
	}
	return nil
}
