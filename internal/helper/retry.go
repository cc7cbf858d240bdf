// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/telekom/tcptrace/internal/logger"
)

// RetryConfig configures how often and how fast a failed call is repeated.
type RetryConfig struct {
	// Count is the number of retries after the first attempt.
	Count int `json:"count" yaml:"count" mapstructure:"count"`
	// Delay is the initial delay, doubled with every retry.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// Validate checks the retry configuration for negative values.
func (rc RetryConfig) Validate() error {
	if rc.Count < 0 {
		return fmt.Errorf("retry count must not be negative, got %d", rc.Count)
	}
	if rc.Delay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", rc.Delay)
	}
	return nil
}

// Effector will be the function called by the Retry function
type Effector func(context.Context) error

// permanentError stops the retry loop.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
// Retry returns the wrapped error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry will retry the run the effector function in an exponential backoff
func Retry(effector Effector, rc RetryConfig) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := logger.FromContext(ctx)
		for r := 1; ; r++ {
			err := effector(ctx)
			var perr *permanentError
			if errors.As(err, &perr) {
				return perr.err
			}
			if err == nil || r > rc.Count {
				return err
			}

			delay := getExpBackoff(rc.Delay, r)
			log.DebugContext(ctx, fmt.Sprintf("Effector call failed, retrying in %v", delay), "attempt", r, "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

// calculate the exponential delay for a given iteration
// first iteration is 1
func getExpBackoff(initialDelay time.Duration, iteration int) time.Duration {
	if iteration <= 1 {
		return initialDelay
	}
	return time.Duration(math.Pow(2, float64(iteration-1))) * initialDelay
}
