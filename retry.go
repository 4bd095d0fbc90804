// Copyright 2026 The SampleGuard Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rfid

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig tunes retry behavior for transient tag faults
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (0 = no retry)
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff growth
	MaxBackoff time.Duration
	// BackoffMultiplier is the per-attempt backoff growth factor
	BackoffMultiplier float64
	// Jitter adds up to this fraction of random extra backoff
	Jitter float64
	// RetryTimeout bounds the whole sequence of attempts
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns settings suited to RF-level transients: a few
// quick attempts with short backoff, since a tag either answers within
// milliseconds or has left the field.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      3 * time.Second,
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, exhausts
// its attempts, or the context ends. Only errors IsRetryable accepts are
// retried; everything else returns immediately.
func Retry(ctx context.Context, config *RetryConfig, op func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts <= 0 {
		return op()
	}

	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if attempt == config.MaxAttempts-1 {
			break
		}
		if err := sleepCtx(ctx, jittered(backoff, config.Jitter)); err != nil {
			return lastErr
		}
		backoff = min(time.Duration(float64(backoff)*config.BackoffMultiplier), config.MaxBackoff)
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func jittered(backoff time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return backoff
	}
	extra := rand.Float64() * jitter * float64(backoff) //nolint:gosec // Backoff jitter, not crypto
	return backoff + time.Duration(extra)
}
