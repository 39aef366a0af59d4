// Copyright 2025 Gabriel Dave
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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries = 5
	defaultMaxBackoff = 60 * time.Second
)

// Governor wraps provider calls with reactive exponential backoff and
// optional proactive request pacing. The token budgeter reduces the chance
// of throttling; the governor is the backstop when estimates were wrong.
type Governor struct {
	maxRetries  int
	maxBackoff  time.Duration
	callTimeout time.Duration
	limiter     *rate.Limiter
	stats       *Stats
	logger      *slog.Logger

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// GovernorOption configures a Governor.
type GovernorOption func(*Governor)

// WithMaxRetries sets how many attempts a call gets before failing.
func WithMaxRetries(n int) GovernorOption {
	return func(g *Governor) {
		if n > 0 {
			g.maxRetries = n
		}
	}
}

// WithMaxBackoff caps the delay between attempts.
func WithMaxBackoff(d time.Duration) GovernorOption {
	return func(g *Governor) {
		if d > 0 {
			g.maxBackoff = d
		}
	}
}

// WithCallTimeout bounds each individual attempt. A timeout behaves like a
// transient failure: retried up to the attempt ceiling.
func WithCallTimeout(d time.Duration) GovernorOption {
	return func(g *Governor) {
		if d > 0 {
			g.callTimeout = d
		}
	}
}

// WithRequestPacing spreads calls across the minute to stay inside a
// requests-per-minute target. A target <= 0 disables pacing.
func WithRequestPacing(targetRPM int) GovernorOption {
	return func(g *Governor) {
		if targetRPM > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(float64(targetRPM)/60.0), 1)
		}
	}
}

// NewGovernor creates a governor recording into stats.
func NewGovernor(stats *Stats, opts ...GovernorOption) *Governor {
	g := &Governor{
		maxRetries: defaultMaxRetries,
		maxBackoff: defaultMaxBackoff,
		stats:      stats,
		logger:     slog.Default().With("component", "governor"),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Call invokes fn, retrying on throttling and transient network failures
// with exponential backoff. It makes at most maxRetries attempts. On success
// the request and its token cost are added to the run statistics. Failures
// that are neither throttling nor transient are returned immediately;
// retrying an auth or malformed-request error will not help.
func (g *Governor) Call(ctx context.Context, tokens int, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if g.callTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, g.callTimeout)
		}
		lastErr = fn(attemptCtx)
		cancel()
		if lastErr == nil {
			g.stats.AddRequest(tokens)
			return nil
		}

		rateLimited := isRateLimited(lastErr)
		if rateLimited {
			g.stats.AddRateLimitHit()
		} else if !isTransient(lastErr) {
			return lastErr
		}

		if attempt == g.maxRetries {
			break
		}

		g.stats.AddRetry()
		delay := g.backoffDelay(attempt)
		g.logger.Warn("provider call failed, backing off",
			"attempt", attempt,
			"max_attempts", g.maxRetries,
			"rate_limited", rateLimited,
			"delay", delay,
			"err", lastErr)
		if err := g.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, g.maxRetries, lastErr)
}

// backoffDelay computes the wait after a failed attempt:
// 2^attempt + attempt/2 seconds, capped at maxBackoff.
func (g *Governor) backoffDelay(attempt int) time.Duration {
	seconds := math.Pow(2, float64(attempt)) + float64(attempt)*0.5
	delay := time.Duration(seconds * float64(time.Second))
	if delay > g.maxBackoff {
		delay = g.maxBackoff
	}
	return delay
}

// sleepCtx blocks for d or until the context is cancelled.
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
