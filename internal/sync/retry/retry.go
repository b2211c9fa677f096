// Package retry wraps upstream API calls with classification-aware backoff.
//
// Rate-limit errors carry throttle metadata that shortcuts the usual
// exponential schedule: when the short windows report remaining capacity the
// call retries immediately, otherwise it waits out the throttle window. Quota
// exhaustion is terminal and never retried.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/sync/metrics"
)

// Config defines retry behavior.
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
	ThrottleWait    time.Duration
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	MaxRetries:      5,
	BaseDelay:       1 * time.Second,
	MaxDelay:        60 * time.Second,
	BackoffMultiple: 2.0,
	ThrottleWait:    60 * time.Second,
}

// Policy executes operations under a retry schedule. The sleep and random
// hooks exist so tests can run without wall-clock delays.
type Policy struct {
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
	randf func() float64
}

// NewPolicy builds a policy from cfg, filling zero fields from DefaultConfig.
func NewPolicy(cfg Config) *Policy {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig.MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	if cfg.BackoffMultiple <= 0 {
		cfg.BackoffMultiple = DefaultConfig.BackoffMultiple
	}
	if cfg.ThrottleWait <= 0 {
		cfg.ThrottleWait = DefaultConfig.ThrottleWait
	}
	return &Policy{cfg: cfg, sleep: sleepCtx, randf: rand.Float64}
}

// Do runs op until it succeeds, exhausts the retry budget, or fails with a
// non-retryable error. The attempt count is MaxRetries retries after the
// initial call.
func (p *Policy) Do(ctx context.Context, name string, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		// Quota exhaustion is daily-scoped: stop immediately, no sleep.
		if keap.IsQuotaExhausted(err) {
			return err
		}
		if !keap.IsRetryable(err) {
			return err
		}
		if attempt == p.cfg.MaxRetries {
			break
		}

		delay := p.delayFor(err, attempt)
		metrics.RetriesTotal.Inc()
		slog.Warn("Retrying after transient error",
			"op", name, "attempt", attempt+1, "max_retries", p.cfg.MaxRetries,
			"delay", delay, "error", err)
		if delay > 0 {
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, p.cfg.MaxRetries+1, lastErr)
}

// delayFor picks the wait before the next attempt. Rate-limit errors with
// throttle headers consult them; a 429 without headers and everything else
// gets jittered exponential backoff.
func (p *Policy) delayFor(err error, attempt int) time.Duration {
	if throttle, ok := keap.ThrottleOf(err); ok && throttle.HasThrottleMetadata() {
		if throttle.HasCapacity() {
			return 0
		}
		// Throttle window exhausted. Wait it out plus a spread so parallel
		// runs do not stampede the instant it resets.
		return p.cfg.ThrottleWait + time.Duration(p.randf()*10*float64(time.Second))
	}

	delay := float64(p.cfg.BaseDelay) * math.Pow(p.cfg.BackoffMultiple, float64(attempt))
	if delay > float64(p.cfg.MaxDelay) {
		delay = float64(p.cfg.MaxDelay)
	}
	// Jitter in [0.5, 1.5) of the nominal delay.
	return time.Duration(delay * (0.5 + p.randf()))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
