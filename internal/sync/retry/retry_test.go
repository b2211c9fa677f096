package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vietddude/keapsync/internal/infra/keap"
	"github.com/vietddude/keapsync/internal/sync/metrics"
)

// testPolicy returns a policy whose sleeps are recorded instead of executed
// and whose jitter is pinned to the midpoint.
func testPolicy(cfg Config) (*Policy, *[]time.Duration) {
	p := NewPolicy(cfg)
	var slept []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	p.randf = func() float64 { return 0.5 }
	return p, &slept
}

func TestSucceedsFirstTry(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no sleeps", *slept)
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return &keap.ServerError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Jitter pinned at 0.5 makes the factor exactly 1.0: 1s then 2s.
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, (*slept)[i], want[i])
		}
	}
}

func TestQuotaExhaustionNeverRetried(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	quota := &keap.QuotaExhaustedError{Message: "daily quota exhausted"}
	err := p.Do(context.Background(), "op", func() error {
		calls++
		return quota
	})
	if !errors.Is(err, quota) {
		t.Fatalf("err = %v, want the quota error untouched", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want exactly 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no sleeps", *slept)
	}
}

func TestNonRetryableReturnsImmediately(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		return &keap.ValidationError{Message: "bad request"}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no sleeps", *slept)
	}
}

func TestThrottleWithCapacityRetriesImmediately(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		if calls == 1 {
			return &keap.RateLimitError{
				Message: "throttled",
				Throttle: keap.Throttle{
					ProductThrottleAvailable: 10,
					TenantThrottleAvailable:  5,
					HasProductThrottle:       true,
					HasTenantThrottle:        true,
				},
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want immediate retry", *slept)
	}
}

func TestThrottleWithoutCapacityWaitsOutWindow(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		if calls == 1 {
			return &keap.RateLimitError{Message: "throttled", Throttle: keap.Throttle{
				HasProductThrottle: true,
				HasTenantThrottle:  true,
			}}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if len(*slept) != 1 {
		t.Fatalf("slept %v, want one wait", *slept)
	}
	// 60s window plus the pinned 0.5 of the 10s spread.
	if (*slept)[0] != 65*time.Second {
		t.Errorf("wait = %v, want 65s", (*slept)[0])
	}
}

func TestRateLimitWithoutHeadersBacksOffExponentially(t *testing.T) {
	p, slept := testPolicy(Config{})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		if calls == 1 {
			// A 429 with no throttle headers gives nothing to schedule
			// against, so the usual backoff applies.
			return &keap.RateLimitError{Message: "throttled", Throttle: keap.Throttle{}}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if len(*slept) != 1 {
		t.Fatalf("slept %v, want one wait", *slept)
	}
	if (*slept)[0] != 1*time.Second {
		t.Errorf("wait = %v, want the 1s base delay", (*slept)[0])
	}
}

func TestRetriesAreCounted(t *testing.T) {
	before := testutil.ToFloat64(metrics.RetriesTotal)

	p, _ := testPolicy(Config{})
	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return &keap.ServerError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if got := testutil.ToFloat64(metrics.RetriesTotal) - before; got != 2 {
		t.Errorf("retries counted = %v, want 2", got)
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	p, slept := testPolicy(Config{MaxRetries: 3})

	calls := 0
	err := p.Do(context.Background(), "op", func() error {
		calls++
		return &keap.ServerError{StatusCode: 500, Message: "boom"}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	var srv *keap.ServerError
	if !errors.As(err, &srv) {
		t.Errorf("err should wrap the last failure, got %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want initial + 3 retries", calls)
	}
	if len(*slept) != 3 {
		t.Errorf("slept %d times, want 3", len(*slept))
	}
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	p, slept := testPolicy(Config{MaxRetries: 8, MaxDelay: 4 * time.Second})

	_ = p.Do(context.Background(), "op", func() error {
		return &keap.ServerError{StatusCode: 500, Message: "boom"}
	})

	for i, d := range *slept {
		if d > 4*time.Second {
			t.Errorf("sleep[%d] = %v exceeds the 4s cap", i, d)
		}
	}
}

func TestContextCancelledDuringWait(t *testing.T) {
	p := NewPolicy(Config{})
	p.randf = func() float64 { return 0.5 }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	err := p.Do(context.Background(), "op", func() error {
		return &keap.ServerError{StatusCode: 500, Message: "boom"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
