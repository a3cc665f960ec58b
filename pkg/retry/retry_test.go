package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	errs "liscraper/pkg/errors"
)

func testConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		if attempts < 3 {
			return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection reset"}
		}
		return nil
	}, testConfig())

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	authErr := &errs.Error{Type: errs.ErrorTypeAuth, Message: "session rejected"}
	err := Do(func() error {
		attempts++
		return authErr
	}, testConfig())

	if !errors.Is(err, authErr) {
		t.Fatalf("expected the auth error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestDoExhaustsMaxAttempts(t *testing.T) {
	attempts := 0
	err := Do(func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "still down"}
	}, testConfig())

	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}

	var typed *errs.Error
	if !errors.As(err, &typed) {
		t.Errorf("wrapped error should still expose the typed cause: %v", err)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Second}

	attempts := 0
	err := Do(func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "flaky"}
	}, cfg)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	value, err := DoWithResult(func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeTimeout, Message: "slow page"}
		}
		return "loaded", nil
	}, testConfig())

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if value != "loaded" {
		t.Errorf("expected result %q, got %q", "loaded", value)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"rate limit", &errs.Error{Type: errs.ErrorTypeRateLimit}, true},
		{"timeout", &errs.Error{Type: errs.ErrorTypeTimeout}, true},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, true},
		{"auth", &errs.Error{Type: errs.ErrorTypeAuth}, false},
		{"parsing", &errs.Error{Type: errs.ErrorTypeParsing}, false},
		{"not found", &errs.Error{Type: errs.ErrorTypeNotFound}, false},
		{"wrapped typed", fmt.Errorf("open page: %w", &errs.Error{Type: errs.ErrorTypeNetwork}), true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"untyped", errors.New("socket closed"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultRetryIf(tc.err); got != tc.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   4 * time.Second,
		Multiplier: 2.0,
	}

	if got := eb.NextDelay(0); got != 0 {
		t.Errorf("attempt 0 should yield no delay, got %v", got)
	}
	if got := eb.NextDelay(1); got != time.Second {
		t.Errorf("attempt 1 delay = %v, want 1s", got)
	}
	if got := eb.NextDelay(2); got != 2*time.Second {
		t.Errorf("attempt 2 delay = %v, want 2s", got)
	}
	if got := eb.NextDelay(10); got != 4*time.Second {
		t.Errorf("attempt 10 should cap at 4s, got %v", got)
	}
}

func TestExponentialBackoffJitterStaysInBounds(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 50; i++ {
		d := eb.NextDelay(1)
		if d < 500*time.Millisecond || d > 1500*time.Millisecond {
			t.Fatalf("jittered delay %v outside [0.5s, 1.5s]", d)
		}
	}
}

func TestErrorTypeBackoffSelection(t *testing.T) {
	etb := NewErrorTypeBackoff()

	cases := []struct {
		name string
		err  error
		want BackoffStrategy
	}{
		{"network", &errs.Error{Type: errs.ErrorTypeNetwork}, etb.Network},
		{"rate limit", &errs.Error{Type: errs.ErrorTypeRateLimit}, etb.RateLimit},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, etb.Server},
		{"timeout", &errs.Error{Type: errs.ErrorTypeTimeout}, etb.Default},
		{"wrapped rate limit", fmt.Errorf("lookup: %w", &errs.Error{Type: errs.ErrorTypeRateLimit}), etb.RateLimit},
		{"untyped", errors.New("boom"), etb.Default},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := etb.ForError(tc.err); got != tc.want {
				t.Errorf("ForError picked the wrong strategy for %v", tc.err)
			}
		})
	}
}

func TestErrorTypeBackoffDrivesDelay(t *testing.T) {
	etb := &ErrorTypeBackoff{
		Network:   &ConstantBackoff{Delay: time.Millisecond},
		RateLimit: &ConstantBackoff{Delay: 2 * time.Millisecond},
		Server:    &ConstantBackoff{Delay: time.Millisecond},
		Default:   &ConstantBackoff{Delay: time.Millisecond},
	}

	cfg := testConfig()
	cfg.Backoff = nil
	cfg.BackoffFor = etb.ForError

	attempts := 0
	err := Do(func() error {
		attempts++
		if attempts < 2 {
			return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "quota"}
		}
		return nil
	}, cfg)

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Wait(ctx, time.Minute)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}

func TestWaitZeroDelayReturnsImmediately(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
