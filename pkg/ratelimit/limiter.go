package ratelimit

import (
	"context"
	"fmt"
	"time"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/kv"
	"liscraper/pkg/logger"
)

// Window kinds counted independently per client
const (
	windowMinute = "minute"
	windowHour   = "hour"
)

// Result carries the outcome of a rate limit check, including the
// remaining-quota metadata surfaced to callers for response headers
type Result struct {
	Allowed         bool
	MinuteRemaining int
	HourRemaining   int
	RetryAfter      time.Duration
}

// Limiter counts requests per client against two independent fixed windows
// (per-minute and per-hour) backed by a shared TTL-capable store, so multiple
// service instances see the same counters.
type Limiter struct {
	store     kv.Store
	perMinute int
	perHour   int
	log       logger.Logger
	// now is the clock used for window bucketing; overridable in tests
	now func() time.Time
}

// New creates a limiter with the given per-window ceilings
func New(store kv.Store, perMinute, perHour int) *Limiter {
	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perHour:   perHour,
		log:       logger.GetLogger(),
		now:       time.Now,
	}
}

// Allow checks and counts one request for clientID. Both window counters are
// incremented atomically; a request rejected by either window still consumes
// from both, which keeps the check race-free under concurrent load.
func (l *Limiter) Allow(ctx context.Context, clientID string) (Result, error) {
	now := l.now()

	minuteCount, err := l.store.IncrWithTTL(ctx, l.key(clientID, windowMinute, now), time.Minute)
	if err != nil {
		return Result{}, err
	}
	hourCount, err := l.store.IncrWithTTL(ctx, l.key(clientID, windowHour, now), time.Hour)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Allowed:         minuteCount <= int64(l.perMinute) && hourCount <= int64(l.perHour),
		MinuteRemaining: remaining(l.perMinute, minuteCount),
		HourRemaining:   remaining(l.perHour, hourCount),
	}

	if !result.Allowed {
		result.RetryAfter = l.retryAfter(now, minuteCount, hourCount)
	}

	return result, nil
}

// Check is Allow plus the error mapping the caller surfaces verbatim
func (l *Limiter) Check(ctx context.Context, clientID string) (Result, error) {
	result, err := l.Allow(ctx, clientID)
	if err != nil {
		// A broken counter store must not take the service down
		l.log.WithError(err).WithField("client_id", clientID).
			Warn("counter store unavailable, admitting request unmetered")
		return Result{Allowed: true, MinuteRemaining: l.perMinute, HourRemaining: l.perHour}, nil
	}
	if !result.Allowed {
		return result, &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: fmt.Sprintf("rate limit exceeded, retry after %s", result.RetryAfter),
			Code:    429,
		}
	}
	return result, nil
}

// key builds the counter key for one (client, window) pair. The window index
// is the wall clock floored to the window size, so all instances bucket
// identically.
func (l *Limiter) key(clientID, kind string, now time.Time) string {
	var index int64
	switch kind {
	case windowMinute:
		index = now.Unix() / 60
	case windowHour:
		index = now.Unix() / 3600
	}
	return fmt.Sprintf("ratelimit:%s:%s:%d", kind, clientID, index)
}

// retryAfter reports how long until the tightest exceeded window rolls over
func (l *Limiter) retryAfter(now time.Time, minuteCount, hourCount int64) time.Duration {
	if minuteCount > int64(l.perMinute) {
		next := now.Truncate(time.Minute).Add(time.Minute)
		return next.Sub(now)
	}
	next := now.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(now)
}

func remaining(ceiling int, count int64) int {
	r := ceiling - int(count)
	if r < 0 {
		return 0
	}
	return r
}
