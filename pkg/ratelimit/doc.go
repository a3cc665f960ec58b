// Package ratelimit provides inbound request rate limiting for the scraper
// service.
//
// Each client is counted against two independent fixed windows: per-minute
// and per-hour. Counters live in a shared TTL-capable key-value store
// (see pkg/kv), so every service instance enforces the same quotas.
//
// Counter keys have the shape
//
//	ratelimit:{kind}:{clientID}:{floor(unixTime / windowSeconds)}
//
// and carry a TTL equal to the window size, so expired windows clean
// themselves up. Increments are atomic (single INCR against the store), so
// the ceiling holds under concurrent load.
//
// Usage:
//
//	limiter := ratelimit.New(store, 30, 500)
//
//	result, err := limiter.Check(ctx, clientAddr)
//	if err != nil {
//	    // quota exceeded: surface verbatim, result.RetryAfter is set
//	}
//	// result.MinuteRemaining / result.HourRemaining feed response headers
package ratelimit
