// Package retry provides bounded-attempt backoff for transient failures,
// mainly browser navigation and upstream API calls.
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return client.Refresh(ctx)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
//	// Per-error-type backoff: rate limits wait much longer than
//	// network blips
//	cfg.BackoffFor = retry.NewErrorTypeBackoff().ForError
//
//	// Operations that return a value
//	page, err := retry.DoWithResult(openPage, cfg)
//
// DefaultRetryIf consults the typed error taxonomy: network, rate-limit,
// timeout, and server errors are retried; auth, parsing, and not-found
// errors are returned immediately.
package retry
