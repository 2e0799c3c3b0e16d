package network

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitedError reports that the provider throttled a channel-open
// attempt. The limit is account-wide: the scheduler suspends all further
// attempts for RetryAfter, regardless of which group triggered it.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func NewRateLimitedError(retryAfter time.Duration) *RateLimitedError {
	return &RateLimitedError{RetryAfter: retryAfter}
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited by provider, retry after %s", e.RetryAfter)
}

// IsRateLimited reports whether err is a rate-limit signal, returning the
// provider's retry-after window if so.
func IsRateLimited(err error) (time.Duration, bool) {
	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		return rateLimited.RetryAfter, true
	}
	return 0, false
}
