// Package retry implements bounded exponential backoff for transient
// failures on outbound calls.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how Do behaves.
type Policy struct {
	// Attempts is the total number of tries, including the first. Values
	// below 1 are treated as 1.
	Attempts int

	// Base is the delay before the second try; each further delay doubles.
	Base time.Duration

	// Cap bounds a single delay. Zero means no cap.
	Cap time.Duration

	// Retryable classifies errors; a nil predicate retries everything.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the attempt budget runs out, an error is
// classified as permanent, or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	delay := p.Base
	var last error
	for attempt := 1; ; attempt++ {
		last = fn()
		if last == nil {
			return nil
		}
		if attempt >= p.Attempts {
			return last
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}

		select {
		case <-ctx.Done():
			return errors.Join(last, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if p.Cap > 0 && delay > p.Cap {
			delay = p.Cap
		}
	}
}
