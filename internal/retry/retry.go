// Package retry runs operations under a bounded attempt budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrExhausted is returned once every attempt failed with a retryable error.
var ErrExhausted = errors.New("retry attempts exhausted")

// Do calls op until it succeeds, fails with an error rejected by retryable,
// or maxAttempts calls have been made. Attempts are numbered from 1 and
// issued back to back with no overall time cap.
func Do[T any](ctx context.Context, maxAttempts int, retryable func(error) bool, op func(attempt int) (T, error)) (T, error) {
	return do(ctx, maxAttempts, 0, retryable, op)
}

// do is Do with an elapsed-time cap; zero disables it.
func do[T any](ctx context.Context, maxAttempts int, maxElapsed time.Duration, retryable func(error) bool, op func(attempt int) (T, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	lastRetryable := false
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, opErr := op(attempt)
		if opErr == nil {
			return v, nil
		}
		if retryable == nil || !retryable(opErr) {
			lastRetryable = false
			return v, backoff.Permanent(opErr)
		}
		lastRetryable = true
		return v, opErr
	},
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if err == nil {
		return res, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return res, permanent.Err
	}
	if lastRetryable && ctx.Err() == nil {
		return res, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
	}
	return res, err
}

// IsTimeout reports whether err is a network or deadline timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
