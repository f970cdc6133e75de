package prefs

import (
	"context"
	stderrors "errors"
	"time"
)

// connectAttempts and connectDelay bound how long Open waits for a remote
// backend that is still starting up.
var (
	connectAttempts = 3
	connectDelay    = time.Second
)

// retryableError marks a failure worth retrying.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	var re *retryableError
	return stderrors.As(err, &re)
}

// retryWithBackoff calls fn up to connectAttempts times, doubling the delay
// after each retryable failure. Other errors return immediately.
func retryWithBackoff(ctx context.Context, fn func() error) error {
	delay := connectDelay
	var lastErr error

	for i := 0; i < connectAttempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var re *retryableError
	if stderrors.As(lastErr, &re) {
		return re.err
	}
	return lastErr
}
