package dispatch

import "errors"

// RetryableError marks a channel failure worth retrying on a later tick
// within the same calendar day (timeouts, rate limits, 5xx).
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return "retryable: " + e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// PermanentError marks a channel failure that resending cannot fix
// (malformed payload, rejected address). The occurrence is still considered
// handled.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// DeadSubscriptionError marks a push endpoint the push service reported
// gone (404/410). Permanent for the occurrence, and the subscription must
// be deleted by the caller.
type DeadSubscriptionError struct {
	Endpoint string
	Err      error
}

func (e *DeadSubscriptionError) Error() string {
	return "dead subscription " + e.Endpoint + ": " + e.Err.Error()
}
func (e *DeadSubscriptionError) Unwrap() error { return e.Err }

// ErrOccurrenceBusy is returned when another dispatch run already holds the
// occurrence lock. Not a failure; the holder decides the outcome.
var ErrOccurrenceBusy = errors.New("occurrence dispatch already in flight")

// IsRetryable reports whether err is classified as retryable.
func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r)
}
