package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend indicates no backend URL is configured.
	ErrNoBackend = errors.New("backend URL not set")

	// ErrNoToken indicates the deployment has no write-capability token.
	// Writes must never be attempted, let alone queued, without one.
	ErrNoToken = errors.New("write token not configured")

	// ErrAmbiguous indicates a 2xx response whose body could not be decoded.
	// The write may have been durably applied server-side; callers must
	// confirm against a fresh full read before treating it as a failure.
	ErrAmbiguous = errors.New("response ambiguous: write may have been applied")
)

// TransportError wraps a network-level failure. Always retryable later.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-success HTTP status. Retryable later.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (%d)", e.Op, e.Code)
}

// RejectedError reports an application-level rejection carried in an
// otherwise successful response body (ok:false or a non-empty error field).
// A hard failure for this attempt, but some backends apply the write before
// rejecting the echo, so it is still subject to the phantom check.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return "request rejected"
	}
	return "request rejected: " + e.Reason
}

// DecodeError reports an unparseable response body on a read.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Retryable reports whether a failed attempt may be retried (after a phantom
// check). Configuration faults are not retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoToken) || errors.Is(err, ErrNoBackend) {
		return false
	}
	return true
}
