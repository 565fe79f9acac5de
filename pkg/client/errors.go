package client

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a request or retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// RateLimitError is returned when a domain's fixed-window budget is
// exhausted. The request was not sent; the caller must not retry before
// RetryAfter seconds have passed.
type RateLimitError struct {
	Domain  string
	ResetAt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: retry in %d seconds", e.Domain, e.RetryAfter())
}

// RetryAfter returns the number of whole seconds until the domain's window
// resets, rounded up. Returns 0 if the window has already lapsed.
func (e *RateLimitError) RetryAfter() int {
	wait := time.Until(e.ResetAt)
	if wait <= 0 {
		return 0
	}
	return int(math.Ceil(wait.Seconds()))
}

// HTTPError is returned for a non-2xx provider response. The response body
// is not inspected and the failure is never cached.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Status)
}

// ParseError is returned when a response body cannot be decoded into the
// expected payload. Parse failures are propagated, not cached.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response from %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorClass represents a classification of fetch errors for retry
// decisions and observability.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses from the provider.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents transport-level failures.
	ErrorClassNetwork ErrorClass = "network"
)

// classify categorizes an error from a single request attempt.
func classify(err error) ErrorClass {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 429:
			return ErrorClassRateLimit
		case httpErr.StatusCode >= 500:
			return ErrorClassServer
		default:
			return ErrorClassClient
		}
	}
	return ErrorClassNetwork
}

// shouldRetry determines if an error class is worth retrying.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx responses will not improve on retry
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
