package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation signals malformed input rejected before any external call.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidWeight signals a weight vector that cannot be normalized.
	ErrInvalidWeight = fmt.Errorf("%w: invalid weights", ErrValidation)
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyInput signals blank text passed to the embedder.
	ErrEmptyInput = errors.New("empty input")
	// ErrDimensionMismatch signals vectors of different length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrProviderError signals a non-2xx embedding provider response.
	ErrProviderError = errors.New("embedding provider error")
	// ErrProviderTimeout signals an embedding call that exceeded its deadline.
	ErrProviderTimeout = errors.New("embedding provider timeout")

	// ErrIllegalTransition signals a shortlist stage change the workflow forbids.
	ErrIllegalTransition = errors.New("illegal transition")
)

// ProviderError carries the provider HTTP status and an optional Retry-After hint.
type ProviderError struct {
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", ErrProviderError.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrProviderError.Error(), e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	if e.StatusCode == 429 {
		return errors.Join(ErrProviderError, ErrRateLimited)
	}
	return ErrProviderError
}

// Transient reports whether the call may succeed on retry.
// StatusCode 0 means the request never got a response (connection reset, DNS).
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// IllegalTransitionError names the rejected move.
type IllegalTransitionError struct {
	CandidateID string
	From        string
	To          string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: candidate %s cannot move from %s to %s",
		ErrIllegalTransition.Error(), e.CandidateID, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
