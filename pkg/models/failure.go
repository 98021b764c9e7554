package models

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind tags a generation failure with its category.
type FailureKind string

const (
	// FailureRateLimited means the per-minute request ceiling was hit.
	// The failure carries a retry-after duration.
	FailureRateLimited FailureKind = "rate_limited"
	// FailureTokenLimitExceeded means the monthly token quota is exhausted.
	FailureTokenLimitExceeded FailureKind = "token_limit_exceeded"
	// FailureInvalidRequest means the input was malformed, or structured
	// output could not be parsed after the fallback attempt.
	FailureInvalidRequest FailureKind = "invalid_request"
	// FailureProviderError means the upstream provider failed or no
	// credential is configured.
	FailureProviderError FailureKind = "provider_error"
	// FailureCacheError means the cache backend failed. Never surfaced from
	// the generation flow itself; cache errors degrade to misses.
	FailureCacheError FailureKind = "cache_error"
)

// Valid returns true if the kind is a known value.
func (k FailureKind) Valid() bool {
	switch k {
	case FailureRateLimited, FailureTokenLimitExceeded, FailureInvalidRequest,
		FailureProviderError, FailureCacheError:
		return true
	default:
		return false
	}
}

// Failure is the typed error returned across the orchestrator boundary.
// It satisfies the error interface so callers can use errors.As.
type Failure struct {
	// Kind categorizes the failure.
	Kind FailureKind `json:"code"`
	// Message is a human-readable description, safe to display.
	Message string `json:"error"`
	// RetryAfter is how long to wait before retrying. Only set for
	// FailureRateLimited.
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// NewFailure builds a failure of the given kind.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Error renders a display message for the failure.
func (f *Failure) Error() string {
	switch f.Kind {
	case FailureRateLimited:
		return fmt.Sprintf("rate limit reached, retry in %ds: %s",
			int(f.RetryAfter.Seconds()), f.Message)
	default:
		return f.Message
	}
}

// Retryable reports whether the caller may retry the identical request.
func (f *Failure) Retryable() bool {
	return f.Kind == FailureRateLimited || f.Kind == FailureProviderError
}

// AsFailure extracts a *Failure from an error chain, if present.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
