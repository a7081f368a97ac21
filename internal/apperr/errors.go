package apperr

import "errors"

// ErrInvalid is returned when input fails validation. Never retried.
var ErrInvalid = errors.New("invalid input")

// Directions provider error kinds.
var (
	ErrProviderTimeout     = errors.New("directions provider timeout")
	ErrRateLimited         = errors.New("directions provider rate limited")
	ErrNoRoute             = errors.New("directions provider returned no route")
	ErrMalformedResponse   = errors.New("directions provider returned malformed response")
	ErrProviderUnavailable = errors.New("directions provider unavailable")
)

// Retryable reports whether err is worth another attempt under the bounded retry policy.
// Every provider kind and unclassified infrastructure failure is retryable; only ErrInvalid is not.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalid)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNoRoute):
		return "no_route"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	default:
		return "infrastructure"
	}
}
