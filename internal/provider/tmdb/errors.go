package tmdb

import (
	"errors"
	"fmt"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindUnknown covers 4xx/5xx statuses with no more specific mapping.
	KindUnknown Kind = iota
	// KindNotFound is a 404 for a resource lookup.
	KindNotFound
	// KindRateLimited is a 429 from the API.
	KindRateLimited
	// KindNetwork means the request never completed.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a classified failure from the TMDB API.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when the request never completed
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("tmdb: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("tmdb: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
)

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindNotFound
}

// IsRateLimited reports whether err is a provider 429.
func IsRateLimited(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindRateLimited
}

// IsNetwork reports whether the request never completed.
func IsNetwork(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindNetwork
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: 404, Message: msg}
}

func rateLimitedError(msg string) *Error {
	return &Error{Kind: KindRateLimited, Status: 429, Message: msg}
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: cause.Error(), cause: cause}
}

func statusError(status int, msg string) *Error {
	return &Error{Kind: KindUnknown, Status: status, Message: msg}
}
