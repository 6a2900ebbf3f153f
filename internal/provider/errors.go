package provider

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds. Match with errors.Is; the concrete value is *APIError.
var (
	ErrUnauthorized = errors.New("upstream rejected credentials")
	ErrRateLimited  = errors.New("upstream rate limit exceeded")
	ErrNotFound     = errors.New("upstream resource not found")
	ErrUpstream     = errors.New("upstream request failed")
)

// maxBodyExcerpt bounds how much of an error response body is kept.
const maxBodyExcerpt = 512

// APIError is a non-2xx provider response.
type APIError struct {
	Kind       error
	Endpoint   string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s returned %d", e.Kind, e.Endpoint, e.StatusCode)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// IsTransient reports whether retrying later may succeed.
func (e *APIError) IsTransient() bool {
	return e.Kind == ErrRateLimited || (e.Kind == ErrUpstream && e.StatusCode >= 500)
}

func kindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 429:
		return ErrRateLimited
	default:
		return ErrUpstream
	}
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return string(body)
}
