package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransientError marks an extraction failure likely to succeed on retry:
// timeouts, connection resets, rate limiting, and 5xx-class responses.
type TransientError struct {
	Status  int // HTTP status, 0 for transport-level failures
	Message string
}

func (e *TransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transient extraction error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("transient extraction error: %s", e.Message)
}

// RejectedError marks a permanent upstream rejection: malformed requests,
// auth failures, and other 4xx-class responses. Never retried.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("extraction rejected (status %d): %s", e.Status, e.Message)
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// classifyStatus converts a non-200 HTTP status into the matching error type.
func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return &TransientError{Status: status, Message: body}
	default:
		return &RejectedError{Status: status, Message: body}
	}
}
