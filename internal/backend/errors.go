// ABOUTME: Error types returned by the backend client
// ABOUTME: HTTPError carries the status and server message; sentinels classify failures

package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired wraps a 401 on an authenticated call. The credential has already been cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrTimeout is returned when the backend did not answer within the client timeout.
	ErrTimeout = errors.New("backend request timed out")
	// ErrMalformedResponse is returned when a response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrMissingToken is returned when a successful sign-in carried no token.
	ErrMissingToken = errors.New("login response did not include a token")
)

// HTTPError is a non-success response from the backend.
type HTTPError struct {
	Status  int
	Message string // server-supplied error or message field, if any
	Payload []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// ServerMessage returns the server-supplied message carried by err, or "".
func ServerMessage(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	return ""
}

// UserMessage chooses what to show the operator for a failed call: the server's
// own message when it sent one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if errors.Is(err, ErrTimeout) {
		return fallback + " (the server took too long to respond)"
	}
	if msg := ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
