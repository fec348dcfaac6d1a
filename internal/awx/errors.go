package awx

import (
	"fmt"
	"net/http"
)

// AuthenticationError is returned when the ping check answers with a non-2xx
// status.
type AuthenticationError struct {
	Status     int
	StatusText string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("connection failed: %d %s", e.Status, e.statusText())
}

func (e *AuthenticationError) statusText() string {
	if e.StatusText != "" {
		return e.StatusText
	}
	return http.StatusText(e.Status)
}

// NetworkError wraps a transport failure: unreachable host, refused
// connection, TLS handshake, timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SessionExpiredError is returned by ListJobs on 401. Callers must drop the
// credentials.
type SessionExpiredError struct{}

func (e *SessionExpiredError) Error() string {
	return "session expired or invalid credentials"
}

// FetchError is a non-401, non-2xx answer from the jobs listing.
type FetchError struct {
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch jobs: %d", e.Status)
}

// RenderError means the jobs listing body could not be turned into rows.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("malformed jobs payload: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
