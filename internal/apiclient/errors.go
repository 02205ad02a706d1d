package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingUserID is returned when a login succeeds without a user_id.
var ErrMissingUserID = errors.New("login response missing user_id")

// networkErrorMessage is what users see for transport failures.
const networkErrorMessage = "Network error: could not reach the server."

// TransportError is a request that never produced a usable HTTP response:
// dial/timeout failures and undecodable success bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response. Detail holds the server-supplied
// message and is empty when the body had none.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Message collapses any client error into the single string a screen shows.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(transportErr.Err, ErrMissingUserID) {
			return transportErr.Err.Error()
		}
		return networkErrorMessage
	}

	return err.Error()
}

// parseDetail extracts a string "detail" from an error body.
// Structured details (validation error lists) are ignored.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
