package apiclient

import (
	"errors"
	"fmt"
)

// NetworkErrorMessage is surfaced for every failure that happens before an
// HTTP response is obtained.
const NetworkErrorMessage = "Network error occurred"

// Error is the single failure shape returned by the client. StatusCode 0
// means no HTTP response was received; any other value is the HTTP status of
// a rejected request.
type Error struct {
	Message    string
	StatusCode int
	RawBody    any

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Unwrap exposes the underlying transport failure for diagnostics.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsNetwork reports whether the request failed before a response arrived.
func (e *Error) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsUnauthorized reports a 401 rejection.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == 401
}

func networkError(cause error) *Error {
	return &Error{Message: NetworkErrorMessage, StatusCode: 0, cause: cause}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Normalize converts any error into an *Error. Errors already of that type
// pass through; everything else becomes a status 0 error carrying message.
func Normalize(err error, message string) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := AsError(err); ok {
		return apiErr
	}
	return &Error{Message: message, StatusCode: 0, cause: err}
}

// diagnosticMessage picks the server supplied text out of an error body.
func diagnosticMessage(body any, status int) string {
	if m, ok := body.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok && msg != "" {
			return msg
		}
		if detail, ok := m["detail"].(string); ok && detail != "" {
			return detail
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
