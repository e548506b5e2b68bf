package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultErrorMessage is shown when the server gave no usable message.
const DefaultErrorMessage = "Error de comunicación con el servidor"

// Error is a failed API call. Status is 0 when the request never reached the server.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api unreachable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether the call failed before any HTTP response.
func (e *Error) IsTransport() bool { return e.Status == 0 }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the upstream status code of err, 0 when not an API error.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

// MessageOr returns the server message carried by err, or fallback when err carries none.
func MessageOr(err error, fallback string) string {
	if apiErr, ok := AsError(err); ok && !apiErr.IsTransport() && apiErr.Message != DefaultErrorMessage {
		return apiErr.Message
	}
	return fallback
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// fromResponse prefers the body's "error" field, then "message" (string or list of strings).
func fromResponse(status int, payload []byte) *Error {
	var body errorBody
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg := text(body.Error); msg != "" {
			return &Error{Status: status, Message: msg}
		}
		if msg := text(body.Message); msg != "" {
			return &Error{Status: status, Message: msg}
		}
	}
	msg := DefaultErrorMessage
	if status == http.StatusUnauthorized {
		msg = "Sesión no válida"
	}
	return &Error{Status: status, Message: msg}
}

func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}
