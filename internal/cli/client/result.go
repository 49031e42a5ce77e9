package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed call
type ErrorKind string

const (
	// NetworkError means no response was received (connection failure, timeout)
	NetworkError ErrorKind = "network_error"
	// Unauthenticated is a final 401
	Unauthenticated ErrorKind = "unauthenticated"
	// ValidationError is any other 4xx; the server payload is kept verbatim
	ValidationError ErrorKind = "validation_error"
	// ServerError is a 5xx or an unreadable response
	ServerError ErrorKind = "server_error"
)

// APIError describes a failed call. It is returned as data inside Result.
type APIError struct {
	Kind    ErrorKind
	Status  int             // 0 when no response was received
	Message string          // human-readable summary
	Payload json.RawMessage // response body, verbatim
	Err     error           // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Detail returns the payload's "detail" message, if any
func (e *APIError) Detail() string {
	var body struct {
		Detail string `json:"detail"`
	}
	if len(e.Payload) == 0 || json.Unmarshal(e.Payload, &body) != nil {
		return ""
	}
	return body.Detail
}

// FieldErrors decodes a field-keyed validation payload ({"task": ["..."]}).
// Non-list values are skipped.
func (e *APIError) FieldErrors() map[string][]string {
	var raw map[string]json.RawMessage
	if len(e.Payload) == 0 || json.Unmarshal(e.Payload, &raw) != nil {
		return nil
	}
	out := make(map[string][]string)
	for field, value := range raw {
		var msgs []string
		if json.Unmarshal(value, &msgs) == nil && len(msgs) > 0 {
			out[field] = msgs
		}
	}
	return out
}

// FirstFieldError returns the first message for field, or ""
func (e *APIError) FirstFieldError(field string) string {
	if msgs := e.FieldErrors()[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// StringField returns a top-level string value of the payload (e.g. "error")
func (e *APIError) StringField(key string) string {
	var raw map[string]json.RawMessage
	if len(e.Payload) == 0 || json.Unmarshal(e.Payload, &raw) != nil {
		return ""
	}
	var s string
	if json.Unmarshal(raw[key], &s) != nil {
		return ""
	}
	return s
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return Unauthenticated
	case status >= 500:
		return ServerError
	default:
		return ValidationError
	}
}

func statusError(status int, body []byte) *APIError {
	e := &APIError{
		Kind:    kindForStatus(status),
		Status:  status,
		Payload: json.RawMessage(body),
	}
	if e.Message = e.Detail(); e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// Result is the outcome of every call: success with data, or an error
type Result[T any] struct {
	Success bool
	Data    T
	Error   *APIError
	Status  int
}

// Err returns the error as an error interface, or nil on success
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

func failure[T any](err *APIError) Result[T] {
	return Result[T]{Error: err, Status: err.Status}
}
