package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failed gateway call
type Code int

const (
	CodeNetwork Code = iota + 1
	CodeUnauthorized
	CodeForbidden
	CodeNotFound
	CodeValidation
	CodeMalformed
	CodeRequestFailed
)

// APIError represents a failed call against the admin API
type APIError struct {
	Code    Code                `json:"code"`
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Err     error               `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can use errors.Is with the sentinel
// constructors below.
func (e *APIError) Is(target error) bool {
	var other *APIError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Error constructors
func Network(err error) *APIError {
	return &APIError{
		Code:    CodeNetwork,
		Message: "request never reached the server",
		Err:     err,
	}
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "session expired, please sign in again"
	}
	return &APIError{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *APIError {
	if message == "" {
		message = "you do not have access to this resource"
	}
	return &APIError{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

func NotFound(resource string) *APIError {
	return &APIError{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Validation(fields map[string][]string, message string) *APIError {
	if message == "" {
		message = "validation failed"
	}
	return &APIError{
		Code:    CodeValidation,
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Fields:  fields,
	}
}

func Malformed(detail string) *APIError {
	return &APIError{
		Code:    CodeMalformed,
		Message: fmt.Sprintf("unexpected response shape: %s", detail),
	}
}

func RequestFailed(status int, message string) *APIError {
	if message == "" {
		message = "request failed"
	}
	return &APIError{Code: CodeRequestFailed, Status: status, Message: message}
}

// errorBody is the conventional JSON error payload of the admin API.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

// FromResponse maps an HTTP error status plus its JSON body to the
// taxonomy. Every gateway call funnels through here so no call site
// special-cases statuses. resource names the entity for 404 messages.
func FromResponse(resource string, status int, body []byte) *APIError {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)
	msg := parsed.Message
	if msg == "" {
		msg = parsed.Error
	}

	switch status {
	case http.StatusUnauthorized:
		return Unauthorized(msg)
	case http.StatusForbidden:
		return Forbidden(msg)
	case http.StatusNotFound:
		return NotFound(resource)
	case http.StatusUnprocessableEntity:
		return Validation(parsed.Errors, msg)
	default:
		return RequestFailed(status, msg)
	}
}

// FieldErrors extracts per-field validation messages, or nil when err
// is not a validation failure.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == CodeValidation {
		return apiErr.Fields
	}
	return nil
}

// CodeOf returns the taxonomy code, or 0 for foreign errors.
func CodeOf(err error) Code {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
