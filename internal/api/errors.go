package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. Kinds are stable and safe to expose to callers.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindUnknownTool        Kind = "UnknownToolError"
	KindDuplicateTool      Kind = "DuplicateToolError"
	KindMissingCredentials Kind = "MissingCredentialsError"
	KindAuth               Kind = "AuthError"
	KindClient             Kind = "ClientError"
	KindUpstream           Kind = "UpstreamError"
	KindProtocol           Kind = "ProtocolError"
	KindInternal           Kind = "InternalError"
)

// FieldError describes one offending parameter.
type FieldError struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Error is the canonical failure shape produced by the dispatch core.
//
// The error includes a Kind for programmatic handling, a human-readable
// Message, and, depending on the kind, the remote HTTP status or the list of
// offending fields.
type Error struct {
	// Kind is the stable classification of the failure.
	Kind Kind `json:"kind" yaml:"kind"`

	// Message is the human-readable description. It never contains
	// credential material.
	Message string `json:"message" yaml:"message"`

	// RemoteStatus is the upstream HTTP status when one was received.
	RemoteStatus int `json:"remote_status,omitempty" yaml:"remote_status,omitempty"`

	// Fields lists every offending parameter for ValidationError.
	Fields []FieldError `json:"fields,omitempty" yaml:"fields,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.RemoteStatus != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.RemoteStatus)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether the failure may be retried.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstream
}

// NewError creates an *Error with the given kind and message.
//
// Args:
//   - kind: The failure classification
//   - format: Message format, followed by its arguments
//
// Returns:
//   - *Error: A new error value
func NewError(kind Kind, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg}
}

// WithCause attaches an underlying error for errors.Is/As traversal. The
// cause is not rendered in Error() so its text cannot leak to callers.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// WithStatus records the upstream HTTP status.
func (e *Error) WithStatus(status int) *Error {
	e.RemoteStatus = status
	return e
}

// AsError extracts an *Error from err using error unwrapping.
//
// Args:
//   - err: The error to inspect
//
// Returns:
//   - *Error: The classified error, or nil if err carries none
//   - bool: true if a classified error was found
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
// A nil error has no kind and returns "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsError(err); ok {
		return apiErr.Kind
	}
	return KindInternal
}

// IsKind checks whether err is classified with the given kind.
//
// Example:
//
//	if api.IsKind(err, api.KindUpstream) {
//	    // eligible for retry
//	}
func IsKind(err error, kind Kind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == kind
}

// Classify returns err as an *Error, wrapping anything unclassified as
// InternalError. The wrapped error's text is not exposed in the message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := AsError(err); ok {
		return apiErr
	}
	return NewInternalError("internal error while executing tool").WithCause(err)
}

// NewValidationError creates a ValidationError listing every offending field.
// Fields are kept in the order given.
func NewValidationError(fields []FieldError) *Error {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return &Error{
		Kind:    KindValidation,
		Message: "invalid parameters: " + strings.Join(parts, "; "),
		Fields:  fields,
	}
}

// NewUnknownToolError creates an UnknownToolError for the named tool.
func NewUnknownToolError(name string) *Error {
	return NewError(KindUnknownTool, "unknown tool %q", name)
}

// NewDuplicateToolError creates a DuplicateToolError for the named tool.
func NewDuplicateToolError(name string) *Error {
	return NewError(KindDuplicateTool, "tool %q is already registered", name)
}

// NewMissingCredentialsError creates a MissingCredentialsError.
func NewMissingCredentialsError() *Error {
	return NewError(KindMissingCredentials,
		"no API key provided: pass api_key, send the X-API-Key header, or set FALCON_API_KEY")
}

// NewAuthError creates an AuthError.
func NewAuthError(format string, args ...interface{}) *Error {
	return NewError(KindAuth, format, args...)
}

// NewClientError creates a ClientError with the upstream status.
func NewClientError(status int, format string, args ...interface{}) *Error {
	return NewError(KindClient, format, args...).WithStatus(status)
}

// NewUpstreamError creates an UpstreamError.
func NewUpstreamError(format string, args ...interface{}) *Error {
	return NewError(KindUpstream, format, args...)
}

// NewProtocolError creates a ProtocolError.
func NewProtocolError(format string, args ...interface{}) *Error {
	return NewError(KindProtocol, format, args...)
}

// NewInternalError creates an InternalError.
func NewInternalError(format string, args ...interface{}) *Error {
	return NewError(KindInternal, format, args...)
}
