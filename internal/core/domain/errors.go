package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies cache-layer failures so callers can tell them apart from
// failures of the wrapped method itself.
type Kind string

const (
	KindUnknownCache       Kind = "unknown_cache"
	KindUnsupportedKeyType Kind = "unsupported_key_type"
	KindExpression         Kind = "expression_evaluation"
	KindBackend            Kind = "backend"
	KindInvalidMetadata    Kind = "invalid_metadata"
)

// Sentinels for errors.Is matching against a *Error of the same kind.
var (
	ErrUnknownCache         = &Error{Kind: KindUnknownCache}
	ErrUnsupportedKeyType   = &Error{Kind: KindUnsupportedKeyType}
	ErrExpressionEvaluation = &Error{Kind: KindExpression}
	ErrBackend              = &Error{Kind: KindBackend}
	ErrInvalidMetadata      = &Error{Kind: KindInvalidMetadata}
)

// Error defines the standard error shape of the cache layer
type Error struct {
	Kind Kind
	// HTTP Status Code used when the error reaches the admin API
	Code int
	// Safe message for the client
	Message string
	// Original error for internal logging
	Log error
}

// Error implements standard error interface
func (e *Error) Error() string {
	if e.Log != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Log)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Log
}

// Is reports kind equality so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// UnknownCacheError is returned when a cache name is not registered.
func UnknownCacheError(name string) *Error {
	return &Error{
		Kind:    KindUnknownCache,
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("unknown cache %q", name),
	}
}

// UnsupportedKeyTypeError is returned when a key-generation input is not a scalar.
func UnsupportedKeyTypeError(position int, value any) *Error {
	return &Error{
		Kind:    KindUnsupportedKeyType,
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("unsupported key parameter %d of type %T", position, value),
	}
}

// ExpressionError wraps a failure to evaluate a key expression
func ExpressionError(expr string, err error) *Error {
	return &Error{
		Kind:    KindExpression,
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf("cannot evaluate key expression %q", expr),
		Log:     err,
	}
}

// BackendError wraps any failure reported by a storage backend. It returns
// nil for a nil err so backend calls can be wrapped inline.
func BackendError(op, cache string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    KindBackend,
		Code:    http.StatusBadGateway,
		Message: fmt.Sprintf("cache %q: %s failed", cache, op),
		Log:     err,
	}
}

// InvalidMetadataError reports a call-site descriptor rejected at configuration time.
func InvalidMetadataError(msg string, err error) *Error {
	return &Error{
		Kind:    KindInvalidMetadata,
		Code:    http.StatusInternalServerError,
		Message: msg,
		Log:     err,
	}
}

// IsCacheError reports whether err originates from the cache layer rather
// than from the wrapped method.
func IsCacheError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
