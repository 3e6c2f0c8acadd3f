// internal/app/system/apierr/apierr.go

// Package apierr defines the request-facing error taxonomy and renders it as
// a uniform JSON envelope. Transaction bodies and stores return these typed
// errors; handlers pass whatever comes back to Write and the status code
// falls out of the kind. Anything that is not an *Error is treated as
// Internal so store failures never leak driver detail to clients.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies a failure. The string value is the wire-visible code.
type Kind string

const (
	Unauthenticated Kind = "unauthenticated" // no or invalid identity
	Unauthorized    Kind = "unauthorized"    // authenticated but precondition unmet
	Conflict        Kind = "conflict"        // uniqueness or ownership violation
	NotFound        Kind = "not_found"       // referenced resource absent
	InvalidInput    Kind = "invalid_input"   // malformed request body
	Retryable       Kind = "retryable"       // transient contention; client may retry
	Internal        Kind = "internal"        // unexpected store or verification failure
)

// Error is a classified, user-presentable failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is lets errors.Is match on kind: errors.Is(err, apierr.New(Conflict, ""))
// holds for any Conflict error. Handlers mostly use KindOf instead.
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return ae.Kind == e.Kind
	}
	return false
}

// Status maps a kind onto its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case InvalidInput:
		return http.StatusBadRequest
	case Retryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type envelope struct {
	Error errBody `json:"error"`
}

type errBody struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
}

// Write renders err as the JSON error envelope. Unclassified errors are
// logged at error level and masked as Internal; classified ones are expected
// request outcomes and only logged by callers that care.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		ae = New(Internal, "internal error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(ae.Kind))
	_ = json.NewEncoder(w).Encode(envelope{Error: errBody{Code: ae.Kind, Message: ae.Message}})
}

// WriteJSON renders a success payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
