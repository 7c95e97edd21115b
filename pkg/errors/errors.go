package errors

import (
	"errors"
	"fmt"
	"net/http"
	"syscall"
)

// Kind classifies failures so callers can decide whether to continue
type Kind string

const (
	KindResourceMissing   Kind = "resource_missing"
	KindInsufficientSpace Kind = "insufficient_space"
	KindAccessDenied      Kind = "access_denied"
	KindCourseUnavailable Kind = "course_unavailable"
	KindInvalidInput      Kind = "invalid_input"
	KindNetwork           Kind = "network"
	KindServer            Kind = "server_error"
	KindUnknown           Kind = "unknown"
)

// Error is a classified failure with an optional HTTP status and cause
type Error struct {
	Kind Kind
	Op   string
	Code int
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so sentinel values like
// ErrAccessDenied work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Code == 0 && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrResourceMissing   = &Error{Kind: KindResourceMissing}
	ErrInsufficientSpace = &Error{Kind: KindInsufficientSpace}
	ErrAccessDenied      = &Error{Kind: KindAccessDenied}
	ErrCourseUnavailable = &Error{Kind: KindCourseUnavailable}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
)

// New builds a classified error
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// FromStatus maps an HTTP status code to a classified error
func FromStatus(op string, code int) *Error {
	return &Error{Kind: KindForStatus(code), Op: op, Code: code}
}

// KindForStatus maps an HTTP status code to a Kind
func KindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAccessDenied
	case code == http.StatusNotFound, code == http.StatusGone:
		return KindResourceMissing
	case code == http.StatusRequestEntityTooLarge, code == http.StatusInsufficientStorage:
		return KindInsufficientSpace
	case code >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Classify returns the Kind of err. Unclassified errors map to KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return KindInsufficientSpace
	}
	return KindUnknown
}

// IsRetryable reports whether a failure of this kind may succeed if repeated
func IsRetryable(kind Kind) bool {
	switch kind {
	case KindNetwork, KindServer:
		return true
	default:
		return false
	}
}
