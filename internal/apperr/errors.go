// Package apperr defines the error kinds the client recovers from at the
// workflow boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for recovery and for user-facing messages.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindCamera       Kind = "camera"
	KindCameraSwitch Kind = "camera_switch"
	KindPrediction   Kind = "prediction"
	KindFeedback     Kind = "feedback"
	KindState        Kind = "state"
	KindInFlight     Kind = "in_flight"
	KindStale        Kind = "stale"
	KindUnknown      Kind = "unknown"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrCamera       = &Error{Kind: KindCamera}
	ErrCameraSwitch = &Error{Kind: KindCameraSwitch}
	ErrPrediction   = &Error{Kind: KindPrediction}
	ErrFeedback     = &Error{Kind: KindFeedback}
	ErrState        = &Error{Kind: KindState}
	ErrInFlight     = &Error{Kind: KindInFlight}
	ErrStale        = &Error{Kind: KindStale}
)

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a classified error with a message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err returns nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(op, format string, args ...any) *Error {
	return New(KindValidation, op, format, args...)
}
