package domain

import (
	"errors"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
	KindPartialWrite
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindPartialWrite:
		return "partial_write"
	case KindConnectivity:
		return "connectivity"
	default:
		return "internal"
	}
}

// KindFromCode is the inverse of Kind.String, used when decoding API errors.
func KindFromCode(code string) Kind {
	for k := KindValidation; k <= KindConnectivity; k++ {
		if k.String() == code {
			return k
		}
	}
	return KindUnknown
}

// Error carries one of the storefront failure kinds. Message is safe to show
// to the user; Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the bare kind sentinels below, so errors.Is(err, ErrValidation)
// holds for every validation error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrPartialWrite = &Error{Kind: KindPartialWrite}
	ErrConnectivity = &Error{Kind: KindConnectivity}
)

func NewValidationError(fields ...string) *Error {
	msg := "invalid input"
	if len(fields) > 0 {
		msg = "missing or invalid: " + strings.Join(fields, ", ")
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NewUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NewConflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewPartialWrite(msg string, cause error) *Error {
	return &Error{Kind: KindPartialWrite, Message: msg, Err: cause}
}

func NewConnectivity(msg string, cause error) *Error {
	return &Error{Kind: KindConnectivity, Message: msg, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage is what a caller may show. Connectivity and unknown failures
// collapse to a generic retry hint.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindConnectivity || e.Kind == KindUnknown {
		return "Something went wrong, please try again."
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}
