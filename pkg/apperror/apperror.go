// Package apperror defines the typed failures reported by the booking engine.
// Every failure carries a Kind used by transports to pick a status code and a
// Code identifying the exact condition.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindState         Kind = "state"
	KindAuthorization Kind = "authorization"
	KindInternal      Kind = "internal"
)

type Code string

const (
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeInvalidSelection Code = "INVALID_SELECTION"
	CodeShowtimeNotFound Code = "SHOWTIME_NOT_FOUND"
	CodeBookingNotFound  Code = "BOOKING_NOT_FOUND"
	CodeTicketNotFound   Code = "TICKET_NOT_FOUND"
	CodeSeatUnavailable  Code = "SEAT_UNAVAILABLE"
	CodeBookingExpired   Code = "BOOKING_EXPIRED"
	CodeAlreadyConfirmed Code = "ALREADY_CONFIRMED"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeForbidden        Code = "FORBIDDEN"
	CodeInternal         Code = "INTERNAL"
)

var codeKinds = map[Code]Kind{
	CodeInvalidRequest:   KindValidation,
	CodeInvalidSelection: KindValidation,
	CodeShowtimeNotFound: KindNotFound,
	CodeBookingNotFound:  KindNotFound,
	CodeTicketNotFound:   KindNotFound,
	CodeSeatUnavailable:  KindConflict,
	CodeBookingExpired:   KindState,
	CodeAlreadyConfirmed: KindState,
	CodeInvalidState:     KindState,
	CodeForbidden:        KindAuthorization,
	CodeInternal:         KindInternal,
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrInvalidRequest   = &Error{Kind: KindValidation, Code: CodeInvalidRequest, Message: "invalid request"}
	ErrInvalidSelection = &Error{Kind: KindValidation, Code: CodeInvalidSelection, Message: "invalid seat selection"}
	ErrShowtimeNotFound = &Error{Kind: KindNotFound, Code: CodeShowtimeNotFound, Message: "showtime not found"}
	ErrBookingNotFound  = &Error{Kind: KindNotFound, Code: CodeBookingNotFound, Message: "booking not found"}
	ErrTicketNotFound   = &Error{Kind: KindNotFound, Code: CodeTicketNotFound, Message: "ticket not found"}
	ErrSeatUnavailable  = &Error{Kind: KindConflict, Code: CodeSeatUnavailable, Message: "seat unavailable"}
	ErrBookingExpired   = &Error{Kind: KindState, Code: CodeBookingExpired, Message: "booking hold has expired"}
	ErrAlreadyConfirmed = &Error{Kind: KindState, Code: CodeAlreadyConfirmed, Message: "booking already confirmed"}
	ErrInvalidState     = &Error{Kind: KindState, Code: CodeInvalidState, Message: "invalid booking state"}
	ErrForbidden        = &Error{Kind: KindAuthorization, Code: CodeForbidden, Message: "forbidden"}
)

type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds an error for code with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Kind: kindFor(code), Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an error for code that keeps cause in the chain.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Kind: kindFor(code), Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain, CodeInternal otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func kindFor(code Code) Kind {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	return KindInternal
}
