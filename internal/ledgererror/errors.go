// Package ledgererror defines the error kinds the ledger core reports to its
// callers. Every error that leaves a service is an *Error carrying a Kind the
// transport layer can map to a status code without inspecting internals.
package ledgererror

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindInvalidAmount      Kind = "invalid_amount"
	KindInsufficientFunds  Kind = "insufficient_funds"
	KindMissingDestination Kind = "missing_destination"
	KindValidation         Kind = "validation"
	KindAlreadyMember      Kind = "already_member"
	KindCannotRemoveOwner  Kind = "cannot_remove_owner"
	KindInvalidRole        Kind = "invalid_role"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindMissingParameter   Kind = "missing_parameter"
	KindPersistence        Kind = "persistence"
)

// Sentinels usable with errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrInvalidAmount      = &Error{Kind: KindInvalidAmount, Msg: "amount must be positive"}
	ErrInsufficientFunds  = &Error{Kind: KindInsufficientFunds, Msg: "insufficient funds"}
	ErrMissingDestination = &Error{Kind: KindMissingDestination, Msg: "transfer requires a destination account"}
	ErrValidation         = &Error{Kind: KindValidation, Msg: "validation failed"}
	ErrAlreadyMember      = &Error{Kind: KindAlreadyMember, Msg: "user is already a member of this organization"}
	ErrCannotRemoveOwner  = &Error{Kind: KindCannotRemoveOwner, Msg: "cannot remove the organization owner"}
	ErrInvalidRole        = &Error{Kind: KindInvalidRole, Msg: "invalid role"}
	ErrNotFound           = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrForbidden          = &Error{Kind: KindForbidden, Msg: "forbidden"}
	ErrMissingParameter   = &Error{Kind: KindMissingParameter, Msg: "missing parameter"}
	ErrPersistence        = &Error{Kind: KindPersistence, Msg: "persistence failure"}
)

// Error is a classified ledger error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "ledger.Withdraw"
	Msg  string // caller-safe message
	Err  error  // underlying cause, never rendered to API callers
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
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

// New builds an *Error of the given kind.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing or out-of-scope entity. Both cases produce the
// same message so callers cannot probe for existence.
func NotFound(op, entity string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: entity + " not found"}
}

// Store classifies an error returned by the store. Record-not-found becomes
// KindNotFound, an error that is already classified passes through, and
// anything else is a persistence failure.
func Store(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		nf := NotFound(op, entity)
		nf.Err = err
		return nf
	}
	return &Error{Kind: KindPersistence, Op: op, Msg: "persistence failure", Err: err}
}

// KindOf returns the kind of err, or KindPersistence for unclassified errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindPersistence
}

// Message returns the caller-safe message of err.
func Message(err error) string {
	var le *Error
	if errors.As(err, &le) {
		if le.Msg != "" {
			return le.Msg
		}
		return string(le.Kind)
	}
	return "internal error"
}
