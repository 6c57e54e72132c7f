package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes domain errors.
type ErrorCode string

const (
	// CodeValidationFailed indicates a malformed field, out-of-range number or disallowed character.
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// CodeNotFound indicates a missing ISBN, user or record.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeDuplicateKey indicates a conflicting ISBN or user id on create or rename.
	CodeDuplicateKey ErrorCode = "DUPLICATE_KEY"

	// CodeInsufficientPrivilege indicates the session tier is below the required tier.
	CodeInsufficientPrivilege ErrorCode = "INSUFFICIENT_PRIVILEGE"

	// CodeAuthFailed indicates a password mismatch.
	CodeAuthFailed ErrorCode = "AUTH_FAILED"

	// CodeInvalidQuantity indicates a negative result or an overflowing quantity.
	CodeInvalidQuantity ErrorCode = "INVALID_QUANTITY"

	// CodeOutOfRange indicates a ledger window larger than the available history.
	CodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// CodeStackUnderflow indicates a logout past the anonymous floor.
	CodeStackUnderflow ErrorCode = "STACK_UNDERFLOW"

	// CodeDuplicateFieldInBatch indicates the same field twice in one edit.
	CodeDuplicateFieldInBatch ErrorCode = "DUPLICATE_FIELD_IN_BATCH"

	// CodeEmptyUpdateList indicates an edit with no clauses.
	CodeEmptyUpdateList ErrorCode = "EMPTY_UPDATE_LIST"
)

// Sentinels for errors.Is. A coded *Error matches the sentinel with the same Code.
var (
	ErrValidationFailed      = &Error{Code: CodeValidationFailed}
	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrDuplicateKey          = &Error{Code: CodeDuplicateKey}
	ErrInsufficientPrivilege = &Error{Code: CodeInsufficientPrivilege}
	ErrAuthFailed            = &Error{Code: CodeAuthFailed}
	ErrInvalidQuantity       = &Error{Code: CodeInvalidQuantity}
	ErrOutOfRange            = &Error{Code: CodeOutOfRange}
	ErrStackUnderflow        = &Error{Code: CodeStackUnderflow}
	ErrDuplicateFieldInBatch = &Error{Code: CodeDuplicateFieldInBatch}
	ErrEmptyUpdateList       = &Error{Code: CodeEmptyUpdateList}
)

// Error is a domain error with a category code and a human-readable message.
//
// The message is for logs only; the dispatcher surfaces every Error to the
// operator the same way.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Errorf builds a coded error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
