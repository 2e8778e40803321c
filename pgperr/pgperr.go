// Package pgperr defines the closed error taxonomy for the PGP trust layer.
//
// Every failure surfaced by this module carries one of the codes below.
// Engine failures that have no dedicated code are wrapped as EngineError
// with the underlying error preserved in the chain.
package pgperr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code identifies a failure class. The set is closed: callers may match
// on codes exhaustively.
type Code string

// Failure classes.
const (
	KeyNotFound      Code = "KEY_NOT_FOUND"
	AmbiguousName    Code = "AMBIGUOUS_NAME"
	KeyRevoked       Code = "KEY_REVOKED"
	KeyExpired       Code = "KEY_EXPIRED"
	KeyInvalid       Code = "KEY_INVALID"
	KeyCannotEncrypt Code = "KEY_CANNOT_ENCRYPT"
	KeyCannotSign    Code = "KEY_CANNOT_SIGN"
	BadSignature     Code = "BAD_SIGNATURE"
	DecryptionFailed Code = "DECRYPTION_FAILED"
	UnknownAlgorithm Code = "UNKNOWN_ALGORITHM"
	EngineError      Code = "ENGINE_ERROR"
)

// Error is a coded error value, optionally wrapping a lower-level
// engine error.
type Error struct {
	Code    Code
	Message string

	cause error
}

// New returns an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with the given code, preserving err as the cause.
func Wrap(err error, code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code carried by err, or empty string when err is not
// from this taxonomy. The error chain is searched, so wrapped errors keep
// their code.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
