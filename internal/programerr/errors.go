// Package programerr defines the error taxonomy returned by the credit program.
//
// Codes mirror the builtin program-error numbering of the Solana runtime so a
// host can surface them unchanged. Errors compare by code, so a wrapped error
// still matches its sentinel with errors.Is.
package programerr

import (
	"errors"
	"fmt"
)

// Code identifies a class of program failure.
type Code uint32

const (
	CodeInvalidArgument          Code = 2
	CodeInvalidInstructionData   Code = 3
	CodeInvalidAccountData       Code = 4
	CodeInsufficientFunds        Code = 6
	CodeIncorrectProgramID       Code = 7
	CodeMissingRequiredSignature Code = 8
	CodeNotEnoughAccountKeys     Code = 11
	CodeArithmeticOverflow       Code = 24
)

var codeNames = map[Code]string{
	CodeInvalidArgument:          "InvalidArgument",
	CodeInvalidInstructionData:   "InvalidInstructionData",
	CodeInvalidAccountData:       "InvalidAccountData",
	CodeInsufficientFunds:        "InsufficientFunds",
	CodeIncorrectProgramID:       "IncorrectProgramId",
	CodeMissingRequiredSignature: "MissingRequiredSignature",
	CodeNotEnoughAccountKeys:     "NotEnoughAccountKeys",
	CodeArithmeticOverflow:       "ArithmeticOverflow",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint32(c))
}

// Error is a program failure with a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a program error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an Error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error carrying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidArgument          = New(CodeInvalidArgument, "invalid argument")
	ErrInvalidInstructionData   = New(CodeInvalidInstructionData, "invalid instruction data")
	ErrInvalidAccountData       = New(CodeInvalidAccountData, "invalid account data")
	ErrInsufficientFunds        = New(CodeInsufficientFunds, "insufficient funds")
	ErrIncorrectProgramID       = New(CodeIncorrectProgramID, "incorrect program id")
	ErrMissingRequiredSignature = New(CodeMissingRequiredSignature, "missing required signature")
	ErrNotEnoughAccountKeys     = New(CodeNotEnoughAccountKeys, "not enough account keys")
	ErrArithmeticOverflow       = New(CodeArithmeticOverflow, "arithmetic overflow")
)

// CodeOf returns the program error code in err's chain. ok is false for
// errors that did not originate in this program, such as a rejected
// cross-program invocation.
func CodeOf(err error) (code Code, ok bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}
