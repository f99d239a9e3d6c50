package common

import (
	stderrors "errors"
	"fmt"
)

// Every action failure is a precondition-style rejection: the call aborts
// with no partial state change and the error propagates to the caller as an
// aborted transaction. Nothing is retried internally.
type ErrorKind uint8

const (
	// ErrorKindAuthorization: caller lacks the required authentication.
	ErrorKindAuthorization ErrorKind = iota + 1
	// ErrorKindNotFound: referenced pool, grant, symbol stats or balance row
	// does not exist.
	ErrorKindNotFound
	// ErrorKindAlreadyExists: duplicate symbol creation or duplicate active
	// grant.
	ErrorKindAlreadyExists
	// ErrorKindValidation: malformed symbol, non-positive amount, oversized
	// memo, self transfer, invalid start date, supply bound violation.
	ErrorKindValidation
	// ErrorKindState: operation conflicts with current state (claims paused,
	// nothing to claim, overdrawn balance, close on non-zero balance).
	ErrorKindState
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindAuthorization:
		return "authorization"
	case ErrorKindNotFound:
		return "not found"
	case ErrorKindAlreadyExists:
		return "already exists"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindState:
		return "state"
	default:
		return "unknown"
	}
}

type ContractError struct {
	Kind    ErrorKind
	Message string
}

func (e *ContractError) Error() string {
	return e.Message
}

func Authorizationf(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExistsf(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindValidation, Message: fmt.Sprintf(format, args...)}
}

func Statef(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindState, Message: fmt.Sprintf(format, args...)}
}

// ErrorKindOf returns the kind of a contract error, or zero for any other
// error.
func ErrorKindOf(err error) ErrorKind {
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func IsErrorKind(err error, kind ErrorKind) bool {
	return ErrorKindOf(err) == kind
}
