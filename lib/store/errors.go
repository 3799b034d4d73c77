package store

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type used by all packages of the record store.
// It wraps a return code (of type RetCode) and a message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("japi: %s", e.Code)
	}
	return fmt.Sprintf("japi: %s: %s", e.Code, e.Msg)
}

// Is reports whether target is an *Error with the same code.
// This makes errors.Is(err, ErrRecordNotFound) work for every error created with NewError.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code RetCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation succeeded.
	RetCInternalError                     // 1: Operation failed due to an internal error.
	RetCUnknownModel                      // 2: Type name or model is not registered.
	RetCRecordNotFound                    // 3: No record with the requested id.
	RetCNoSuchRelationship                // 4: Relationship is not declared on the model.
	RetCInvalidModel                      // 5: Model definition is malformed.
	RetCDuplicateModel                    // 6: Model was registered twice.
	RetCInvalidDocument                   // 7: Wire document cannot be normalized.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "success"
	case RetCInternalError:
		return "internal error"
	case RetCUnknownModel:
		return "unknown model"
	case RetCRecordNotFound:
		return "record not found"
	case RetCNoSuchRelationship:
		return "no such relationship"
	case RetCInvalidModel:
		return "invalid model"
	case RetCDuplicateModel:
		return "duplicate model"
	case RetCInvalidDocument:
		return "invalid document"
	default:
		return "unknown error"
	}
}

// Sentinel values for errors.Is checks.
var (
	ErrUnknownModel       = &Error{Code: RetCUnknownModel}
	ErrRecordNotFound     = &Error{Code: RetCRecordNotFound}
	ErrNoSuchRelationship = &Error{Code: RetCNoSuchRelationship}
	ErrInvalidModel       = &Error{Code: RetCInvalidModel}
	ErrDuplicateModel     = &Error{Code: RetCDuplicateModel}
	ErrInvalidDocument    = &Error{Code: RetCInvalidDocument}
)
