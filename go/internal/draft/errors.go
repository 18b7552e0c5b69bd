package draft

import (
	"fmt"
	"strconv"
)

// Code classifies an engine failure.
type Code string

const (
	CodeMalformedInput  Code = "MALFORMED_INPUT"
	CodeVersionConflict Code = "VERSION_CONFLICT"
	CodeBusinessRule    Code = "BUSINESS_RULE_VIOLATION"
	CodeDataIntegrity   Code = "DATA_INTEGRITY"
	CodePersistence     Code = "PERSISTENCE_FAILURE"
	CodeNotFound        Code = "NOT_FOUND"
)

// Error is returned by every engine operation that fails. A failed operation never
// leaves a partial mutation behind.
type Error struct {
	Code           Code
	Message        string
	CurrentVersion int64             // set for VERSION_CONFLICT
	Metadata       map[string]string // violated quantities, for callers that render their own text
	Cause          error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput  = &Error{Code: CodeMalformedInput, Message: "malformed input"}
	ErrVersionConflict = &Error{Code: CodeVersionConflict, Message: "version conflict"}
	ErrBusinessRule    = &Error{Code: CodeBusinessRule, Message: "business rule violation"}
	ErrDataIntegrity   = &Error{Code: CodeDataIntegrity, Message: "data integrity error"}
	ErrPersistence     = &Error{Code: CodePersistence, Message: "persistence failure"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
)

func malformed(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedInput, Message: fmt.Sprintf(format, args...)}
}

func conflict(expected, current int64) *Error {
	return &Error{
		Code:           CodeVersionConflict,
		Message:        fmt.Sprintf("version conflict: expected %d, current version is %d", expected, current),
		CurrentVersion: current,
		Metadata: map[string]string{
			"expected_version": strconv.FormatInt(expected, 10),
			"current_version":  strconv.FormatInt(current, 10),
		},
	}
}

func ruleViolation(meta map[string]string, format string, args ...any) *Error {
	return &Error{Code: CodeBusinessRule, Message: fmt.Sprintf(format, args...), Metadata: meta}
}

func integrity(format string, args ...any) *Error {
	return &Error{Code: CodeDataIntegrity, Message: fmt.Sprintf(format, args...)}
}

func persistence(message string, cause error) *Error {
	return &Error{Code: CodePersistence, Message: message, Cause: cause}
}

func notFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}
