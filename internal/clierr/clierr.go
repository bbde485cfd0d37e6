// Package clierr defines structured errors with machine-readable codes.
package clierr

import "fmt"

// Error codes.
const (
	TaskNotFound         = "TASK_NOT_FOUND"
	ColumnNotFound       = "COLUMN_NOT_FOUND"
	InvalidInput         = "INVALID_INPUT"
	InvalidTaskID        = "INVALID_TASK_ID"
	NoTaskSelected       = "NO_TASK_SELECTED"
	AuthorityUnavailable = "AUTHORITY_UNAVAILABLE"
	StoreError           = "STORE_ERROR"
	BoardNotFound        = "BOARD_NOT_FOUND"
	BoardAlreadyExists   = "BOARD_ALREADY_EXISTS"
	ConfirmationReq      = "CONFIRMATION_REQUIRED"
	InvalidConfig        = "INVALID_CONFIG"
	InternalError        = "INTERNAL_ERROR"
)

// Error is a CLI error carrying a code, a human message and optional details.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// New creates an Error with the given code and message.
func New(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	return e.Message
}

// ExitCode maps the error code to a process exit code.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// SilentError signals an exit code without printing anything.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
