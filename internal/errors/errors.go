package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of rotator failure.
type ErrorCode string

const (
	ErrConfig         ErrorCode = "CONFIG"           // missing or corrupt template/config
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // bad slot id, bad argument
	ErrConflict       ErrorCode = "CONFLICT"         // duplicate window assignment
	ErrWindowNotFound ErrorCode = "WINDOW_NOT_FOUND" // stale slot
	ErrNotConnected   ErrorCode = "NOT_CONNECTED"    // command link has no port open
	ErrSendFailed     ErrorCode = "SEND_FAILED"      // write to the command link failed
	ErrUnknownToken   ErrorCode = "UNKNOWN_TOKEN"    // token outside the closed command set
	ErrCapture        ErrorCode = "CAPTURE"          // screen region unreadable
	ErrCancelled      ErrorCode = "CANCELLED"        // user declined a confirmation
)

// RotatorError is a structured error with a code and optional details.
type RotatorError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *RotatorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *RotatorError) Unwrap() error { return e.Err }

// NewConfig creates a configuration error. Template failures are fatal at startup.
func NewConfig(msg string, err error) *RotatorError {
	return &RotatorError{Code: ErrConfig, Message: msg, Err: err}
}

// NewInvalidRequest creates an error for invalid arguments.
func NewInvalidRequest(msg string) *RotatorError {
	return &RotatorError{Code: ErrInvalidRequest, Message: msg}
}

// NewConflict creates an error for a title already held by another slot.
func NewConflict(title string, heldBy, requested int) *RotatorError {
	return &RotatorError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("window %q is already assigned to slot %d", title, heldBy),
		Details: map[string]any{"title": title, "held_by": heldBy, "requested": requested},
	}
}

// NewWindowNotFound creates an error for a title with no live OS window.
func NewWindowNotFound(title string) *RotatorError {
	return &RotatorError{
		Code:    ErrWindowNotFound,
		Message: fmt.Sprintf("no window found: %s", title),
		Details: map[string]any{"title": title},
	}
}

// NewNotConnected creates an error for a send without an open link.
func NewNotConnected() *RotatorError {
	return &RotatorError{Code: ErrNotConnected, Message: "command link is not connected"}
}

// NewSendFailed creates an error for a failed write to the link.
func NewSendFailed(token string, err error) *RotatorError {
	return &RotatorError{
		Code:    ErrSendFailed,
		Message: fmt.Sprintf("failed to send %s", token),
		Details: map[string]any{"token": token},
		Err:     err,
	}
}

// NewUnknownToken creates an error for a token outside the command set.
func NewUnknownToken(token string) *RotatorError {
	return &RotatorError{
		Code:    ErrUnknownToken,
		Message: fmt.Sprintf("unknown command token %q", token),
		Details: map[string]any{"token": token},
	}
}

// NewCapture creates an error for an unreadable screen region.
func NewCapture(msg string, err error) *RotatorError {
	return &RotatorError{Code: ErrCapture, Message: msg, Err: err}
}

// NewCancelled creates an error for a declined confirmation.
func NewCancelled(action string) *RotatorError {
	return &RotatorError{
		Code:    ErrCancelled,
		Message: fmt.Sprintf("%s cancelled by user", action),
		Details: map[string]any{"action": action},
	}
}

// Is reports whether err (or anything it wraps) is a RotatorError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RotatorError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}
