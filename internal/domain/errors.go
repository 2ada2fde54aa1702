package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that reach the top level.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindFileAccess    ErrorKind = "file_access"
	KindNetwork       ErrorKind = "network"
	KindAPI           ErrorKind = "api"
)

// ErrorReason narrows a kind down to the concrete cause.
type ErrorReason string

const (
	ReasonMissingOption ErrorReason = "missing_option"
	ReasonInvalidOption ErrorReason = "invalid_option"
	ReasonWorkingDir    ErrorReason = "working_dir"
	ReasonUnreadable    ErrorReason = "unreadable"
	ReasonTimeout       ErrorReason = "timeout"
	ReasonTransport     ErrorReason = "transport"
	ReasonHTTPStatus    ErrorReason = "http_status"
	ReasonMalformedBody ErrorReason = "malformed_body"
	ReasonEmptyResponse ErrorReason = "empty_response"
)

// Error is the application error carried from adapters to the CLI.
type Error struct {
	Kind    ErrorKind
	Reason  ErrorReason
	Message string
	Cause   error
}

// NewError builds an *Error.
func NewError(kind ErrorKind, reason ErrorReason, message string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s error (%s): %s: %v", e.Kind, e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsError extracts the first *Error in the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// KindOf returns the error kind, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return ""
}

// ReasonOf returns the error reason, or "" for untyped errors.
func ReasonOf(err error) ErrorReason {
	if de, ok := AsError(err); ok {
		return de.Reason
	}
	return ""
}

// Process exit codes per error kind.
const (
	ExitOK            = 0
	ExitGeneric       = 1
	ExitConfiguration = 2
	ExitNetwork       = 3
	ExitAPI           = 4
	ExitFileAccess    = 5
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindConfiguration:
		return ExitConfiguration
	case KindNetwork:
		return ExitNetwork
	case KindAPI:
		return ExitAPI
	case KindFileAccess:
		return ExitFileAccess
	default:
		return ExitGeneric
	}
}
