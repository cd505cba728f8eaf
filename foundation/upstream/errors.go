package upstream

import (
	"errors"
	"fmt"
)

// Kind describes the class of failure when calling the node.
type Kind string

// Set of failure kinds.
const (
	KindRejected  Kind = "rejected"
	KindAuth      Kind = "auth"
	KindTimeout   Kind = "timeout"
	KindTransport Kind = "transport"
)

// Set of error codes used by the node that the gateway cares about.
const (
	CodeMisc                = -1
	CodeInvalidAddressOrKey = -5
	CodeInvalidParameter    = -8
	CodeInWarmup            = -28
)

// Error is returned by Call when the node could not produce a result.
type Error struct {
	Kind    Kind
	Method  string
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("%s: node error %d: %s", e.Method, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Method, e.Kind, e.Message)
}

// Unwrap provides access to the go-ethereum client error.
func (e *Error) Unwrap() error {
	return e.Err
}

// GetError returns the *Error held in the error chain, or nil.
func GetError(err error) *Error {
	var ue *Error
	if !errors.As(err, &ue) {
		return nil
	}
	return ue
}

// SetupError is returned by New when the client can't be constructed.
type SetupError struct {
	Err error
}

// Error implements the error interface.
func (se *SetupError) Error() string {
	return "upstream setup: " + se.Err.Error()
}

// Unwrap provides access to the underlying error.
func (se *SetupError) Unwrap() error {
	return se.Err
}

// IsSetupError checks if an error of type *SetupError exists.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}
