package kit

import (
	"errors"
	"strconv"
)

var (
	// ErrNilActivator is returned by Install when an activator is nil.
	ErrNilActivator = errors.New("kit: nil activator")

	// ErrProviderPanic is returned if a target provider panics while resolving.
	ErrProviderPanic = errors.New("kit: panic during Resolve")
)

// DuplicateServiceError is recorded when two activators register the same key.
type DuplicateServiceError struct{ Key string }

// Error implements the error interface.
func (e DuplicateServiceError) Error() string {
	// Example: kit: duplicate service "example.com/pay.PayService"
	return "kit: duplicate service " + strconv.Quote(e.Key)
}

// NilServiceError is recorded when an activator registers a nil implementation.
type NilServiceError struct{ Key string }

// Error implements the error interface.
func (e NilServiceError) Error() string {
	return "kit: nil implementation for service " + strconv.Quote(e.Key)
}

// DuplicateGroupError is recorded when two target providers claim one group.
type DuplicateGroupError struct{ Group string }

// Error implements the error interface.
func (e DuplicateGroupError) Error() string {
	return "kit: duplicate target group " + strconv.Quote(e.Group)
}

// MissingServiceError is returned by Lookup when nothing is registered under the key.
type MissingServiceError struct{ Key string }

// Error implements the error interface.
func (e MissingServiceError) Error() string {
	// Example: kit: service "example.com/pay.PayService" missing
	return "kit: service " + strconv.Quote(e.Key) + " missing"
}

// WrongTypeServiceError is returned by Lookup when the registered implementation
// does not satisfy the requested interface.
type WrongTypeServiceError struct {
	Key     string
	GotType string
}

// Error implements the error interface.
func (e WrongTypeServiceError) Error() string {
	return "kit: service " + strconv.Quote(e.Key) + " has wrong type (" + e.GotType + ")"
}

// TargetNotFoundError is returned by Resolve for an unknown group or subpath.
type TargetNotFoundError struct{ Path string }

// Error implements the error interface.
func (e TargetNotFoundError) Error() string {
	return "kit: no target for " + strconv.Quote(e.Path)
}

// BootError wraps the failure of one boot task.
type BootError struct {
	Task  string
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *BootError) Error() string {
	// Example: kit: light boot task "hotel-sdk" failed: boom
	return "kit: " + e.Stage.String() + " boot task " + strconv.Quote(e.Task) + " failed: " + e.Err.Error()
}

// Unwrap returns the task error.
func (e *BootError) Unwrap() error { return e.Err }
