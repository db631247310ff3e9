package processor

import (
	"errors"
	"strconv"
)

// Build failures. BuildError unwraps to exactly one of these.
var (
	ErrGroupMismatch         = errors.New("processor: group mismatch")
	ErrDuplicatePath         = errors.New("processor: duplicate path")
	ErrDuplicateTarget       = errors.New("processor: duplicate target")
	ErrNoQualifyingService   = errors.New("processor: no qualifying service interface")
	ErrAmbiguousService      = errors.New("processor: ambiguous service interface")
	ErrDuplicateServiceAlias = errors.New("processor: duplicate service alias")
	ErrDuplicateImpl         = errors.New("processor: duplicate service implementation")
	ErrMultipleModules       = errors.New("processor: multiple modules")
	ErrInvalidModuleBase     = errors.New("processor: invalid module base")
)

// ErrProtocol is wrapped by ProtocolError.
var ErrProtocol = errors.New("processor: protocol violation")

// BuildError reports a declaration that violates a table invariant.
type BuildError struct {
	// Err is one of the Err* build sentinels.
	Err error

	// Type is the offending declaration.
	Type TypeName

	// Pos is the declaration's source position, if known.
	Pos string

	// Detail carries the conflicting value (path, group, service, ...).
	Detail string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	// Example: processor: duplicate path "detail" (type "example.com/hotel.Other" at hotel.go:12)
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += " " + strconv.Quote(e.Detail)
	}
	msg += " (type " + strconv.Quote(e.Type.String())
	if e.Pos != "" {
		msg += " at " + e.Pos
	}
	return msg + ")"
}

// Unwrap returns the build sentinel.
func (e *BuildError) Unwrap() error { return e.Err }

func buildErr(sentinel error, d Declaration, detail string) *BuildError {
	return &BuildError{Err: sentinel, Type: d.Type, Pos: d.Pos, Detail: detail}
}

// ProtocolError reports a host that drove the coordinator out of order, such as
// presenting declarations after announcing the final pass.
type ProtocolError struct {
	Pass   int
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return ErrProtocol.Error() + " in pass " + strconv.Itoa(e.Pass) + ": " + e.Reason
}

// Unwrap returns ErrProtocol.
func (e *ProtocolError) Unwrap() error { return ErrProtocol }

// ConfigError reports a missing or invalid generator option.
type ConfigError struct {
	Option string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "processor: invalid option " + strconv.Quote(e.Option) + ": " + e.Reason
}

// EmitError reports a failure to render or write a generated artifact.
// It is kept apart from build errors so callers can tell I/O faults from
// invalid declarations.
type EmitError struct {
	Artifact string
	Err      error
}

// Error implements the error interface.
func (e *EmitError) Error() string {
	return "processor: emit " + strconv.Quote(e.Artifact) + ": " + e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e *EmitError) Unwrap() error { return e.Err }
