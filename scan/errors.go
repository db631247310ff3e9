package scan

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Directive shape failures. DirectiveError unwraps to one of these.
var (
	ErrMisplacedDirective = errors.New("scan: directive must be attached to a single type declaration")
	ErrUnknownDirective   = errors.New("scan: unknown directive")
	ErrDuplicateDirective = errors.New("scan: repeated directive")
	ErrMissingPath        = errors.New("scan: target directive requires a path")
	ErrUnexpectedArgument = errors.New("scan: directive takes no argument")
	ErrInterfaceType      = errors.New("scan: directive on interface or alias type")
	ErrGenericType        = errors.New("scan: directive on generic type")
	ErrUnexportedType     = errors.New("scan: unexported type outside the output package")
)

// DirectiveError reports a marker directive that cannot become a declaration.
type DirectiveError struct {
	Err error

	// Directive is the raw comment text, e.g. "//modkit:target".
	Directive string

	// Type is the qualified type name, when the directive is attached to one.
	Type string

	Pos string
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	// Example: scan: repeated directive "//modkit:service" (type "example.com/pay.Impl" at pay.go:12)
	msg := e.Err.Error() + " " + strconv.Quote(e.Directive) + " ("
	if e.Type != "" {
		msg += "type " + strconv.Quote(e.Type) + " "
	}
	return msg + "at " + e.Pos + ")"
}

// Unwrap returns the failure sentinel.
func (e *DirectiveError) Unwrap() error { return e.Err }

// ErrLoad is wrapped by LoadError.
var ErrLoad = errors.New("scan: packages failed to load")

// LoadError carries the errors go/packages reported for the scanned packages.
type LoadError struct {
	Errors []packages.Error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, pe := range e.Errors {
		msgs = append(msgs, pe.Error())
	}
	return ErrLoad.Error() + ":\n\t" + strings.Join(msgs, "\n\t")
}

// Unwrap returns ErrLoad.
func (e *LoadError) Unwrap() error { return ErrLoad }

// ErrNameConflict is wrapped by NameConflictError.
var ErrNameConflict = errors.New("scan: output package already declares a generated name")

// NameConflictError reports a hand-written declaration in the output package
// that collides with a name the generated files declare.
type NameConflictError struct {
	Name    string
	PkgPath string
	Pos     string
}

// Error implements the error interface.
func (e *NameConflictError) Error() string {
	// Example: scan: output package already declares a generated name "Routes" (package "example.com/app/hotel" at hotel/hotel.go:3)
	return ErrNameConflict.Error() + " " + strconv.Quote(e.Name) +
		" (package " + strconv.Quote(e.PkgPath) + " at " + e.Pos + ")"
}

// Unwrap returns ErrNameConflict.
func (e *NameConflictError) Unwrap() error { return ErrNameConflict }
