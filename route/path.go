// Package route parses target paths of the form "/group/subpath".
//
// Every routable type in one module shares a single group; the subpath names
// the target inside that group. The grammar is deliberately flat: exactly one
// group segment and one subpath segment, no nesting and no trailing slash.
//
// The same parser is used at generation time (to validate markers) and at
// runtime (kit.Registry.Resolve), so both sides agree on what a path is.
package route

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrEmptyPath is returned when the path is empty after trimming spaces.
	ErrEmptyPath = errors.New("route: empty path")

	// ErrMissingLeadingSlash is returned when the path does not start with "/".
	ErrMissingLeadingSlash = errors.New("route: path must start with /")

	// ErrMalformedPath is returned when the path is not exactly "/group/subpath".
	ErrMalformedPath = errors.New("route: malformed path")
)

// PathError reports a path that failed to parse.
//
// It unwraps to one of ErrEmptyPath, ErrMissingLeadingSlash or ErrMalformedPath.
type PathError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	// Example: route: malformed path "/hotel/a/b"
	return e.Err.Error() + " " + strconv.Quote(e.Raw)
}

// Unwrap returns the sentinel describing the failure.
func (e *PathError) Unwrap() error { return e.Err }

// Path is a parsed target path.
type Path struct {
	Group   string
	Subpath string
}

// String renders the path back into its canonical "/group/subpath" form.
func (p Path) String() string { return "/" + p.Group + "/" + p.Subpath }

// Parse validates raw and splits it into group and subpath.
//
// Rules, applied in order:
//  1. the trimmed string must be non-empty
//  2. it must start with "/"
//  3. splitting on "/" must yield exactly three segments: an empty one, a
//     non-empty group and a non-empty subpath
func Parse(raw string) (Path, error) {
	if strings.TrimSpace(raw) == "" {
		return Path{}, &PathError{Raw: raw, Err: ErrEmptyPath}
	}
	if !strings.HasPrefix(raw, "/") {
		return Path{}, &PathError{Raw: raw, Err: ErrMissingLeadingSlash}
	}

	segments := strings.Split(raw, "/")
	if len(segments) != 3 ||
		segments[0] != "" ||
		strings.TrimSpace(segments[1]) == "" ||
		strings.TrimSpace(segments[2]) == "" {
		return Path{}, &PathError{Raw: raw, Err: ErrMalformedPath}
	}

	return Path{Group: segments[1], Subpath: segments[2]}, nil
}
