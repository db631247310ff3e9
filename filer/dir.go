// Package filer stores generated files.
//
// Staging keeps files in memory for the duration of a run; Dir writes them into
// a package directory. A run renders into Staging after every pass and commits
// to Dir only once the final pass succeeded, so a failed run leaves the output
// directory untouched.
package filer

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for names that are not plain file names.
var ErrInvalidName = errors.New("filer: invalid file name")

// NameError reports a rejected file name.
type NameError struct{ Name string }

// Error implements the error interface.
func (e NameError) Error() string {
	// Example: filer: invalid file name "../x.go"
	return ErrInvalidName.Error() + " " + strconv.Quote(e.Name)
}

// Unwrap returns ErrInvalidName.
func (e NameError) Unwrap() error { return ErrInvalidName }

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return NameError{Name: name}
	}
	return nil
}

// Result summarizes what a Dir did.
type Result struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// Dir writes files into one existing directory.
//
// A file whose content already matches is left alone so its mtime, and every
// build cache keyed on it, stays valid.
type Dir struct {
	root   string
	perm   os.FileMode
	result Result
}

// NewDir returns a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root, perm: 0o644}
}

// Root returns the directory files are written to.
func (d *Dir) Root() string { return d.root }

// Result returns what has been done so far.
func (d *Dir) Result() Result { return d.result }

// Write stores src as name, atomically.
func (d *Dir) Write(name string, src []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := filepath.Join(d.root, name)

	if same, err := sameContent(path, src); err != nil {
		return err
	} else if same {
		d.result.Unchanged = append(d.result.Unchanged, name)
		return nil
	}

	if err := writeFileAtomic(path, src, d.perm); err != nil {
		return err
	}
	d.result.Written = append(d.result.Written, name)
	return nil
}

// Remove deletes name. A missing file is not an error.
func (d *Dir) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := removeFile(filepath.Join(d.root, name))
	switch {
	case err == nil:
		d.result.Removed = append(d.result.Removed, name)
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return err
	}
}

// sameContent reports whether path exists with exactly src as content.
func sameContent(path string, src []byte) (bool, error) {
	cur, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(cur, src), nil
}
