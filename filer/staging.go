package filer

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Staging holds generated files in memory.
//
// Writing a name cancels an earlier removal of it and vice versa, so the staged
// set always reflects the most recent pass.
type Staging struct {
	files   map[string][]byte
	removed map[string]bool
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{files: map[string][]byte{}, removed: map[string]bool{}}
}

// Write implements emit.Filer.
func (s *Staging) Write(name string, src []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.files[name] = append([]byte(nil), src...)
	delete(s.removed, name)
	return nil
}

// Remove implements emit.Filer.
func (s *Staging) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	delete(s.files, name)
	s.removed[name] = true
	return nil
}

// File returns the staged content of name.
func (s *Staging) File(name string) ([]byte, bool) {
	b, ok := s.files[name]
	return b, ok
}

// Names returns the staged file names, sorted.
func (s *Staging) Names() []string { return sortedKeys(s.files) }

// Removed returns the names staged for removal, sorted.
func (s *Staging) Removed() []string { return sortedKeys(s.removed) }

// Sink is where Commit writes to; *Dir implements it.
type Sink interface {
	Write(name string, src []byte) error
	Remove(name string) error
}

// Commit writes every staged file to dst, then applies staged removals.
// It stops at the first error.
func (s *Staging) Commit(dst Sink) error {
	for _, name := range s.Names() {
		if err := dst.Write(name, s.files[name]); err != nil {
			return err
		}
	}
	for _, name := range s.Removed() {
		if err := dst.Remove(name); err != nil {
			return err
		}
	}
	return nil
}

// ChangeKind classifies a difference between staging and disk.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
)

// Change is one file that Commit would touch.
type Change struct {
	Name string
	Kind ChangeKind
}

// Diff reports what committing into dir would change, sorted by name.
// An empty result means dir is up to date.
func (s *Staging) Diff(dir string) ([]Change, error) {
	var out []Change
	for _, name := range s.Names() {
		cur, err := os.ReadFile(filepath.Join(dir, name))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out = append(out, Change{Name: name, Kind: Added})
		case err != nil:
			return nil, err
		case !bytes.Equal(cur, s.files[name]):
			out = append(out, Change{Name: name, Kind: Modified})
		}
	}
	for _, name := range s.Removed() {
		_, err := os.Stat(filepath.Join(dir, name))
		switch {
		case err == nil:
			out = append(out, Change{Name: name, Kind: Deleted})
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
