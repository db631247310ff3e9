package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ErrNoModule is returned when no go.mod encloses the output directory.
var ErrNoModule = errors.New("codegen: go.mod not found")

// ModuleInfo describes the Go module enclosing a directory.
type ModuleInfo struct {
	Root string
	Path string
}

// FindModule walks up from startDir to the nearest go.mod.
func FindModule(startDir string) (ModuleInfo, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ModuleInfo{}, err
	}
	for {
		gomod := filepath.Join(dir, "go.mod")
		b, err := os.ReadFile(gomod)
		switch {
		case err == nil:
			mod := modfile.ModulePath(b)
			if mod == "" {
				return ModuleInfo{}, fmt.Errorf("codegen: go.mod missing module directive at %s", filepath.ToSlash(gomod))
			}
			return ModuleInfo{Root: dir, Path: mod}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return ModuleInfo{}, fmt.Errorf("codegen: %w", err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ModuleInfo{}, fmt.Errorf("%w: starting from %s", ErrNoModule, filepath.ToSlash(startDir))
		}
		dir = parent
	}
}

// ImportPath returns the import path of dir inside m.
func (m ModuleInfo) ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.Root, abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)

	if rel == "." {
		return m.Path, nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("codegen: directory is outside module root: dir=%s root=%s", filepath.ToSlash(abs), filepath.ToSlash(m.Root))
	}
	return m.Path + "/" + rel, nil
}
