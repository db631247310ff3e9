// Package project loads modkit project files.
//
// A project file lists independent generation units, one per module block.
// Each unit is its own compilation with its own scan state:
//
//	module "hotel" {
//	  packages = ["./hotel/...", "./pay/..."]
//
//	  output {
//	    dir     = "${root}/hotel"
//	    package = "hotel"
//	  }
//	}
//
// Expressions may reference root (the directory of the project file) and env
// (the process environment).
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidProject is wrapped by every validation failure.
var ErrInvalidProject = errors.New("project: invalid project file")

// Project is a decoded project file.
type Project struct {
	// Root is the absolute directory of the project file.
	Root    string
	Modules []Module
}

// Module is one generation unit.
type Module struct {
	Name string

	// Packages are go/packages patterns, resolved against Project.Root.
	Packages []string

	// OutputDir is absolute.
	OutputDir string

	// Package is the generated package name; empty means "derive from OutputDir".
	Package string

	// Kit overrides the runtime import path.
	Kit string

	Tags []string
}

type hclFile struct {
	Modules []*hclModule `hcl:"module,block"`
}

type hclModule struct {
	Name     string     `hcl:"name,label"`
	Packages []string   `hcl:"packages"`
	Kit      *string    `hcl:"kit"`
	Tags     []string   `hcl:"tags,optional"`
	Output   *hclOutput `hcl:"output,block"`
}

type hclOutput struct {
	Dir     string  `hcl:"dir"`
	Package *string `hcl:"package"`
}

// Load reads and decodes the project file at path using the process environment.
func Load(path string) (*Project, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return Parse(src, abs, filepath.Dir(abs), environ())
}

// Parse decodes src. filename is used in diagnostics only; relative output
// directories are resolved against root.
func Parse(src []byte, filename, root string, env map[string]string) (*Project, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProject, filename, diags)
	}

	var decoded hclFile
	if diags := gohcl.DecodeBody(f.Body, evalContext(root, env), &decoded); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProject, filename, diags)
	}

	p := &Project{Root: root}
	seen := map[string]bool{}
	for _, m := range decoded.Modules {
		if seen[m.Name] {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidProject, m.Name)
		}
		seen[m.Name] = true

		if len(m.Packages) == 0 {
			return nil, fmt.Errorf("%w: module %q: packages must not be empty", ErrInvalidProject, m.Name)
		}
		if m.Output == nil || strings.TrimSpace(m.Output.Dir) == "" {
			return nil, fmt.Errorf("%w: module %q: output dir is required", ErrInvalidProject, m.Name)
		}

		dir := m.Output.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		mod := Module{
			Name:      m.Name,
			Packages:  m.Packages,
			OutputDir: filepath.Clean(dir),
			Tags:      m.Tags,
		}
		if m.Output.Package != nil {
			mod.Package = *m.Output.Package
		}
		if m.Kit != nil {
			mod.Kit = *m.Kit
		}
		p.Modules = append(p.Modules, mod)
	}

	if len(p.Modules) == 0 {
		return nil, fmt.Errorf("%w: %s: no module blocks", ErrInvalidProject, filename)
	}
	return p, nil
}

// Module returns the module named name.
func (p *Project) Module(name string) (Module, bool) {
	for _, m := range p.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

func evalContext(root string, env map[string]string) *hcl.EvalContext {
	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root": cty.StringVal(filepath.ToSlash(root)),
			"env":  cty.ObjectVal(vals),
		},
	}
}

func environ() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			out[k] = v
		}
	}
	return out
}
