// Package emit turns an accumulated processor.ScanState into generated Go files.
//
// Emission is split in two steps. Build derives a structured, renderer-neutral
// Artifacts model from the state; a Renderer turns that model into source files.
// GoRenderer is the default renderer. Emitter glues both to a Filer and
// implements processor.Generator.
//
// Output is a pure function of the state: entries keep discovery order and are
// never re-sorted, so regenerating after a later pass only appends.
package emit

import (
	"github.com/sghaida/modkit/processor"
)

// DefaultKitPath is the import path of the runtime package generated code uses.
const DefaultKitPath = "github.com/sghaida/modkit/kit"

// Generated file names.
const (
	RoutesFile    = "modkit_routes.gen.go"
	ActivatorFile = "modkit_activator.gen.go"
)

// Package-level names the generated files declare in the output package.
const (
	RoutesType   = "Routes"
	ActivateFunc = "Activate"
)

// Declared lists the names the generated files may declare.
var Declared = []string{RoutesType, ActivateFunc}

// Options describes where the generated code lives.
type Options struct {
	// Package is the package name of the generated files.
	Package string

	// PkgPath is the import path of the output package. Types declared in it
	// are referenced unqualified.
	PkgPath string

	// KitPath overrides DefaultKitPath.
	KitPath string
}

func (o Options) kitPath() string {
	if o.KitPath == "" {
		return DefaultKitPath
	}
	return o.KitPath
}

// Import is one import spec of a generated file. Name is always set.
type Import struct {
	Name string
	Path string
}

// TypeRef is a type as referenced from generated code.
type TypeRef struct {
	// Qualifier is the import alias, or "" for types of the output package.
	Qualifier string
	Name      string

	// Full is the fully qualified name, used for keys and diagnostics.
	Full string
}

// Expr returns the Go expression naming the type, e.g. "pay.PayService".
func (r TypeRef) Expr() string {
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

// Route is one case of the generated routing switch.
type Route struct {
	Subpath string
	Path    string
	Target  TypeRef
}

// Routing is the routing artifact model.
type Routing struct {
	Package string
	Kit     string
	Imports []Import
	Group   string
	Routes  []Route
}

// Binding registers one implementation under its service key.
type Binding struct {
	Key     string
	Service TypeRef
	Impl    TypeRef
}

// Activator is the activator artifact model.
type Activator struct {
	Package  string
	Kit      string
	Imports  []Import
	Services []Binding
	Module   *TypeRef

	// Routes is true when a routing artifact is emitted alongside.
	Routes bool
}

// Artifacts is the complete output model of one scan.
type Artifacts struct {
	// Routing is nil when the scan found no target declarations.
	Routing   *Routing
	Activator Activator
}

// Build derives the artifact model from s. It never mutates s.
func Build(s *processor.ScanState, opts Options) Artifacts {
	var a Artifacts

	if s.Targets.Len() > 0 {
		imps := newImportSet(opts.PkgPath, opts.kitPath())
		r := &Routing{Package: opts.Package, Kit: imps.kit(), Group: s.Group()}
		for _, e := range s.Targets.Entries() {
			r.Routes = append(r.Routes, Route{
				Subpath: e.Subpath,
				Path:    "/" + e.Group + "/" + e.Subpath,
				Target:  imps.ref(e.Target),
			})
		}
		r.Imports = imps.list()
		a.Routing = r
	}

	imps := newImportSet(opts.PkgPath, opts.kitPath())
	act := Activator{Package: opts.Package, Kit: imps.kit(), Routes: a.Routing != nil}
	for _, e := range s.Services.Entries() {
		act.Services = append(act.Services, Binding{
			Key:     e.Service.String(),
			Service: imps.ref(e.Service),
			Impl:    imps.ref(e.Impl),
		})
	}
	if m, ok := s.Module.Get(); ok {
		ref := imps.ref(m.Type)
		act.Module = &ref
	}
	act.Imports = imps.list()
	a.Activator = act

	return a
}
