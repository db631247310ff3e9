// Package scan is the host front-end of modkit: it loads Go packages, finds
// //modkit: directives on type declarations and turns them into
// processor.Declaration batches.
//
//	//modkit:target /hotel/detail
//	type HotelDetail struct{}
//
//	//modkit:service
//	type PayServiceImpl struct{}
//
//	//modkit:module
//	type HotelModule struct{ kit.BaseModule }
//
// Packages are type-checked with golang.org/x/tools/go/packages, so the
// supertypes of every declaration are exact: embedded types plus the named
// interfaces a type implements. Implementation is structural, so a
// //modkit:service type counts every indexed interface whose method set it
// covers, including smaller interfaces it was not written for.
package scan

import (
	"context"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/sghaida/modkit/processor"
)

// Batch holds the declarations found in one package.
type Batch struct {
	PkgPath string
	Decls   []processor.Declaration
}

// Loader scans packages for marked declarations.
type Loader struct {
	// Dir is the directory patterns are resolved in; positions are reported
	// relative to it.
	Dir string

	// Patterns are go/packages patterns, e.g. "./...".
	Patterns []string

	// OutputPkgPath is the import path of the generated package. Unexported
	// types are accepted only there.
	OutputPkgPath string

	// OutputDir is the directory of the generated package. When loading
	// fails, files listed in Generated that exist there are blanked and the
	// load is retried, so stale output cannot break the scan that replaces it.
	OutputDir string
	Generated []string

	// Reserved are the package-level names the generated files declare. A
	// hand-written declaration of one in the output package is a
	// NameConflictError.
	Reserved []string

	// Env is the environment of the go command; nil means os.Environ() with
	// GOWORK=off.
	Env []string

	// Tags are extra build tags.
	Tags []string

	Logger *zap.Logger
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo

// Load returns one batch per package that contains directives, ordered by
// package path. Declarations keep their source order.
func (l *Loader) Load(ctx context.Context) ([]Batch, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	env := l.Env
	if env == nil {
		env = append(os.Environ(), "GOWORK=off")
	}

	patterns := l.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pkgs, err := l.load(ctx, env, patterns, nil)
	if err != nil {
		var le *LoadError
		overlay := l.overlay()
		if !errors.As(err, &le) || overlay == nil {
			return nil, err
		}
		// Stale output may reference types that no longer exist; retry with
		// the generated files blanked.
		log.Debug("retrying load without generated files", zap.Int("errors", len(le.Errors)))
		if pkgs, err = l.load(ctx, env, patterns, overlay); err != nil {
			return nil, err
		}
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	if err := l.checkReserved(pkgs); err != nil {
		return nil, err
	}

	roots := make([]*types.Package, 0, len(pkgs))
	for _, p := range pkgs {
		roots = append(roots, p.Types)
	}
	idx := newInterfaceIndex(roots, l.OutputPkgPath)

	type declKey struct {
		kind processor.Kind
		typ  processor.TypeName
	}
	var batches []Batch
	seen := map[declKey]bool{}
	for _, p := range pkgs {
		decls, err := l.scanPackage(p, idx)
		if err != nil {
			return nil, err
		}
		var fresh []processor.Declaration
		for _, d := range decls {
			key := declKey{kind: d.Kind, typ: d.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
			fresh = append(fresh, d)
		}
		log.Debug("scanned package",
			zap.String("pkg", p.PkgPath),
			zap.Int("files", len(p.Syntax)),
			zap.Int("declarations", len(fresh)))
		if len(fresh) > 0 {
			batches = append(batches, Batch{PkgPath: p.PkgPath, Decls: fresh})
		}
	}
	return batches, nil
}

func (l *Loader) load(ctx context.Context, env, patterns []string, overlay map[string][]byte) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     l.Dir,
		Env:     env,
		Overlay: overlay,
	}
	if len(l.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(l.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}

	var loadErrs []packages.Error
	for _, p := range pkgs {
		loadErrs = append(loadErrs, p.Errors...)
	}
	if len(loadErrs) > 0 {
		return nil, &LoadError{Errors: loadErrs}
	}
	return pkgs, nil
}

func (l *Loader) scanPackage(p *packages.Package, idx *interfaceIndex) ([]processor.Declaration, error) {
	errPos := func(c *ast.Comment) string { return l.position(p.Fset, c.Pos()) }

	files := append([]*ast.File(nil), p.Syntax...)
	sort.SliceStable(files, func(i, j int) bool {
		return p.Fset.File(files[i].Pos()).Name() < p.Fset.File(files[j].Pos()).Name()
	})

	var out []processor.Declaration
	for _, f := range files {
		dirs, order, err := fileDirectives(f, errPos)
		if err != nil {
			return nil, err
		}
		for _, ts := range order {
			ds := dirs[ts]
			if len(ds) == 0 {
				continue
			}
			decls, err := l.declare(p, idx, ts, ds)
			if err != nil {
				return nil, err
			}
			out = append(out, decls...)
		}
	}
	return out, nil
}

// declare validates the shape of ts and produces one declaration per directive.
func (l *Loader) declare(p *packages.Package, idx *interfaceIndex, ts *ast.TypeSpec, ds []directive) ([]processor.Declaration, error) {
	obj, _ := p.TypesInfo.Defs[ts.Name].(*types.TypeName)
	qualified := p.PkgPath + "." + ts.Name.Name
	fail := func(err error, d directive) error {
		return &DirectiveError{Err: err, Directive: d.raw, Type: qualified, Pos: l.position(p.Fset, d.c.Pos())}
	}

	first := ds[0]
	if obj == nil || obj.IsAlias() || ts.Assign.IsValid() {
		return nil, fail(ErrInterfaceType, first)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fail(ErrInterfaceType, first)
	}
	if _, isIface := named.Underlying().(*types.Interface); isIface {
		return nil, fail(ErrInterfaceType, first)
	}
	if ts.TypeParams != nil && ts.TypeParams.NumFields() > 0 {
		return nil, fail(ErrGenericType, first)
	}
	if !ast.IsExported(ts.Name.Name) && p.PkgPath != l.OutputPkgPath {
		return nil, fail(ErrUnexportedType, first)
	}

	kinds := map[processor.Kind]bool{}
	for _, d := range ds {
		if kinds[d.kind] {
			return nil, fail(ErrDuplicateDirective, d)
		}
		kinds[d.kind] = true
	}

	super := idx.supertypes(named)
	pos := l.position(p.Fset, ts.Pos())
	out := make([]processor.Declaration, 0, len(ds))
	for _, d := range ds {
		out = append(out, processor.Declaration{
			Kind:       d.kind,
			Type:       typeName(obj),
			Supertypes: super,
			Path:       d.arg,
			Pos:        pos,
		})
	}
	return out, nil
}

// position renders pos as "file.go:12", relative to Dir when possible.
func (l *Loader) position(fset *token.FileSet, pos token.Pos) string {
	p := fset.Position(pos)
	name := p.Filename
	if l.Dir != "" {
		if rel, err := filepath.Rel(l.Dir, name); err == nil {
			name = rel
		}
	}
	return filepath.ToSlash(name) + ":" + strconv.Itoa(p.Line)
}

// overlay blanks existing generated files, keeping only their package clause.
func (l *Loader) overlay() map[string][]byte {
	if l.OutputDir == "" {
		return nil
	}
	out := map[string][]byte{}
	for _, name := range l.Generated {
		path := filepath.Join(l.OutputDir, name)
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.PackageClauseOnly)
		if err != nil {
			continue
		}
		out[path] = []byte("package " + f.Name.Name + "\n")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// checkReserved looks the reserved names up in the output package. The
// package scope is used when the output package was scanned; otherwise the
// sources in OutputDir are parsed.
func (l *Loader) checkReserved(pkgs []*packages.Package) error {
	if len(l.Reserved) == 0 || l.OutputPkgPath == "" {
		return nil
	}
	for _, p := range pkgs {
		if p.PkgPath != l.OutputPkgPath || p.Types == nil {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range l.Reserved {
			obj := scope.Lookup(name)
			if obj == nil || l.isGenerated(p.Fset.Position(obj.Pos()).Filename) {
				continue
			}
			return &NameConflictError{Name: name, PkgPath: p.PkgPath, Pos: l.position(p.Fset, obj.Pos())}
		}
		return nil
	}
	return l.checkReservedFiles()
}

func (l *Loader) checkReservedFiles() error {
	if l.OutputDir == "" {
		return nil
	}
	entries, err := os.ReadDir(l.OutputDir)
	if err != nil {
		// a missing output directory declares nothing
		return nil
	}

	reserved := map[string]bool{}
	for _, name := range l.Reserved {
		reserved[name] = true
	}

	fset := token.NewFileSet()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || l.isGenerated(name) {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(l.OutputDir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			continue
		}
		for _, id := range topLevelNames(f) {
			if reserved[id.Name] {
				return &NameConflictError{Name: id.Name, PkgPath: l.OutputPkgPath, Pos: l.position(fset, id.Pos())}
			}
		}
	}
	return nil
}

func (l *Loader) isGenerated(path string) bool {
	base := filepath.Base(path)
	for _, g := range l.Generated {
		if base == g {
			return true
		}
	}
	return false
}

// topLevelNames returns the package-level identifiers declared in f.
func topLevelNames(f *ast.File) []*ast.Ident {
	var out []*ast.Ident
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				out = append(out, d.Name)
			}
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					out = append(out, s.Name)
				case *ast.ValueSpec:
					out = append(out, s.Names...)
				}
			}
		}
	}
	return out
}
