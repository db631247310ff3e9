// Package codegen drives one modkit compilation: it scans packages, feeds every
// batch to a processor.Coordinator as one pass, renders artifacts into a
// staging area and, once the final pass succeeded, commits them to the output
// directory.
//
// A failed run writes nothing. Check runs the same pipeline and reports how the
// output directory differs from what Run would write.
package codegen

import (
	"context"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sghaida/modkit/emit"
	"github.com/sghaida/modkit/filer"
	"github.com/sghaida/modkit/logging"
	"github.com/sghaida/modkit/processor"
	"github.com/sghaida/modkit/project"
	"github.com/sghaida/modkit/scan"
)

// Generated lists the files owned by the generator in an output directory.
var Generated = []string{emit.RoutesFile, emit.ActivatorFile}

// Options configures a run.
type Options struct {
	// Dir is where Patterns are resolved. Defaults to the current directory.
	Dir string

	// Patterns are go/packages patterns. Defaults to "./...".
	Patterns []string

	// OutputDir is the directory of the generated package. Required.
	OutputDir string

	// Package is the generated package name. When empty it is read from the
	// Go files already in OutputDir, or derived from the directory name.
	Package string

	// KitPath is the import path of the runtime package. Defaults to
	// emit.DefaultKitPath.
	KitPath string

	// Markers default to KitPath.Service and KitPath.BaseModule.
	Markers processor.Markers

	Env  []string
	Tags []string

	Logger *zap.Logger
}

// Report summarizes a successful run.
type Report struct {
	Package string
	PkgPath string
	Dir     string

	Passes   int
	Group    string
	Targets  int
	Services int
	Module   string

	// Files are the staged file names, sorted.
	Files []string

	// Written is set by Run.
	Written filer.Result

	// Changes is set by Check; empty means the output is up to date.
	Changes []filer.Change
}

// UpToDate reports whether Check found no drift.
func (r *Report) UpToDate() bool { return len(r.Changes) == 0 }

// Run generates and writes the artifacts of one compilation.
func Run(ctx context.Context, opts Options) (*Report, error) {
	stage, rep, err := compile(ctx, opts)
	if err != nil {
		return nil, err
	}

	dir := filer.NewDir(rep.Dir)
	if err := os.MkdirAll(rep.Dir, 0o755); err != nil {
		return nil, err
	}
	if err := stage.Commit(dir); err != nil {
		return nil, err
	}
	rep.Written = dir.Result()

	opts.logger().Info("generated",
		zap.String("pkg", rep.PkgPath),
		zap.Strings("written", rep.Written.Written),
		zap.Strings("unchanged", rep.Written.Unchanged),
		zap.Strings("removed", rep.Written.Removed))
	return rep, nil
}

// Check runs the pipeline without writing and reports drift.
func Check(ctx context.Context, opts Options) (*Report, error) {
	stage, rep, err := compile(ctx, opts)
	if err != nil {
		return nil, err
	}
	changes, err := stage.Diff(rep.Dir)
	if err != nil {
		return nil, err
	}
	rep.Changes = changes

	log := opts.logger()
	for _, c := range changes {
		log.Warn("out of date", zap.String("pkg", rep.PkgPath), zap.String("file", c.Name), zap.String("change", string(c.Kind)))
	}
	return rep, nil
}

// ProjectOptions turns module m of p into run options. Fields of base that m
// does not set are kept.
func ProjectOptions(p *project.Project, m project.Module, base Options) Options {
	opts := base
	opts.Dir = p.Root
	opts.Patterns = m.Packages
	opts.OutputDir = m.OutputDir
	opts.Package = m.Package
	if m.Kit != "" {
		opts.KitPath = m.Kit
		opts.Markers = processor.Markers{}
	}
	if len(m.Tags) > 0 {
		opts.Tags = m.Tags
	}
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With(zap.String("module", m.Name))
	}
	return opts
}

// RunProject runs every module of p in order; each module is its own
// compilation. It stops at the first failure.
func RunProject(ctx context.Context, p *project.Project, base Options) ([]*Report, error) {
	return eachModule(ctx, p, base, Run)
}

// CheckProject checks every module of p.
func CheckProject(ctx context.Context, p *project.Project, base Options) ([]*Report, error) {
	return eachModule(ctx, p, base, Check)
}

func eachModule(ctx context.Context, p *project.Project, base Options, fn func(context.Context, Options) (*Report, error)) ([]*Report, error) {
	out := make([]*Report, 0, len(p.Modules))
	for _, m := range p.Modules {
		rep, err := fn(ctx, ProjectOptions(p, m, base))
		if err != nil {
			return out, &ModuleError{Module: m.Name, Err: err}
		}
		out = append(out, rep)
	}
	return out, nil
}

// ModuleError attributes a failure to a project module.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string { return "codegen: module " + strconv.Quote(e.Module) + ": " + e.Err.Error() }

func (e *ModuleError) Unwrap() error { return e.Err }

// compile runs scan, coordinator and emitter into a fresh staging area.
func compile(ctx context.Context, opts Options) (*filer.Staging, *Report, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, nil, err
	}
	log := opts.logger()

	mod, err := FindModule(opts.OutputDir)
	if err != nil {
		return nil, nil, err
	}
	pkgPath, err := mod.ImportPath(opts.OutputDir)
	if err != nil {
		return nil, nil, err
	}

	loader := &scan.Loader{
		Dir:           opts.Dir,
		Patterns:      opts.Patterns,
		OutputPkgPath: pkgPath,
		OutputDir:     opts.OutputDir,
		Generated:     Generated,
		Reserved:      emit.Declared,
		Env:           opts.Env,
		Tags:          opts.Tags,
		Logger:        log.Named("scan"),
	}
	batches, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	stage := filer.NewStaging()
	em := emit.NewEmitter(emit.Options{Package: opts.Package, PkgPath: pkgPath, KitPath: opts.KitPath}, stage, nil)
	coord, err := processor.NewCoordinator(
		processor.Config{Package: opts.Package, Markers: opts.Markers},
		em,
		logging.NewSink(log.Named("processor")),
	)
	if err != nil {
		return nil, nil, err
	}

	for _, b := range batches {
		if _, err := coord.Advance(ctx, b.Decls, false); err != nil {
			return nil, nil, err
		}
	}
	if _, err := coord.Advance(ctx, nil, true); err != nil {
		return nil, nil, err
	}

	s := coord.State()
	rep := &Report{
		Package:  opts.Package,
		PkgPath:  pkgPath,
		Dir:      opts.OutputDir,
		Passes:   coord.Pass(),
		Group:    s.Group(),
		Targets:  s.Targets.Len(),
		Services: s.Services.Len(),
		Files:    stage.Names(),
	}
	if m, ok := s.Module.Get(); ok {
		rep.Module = m.Type.String()
	}
	return stage, rep, nil
}

func (o Options) withDefaults() (Options, error) {
	if strings.TrimSpace(o.OutputDir) == "" {
		return o, &processor.ConfigError{Option: "output", Reason: "must not be empty"}
	}

	var err error
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Dir, err = filepath.Abs(o.Dir); err != nil {
		return o, err
	}
	if !filepath.IsAbs(o.OutputDir) {
		o.OutputDir = filepath.Join(o.Dir, o.OutputDir)
	}
	o.OutputDir = filepath.Clean(o.OutputDir)

	if len(o.Patterns) == 0 {
		o.Patterns = []string{"./..."}
	}
	if o.KitPath == "" {
		o.KitPath = emit.DefaultKitPath
	}
	if o.Markers.Service.IsZero() {
		o.Markers.Service = processor.TypeName{PkgPath: o.KitPath, Name: "Service"}
	}
	if o.Markers.ModuleBase.IsZero() {
		o.Markers.ModuleBase = processor.TypeName{PkgPath: o.KitPath, Name: "BaseModule"}
	}
	if o.Package == "" {
		if o.Package, err = PackageName(o.OutputDir); err != nil {
			return o, err
		}
	}
	return o, nil
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// PackageName returns the package clause of the hand-written Go files in dir,
// ignoring tests and generated artifacts. Without such files the name is
// derived from the directory name.
func PackageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	owned := map[string]bool{}
	for _, g := range Generated {
		owned[g] = true
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".go") || strings.HasSuffix(n, "_test.go") || owned[n] {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)

	fset := token.NewFileSet()
	for _, n := range names {
		f, err := parser.ParseFile(fset, filepath.Join(dir, n), nil, parser.PackageClauseOnly)
		if err != nil {
			continue
		}
		return f.Name.Name, nil
	}
	return dirPackageName(filepath.Base(dir)), nil
}

// dirPackageName lowercases base and drops characters not allowed in identifiers.
func dirPackageName(base string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if r == '_' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "gen" + name
	}
	if token.IsKeyword(name) {
		name += "pkg"
	}
	return name
}
