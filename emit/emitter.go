package emit

import (
	"context"

	"github.com/sghaida/modkit/processor"
)

// Filer receives rendered files. Names are relative to the output package
// directory. Removing a file that does not exist is not an error.
type Filer interface {
	Write(name string, src []byte) error
	Remove(name string) error
}

// Emitter implements processor.Generator on top of a Renderer and a Filer.
type Emitter struct {
	opts     Options
	renderer Renderer
	out      Filer
}

var _ processor.Generator = (*Emitter)(nil)

// NewEmitter returns an emitter writing into out. A nil renderer selects GoRenderer.
func NewEmitter(opts Options, out Filer, renderer Renderer) *Emitter {
	if renderer == nil {
		renderer = GoRenderer{}
	}
	return &Emitter{opts: opts, renderer: renderer, out: out}
}

// Generate implements processor.Generator.
//
// Both artifacts are regenerated whole. When the state carries no targets any
// routing file left by an earlier run is removed.
func (e *Emitter) Generate(ctx context.Context, s *processor.ScanState) error {
	if err := ctx.Err(); err != nil {
		return &processor.EmitError{Artifact: e.opts.Package, Err: err}
	}

	a := Build(s, e.opts)
	files, err := e.renderer.Render(a)
	if err != nil {
		return &processor.EmitError{Artifact: e.opts.Package, Err: err}
	}

	for _, f := range files {
		if err := e.out.Write(f.Name, f.Src); err != nil {
			return &processor.EmitError{Artifact: f.Name, Err: err}
		}
	}

	if a.Routing == nil {
		if err := e.out.Remove(RoutesFile); err != nil {
			return &processor.EmitError{Artifact: RoutesFile, Err: err}
		}
	}
	return nil
}
