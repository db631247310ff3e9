package scan

import (
	"go/ast"
	"strings"

	"github.com/sghaida/modkit/processor"
)

// Prefix starts every marker directive. Like //go: directives there is no
// space after the slashes.
const Prefix = "//modkit:"

var directiveKinds = map[string]processor.Kind{
	"target":  processor.KindRoutable,
	"service": processor.KindServiceImpl,
	"module":  processor.KindModule,
}

type directive struct {
	kind processor.Kind
	arg  string
	raw  string
	c    *ast.Comment
}

// isDirective reports whether c is a modkit directive line.
func isDirective(c *ast.Comment) bool {
	return strings.HasPrefix(c.Text, Prefix)
}

// parseDirective splits "//modkit:target /hotel/detail" into kind and argument.
// errPos formats positions for errors.
func parseDirective(c *ast.Comment, errPos func(*ast.Comment) string) (directive, error) {
	rest := strings.TrimPrefix(c.Text, Prefix)
	name, arg, _ := strings.Cut(rest, " ")
	name = strings.TrimSpace(name)
	arg = strings.TrimSpace(arg)
	raw := Prefix + name

	kind, ok := directiveKinds[name]
	if !ok {
		return directive{}, &DirectiveError{Err: ErrUnknownDirective, Directive: raw, Pos: errPos(c)}
	}

	switch {
	case kind == processor.KindRoutable && arg == "":
		return directive{}, &DirectiveError{Err: ErrMissingPath, Directive: raw, Pos: errPos(c)}
	case kind != processor.KindRoutable && arg != "":
		return directive{}, &DirectiveError{Err: ErrUnexpectedArgument, Directive: c.Text, Pos: errPos(c)}
	}
	return directive{kind: kind, arg: arg, raw: raw, c: c}, nil
}

// fileDirectives returns the directives attached to each type declared in f.
//
// A directive belongs to a type when it sits in the type's own doc comment
// or in the doc comment of an unparenthesized "type X ..." declaration. Any
// other directive is misplaced.
func fileDirectives(f *ast.File, errPos func(*ast.Comment) string) (map[*ast.TypeSpec][]directive, []*ast.TypeSpec, error) {
	attached := map[*ast.CommentGroup]*ast.TypeSpec{}
	var order []*ast.TypeSpec

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			order = append(order, ts)
			if ts.Doc != nil {
				attached[ts.Doc] = ts
			}
		}
		if gd.Doc != nil && !gd.Lparen.IsValid() && len(gd.Specs) == 1 {
			if ts, ok := gd.Specs[0].(*ast.TypeSpec); ok {
				attached[gd.Doc] = ts
			}
		}
	}

	out := map[*ast.TypeSpec][]directive{}
	for _, cg := range f.Comments {
		ts := attached[cg]
		for _, c := range cg.List {
			if !isDirective(c) {
				continue
			}
			if ts == nil {
				return nil, nil, &DirectiveError{Err: ErrMisplacedDirective, Directive: c.Text, Pos: errPos(c)}
			}
			d, err := parseDirective(c, errPos)
			if err != nil {
				return nil, nil, err
			}
			out[ts] = append(out[ts], d)
		}
	}
	return out, order, nil
}
