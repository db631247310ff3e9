package scan

import (
	"go/types"
	"sort"

	"github.com/sghaida/modkit/processor"
)

func typeName(obj *types.TypeName) processor.TypeName {
	if obj.Pkg() == nil {
		return processor.TypeName{Name: obj.Name()}
	}
	return processor.TypeName{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// namedOf returns the defined type behind t, looking through aliases.
func namedOf(t types.Type) (*types.Named, bool) {
	n, ok := unalias(t).(*types.Named)
	return n, ok
}

// interfaceIndex holds the named interfaces a struct is checked against.
type interfaceIndex struct {
	ifaces []*types.Named
}

// newInterfaceIndex collects the package-level, non-generic named interfaces
// with at least one method, declared in pkgs or any package they import
// directly. Empty interfaces are skipped: every type implements them.
// Unexported interfaces are kept only when they live in the output package
// (outPkgPath), the one place generated code can name them.
func newInterfaceIndex(pkgs []*types.Package, outPkgPath string) *interfaceIndex {
	seen := map[*types.Package]bool{}
	var all []*types.Package
	add := func(p *types.Package) {
		if p != nil && !seen[p] {
			seen[p] = true
			all = append(all, p)
		}
	}
	for _, p := range pkgs {
		add(p)
		for _, imp := range p.Imports() {
			add(imp)
		}
	}

	idx := &interfaceIndex{}
	for _, p := range all {
		scope := p.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || obj.IsAlias() {
				continue
			}
			if !obj.Exported() && p.Path() != outPkgPath {
				continue
			}
			n, ok := obj.Type().(*types.Named)
			if !ok || n.TypeParams().Len() > 0 {
				continue
			}
			iface, ok := n.Underlying().(*types.Interface)
			if !ok || iface.NumMethods() == 0 {
				continue
			}
			idx.ifaces = append(idx.ifaces, n)
		}
	}
	sort.Slice(idx.ifaces, func(i, j int) bool {
		return typeName(idx.ifaces[i].Obj()).String() < typeName(idx.ifaces[j].Obj()).String()
	})
	return idx
}

// supertypes returns the direct supertypes of n:
//
//   - for a struct, its value-embedded named fields in declaration order,
//     followed by every indexed interface that n or *n implements;
//   - for an interface, its embedded named interfaces.
//
// Each entry carries its own direct supertypes, computed the same way but
// without the interface search, which keeps the graph two levels deep.
func (idx *interfaceIndex) supertypes(n *types.Named) []processor.Supertype {
	var out []processor.Supertype
	seen := map[processor.TypeName]bool{}
	push := func(e *types.Named) {
		tn := typeName(e.Obj())
		if seen[tn] {
			return
		}
		seen[tn] = true
		out = append(out, processor.Supertype{Type: tn, Supertypes: declaredSupertypes(e)})
	}

	for _, e := range embedded(n) {
		push(e)
	}

	if _, isIface := n.Underlying().(*types.Interface); isIface {
		return out
	}
	ptr := types.NewPointer(n)
	for _, i := range idx.ifaces {
		if i == n {
			continue
		}
		iface := i.Underlying().(*types.Interface)
		if types.Implements(n, iface) || types.Implements(ptr, iface) {
			push(i)
		}
	}
	return out
}

// declaredSupertypes lists the named types n embeds.
func declaredSupertypes(n *types.Named) []processor.TypeName {
	var out []processor.TypeName
	for _, e := range embedded(n) {
		out = append(out, typeName(e.Obj()))
	}
	return out
}

// embedded returns the named types embedded by value in a struct, or the
// named interfaces embedded in an interface. Pointer embeddings are ignored.
func embedded(n *types.Named) []*types.Named {
	var out []*types.Named
	switch u := n.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			if !f.Embedded() {
				continue
			}
			if e, ok := namedOf(f.Type()); ok {
				out = append(out, e)
			}
		}
	case *types.Interface:
		for i := 0; i < u.NumEmbeddeds(); i++ {
			if e, ok := namedOf(u.EmbeddedType(i)); ok {
				out = append(out, e)
			}
		}
	}
	return out
}
