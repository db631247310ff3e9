// Package processor is the scan-validate-generate engine behind modkit.
//
// A host front-end (see package scan) discovers marked type declarations and
// presents them to a Coordinator, one batch per pass. The coordinator feeds each
// declaration to the builder for its kind:
//
//   - TargetTable: routable types, keyed by "/group/subpath"
//   - ServiceTable: service implementations, keyed by their service interface
//   - ModuleSlot: the single module declaration, if any
//
// The accumulated ScanState is handed to a Generator after every pass that
// produced new declarations. Every validation failure is fatal: there is no
// partial success, because the generated wiring is only correct when the whole
// table is consistent.
//
// The package does not read source code and does not write files. Both sides are
// injected: declarations come from the host, output goes through Generator.
package processor

// Kind discriminates marked declarations.
type Kind int

const (
	// KindRoutable marks a type reachable through a "/group/subpath" target path.
	KindRoutable Kind = iota + 1

	// KindServiceImpl marks a concrete implementation of exactly one service interface.
	KindServiceImpl

	// KindModule marks the single module type of a scan.
	KindModule
)

// String returns the directive name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRoutable:
		return "target"
	case KindServiceImpl:
		return "service"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// TypeName is a package-qualified type name.
type TypeName struct {
	PkgPath string
	Name    string
}

// String returns the fully qualified name, e.g. "example.com/app/pay.PayService".
func (t TypeName) String() string {
	if t.PkgPath == "" {
		return t.Name
	}
	return t.PkgPath + "." + t.Name
}

// IsZero reports whether t is unset.
func (t TypeName) IsZero() bool { return t.PkgPath == "" && t.Name == "" }

// Supertype is one direct supertype of a declaration together with that
// supertype's own direct supertypes.
//
// Two levels are all the service check needs: implementation -> service
// interface -> marker.
type Supertype struct {
	Type       TypeName
	Supertypes []TypeName
}

// Declaration is a marked type declaration as presented by the host.
// Declarations are never mutated after discovery.
type Declaration struct {
	Kind Kind
	Type TypeName

	// Supertypes lists the direct supertypes of Type in declaration order.
	Supertypes []Supertype

	// Path is the raw target path; only meaningful for KindRoutable.
	Path string

	// Pos is a human-readable source position used in diagnostics.
	Pos string
}

// hasDirectSupertype reports whether want is one of the direct supertypes.
func (d Declaration) hasDirectSupertype(want TypeName) bool {
	for _, st := range d.Supertypes {
		if st.Type == want {
			return true
		}
	}
	return false
}

// qualifyingSupertypes returns the direct supertypes that themselves directly
// extend marker.
func (d Declaration) qualifyingSupertypes(marker TypeName) []TypeName {
	var out []TypeName
	for _, st := range d.Supertypes {
		for _, parent := range st.Supertypes {
			if parent == marker {
				out = append(out, st.Type)
				break
			}
		}
	}
	return out
}
