package emit

import (
	"go/token"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/sghaida/modkit/processor"
)

// Identifiers the generated code declares or uses as locals. An import alias
// must not shadow them.
var reservedAliases = map[string]bool{
	"host":     true,
	"subpath":  true,
	"Routes":   true,
	"Activate": true,
	"any":      true,
	"new":      true,
	"string":   true,
	"bool":     true,
	"nil":      true,
	"true":     true,
	"false":    true,
}

// importSet allocates import aliases in order of first use.
//
// The kit package is always imported first. Types of the output package are
// not imported.
type importSet struct {
	self    string
	imports []Import
	byPath  map[string]string
	used    map[string]bool
}

func newImportSet(self, kitPath string) *importSet {
	s := &importSet{self: self, byPath: map[string]string{}, used: map[string]bool{}}
	s.alias(kitPath)
	return s
}

func (s *importSet) kit() string { return s.imports[0].Name }

// ref returns a reference to t, importing its package if needed.
func (s *importSet) ref(t processor.TypeName) TypeRef {
	r := TypeRef{Name: t.Name, Full: t.String()}
	if t.PkgPath != "" && t.PkgPath != s.self {
		r.Qualifier = s.alias(t.PkgPath)
	}
	return r
}

func (s *importSet) alias(pkgPath string) string {
	if a, ok := s.byPath[pkgPath]; ok {
		return a
	}
	base := aliasBase(pkgPath)
	a := base
	for n := 2; s.used[a] || reservedAliases[a] || token.IsKeyword(a); n++ {
		a = base + strconv.Itoa(n)
	}
	s.used[a] = true
	s.byPath[pkgPath] = a
	s.imports = append(s.imports, Import{Name: a, Path: pkgPath})
	return a
}

func (s *importSet) list() []Import {
	return append([]Import(nil), s.imports...)
}

// aliasBase derives an identifier from the last path element:
// "example.com/go-pay.v2" -> "gopay".
func aliasBase(pkgPath string) string {
	elem := path.Base(pkgPath)
	if i := strings.Index(elem, "."); i > 0 {
		elem = elem[:i]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(elem) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "pkg" + out
	}
	return out
}
