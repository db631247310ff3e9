package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"text/template"

	"github.com/cespare/xxhash/v2"
)

// File is one rendered artifact.
type File struct {
	Name string
	Src  []byte
}

// Renderer turns an artifact model into files.
type Renderer interface {
	Render(a Artifacts) ([]File, error)
}

// GoRenderer renders gofmt-ed Go source.
//
// Every file starts with the standard generated-code header followed by a
// fingerprint line: the xxhash of the formatted body, which lets tools detect
// hand edits without re-running a scan.
type GoRenderer struct{}

var _ Renderer = GoRenderer{}

// Render implements Renderer. The routing file precedes the activator.
func (GoRenderer) Render(a Artifacts) ([]File, error) {
	var files []File
	if a.Routing != nil {
		src, err := renderGo(routesTpl, a.Routing)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", RoutesFile, err)
		}
		files = append(files, File{Name: RoutesFile, Src: src})
	}

	src, err := renderGo(activatorTpl, a.Activator)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ActivatorFile, err)
	}
	return append(files, File{Name: ActivatorFile, Src: src}), nil
}

// Header is the first line of every generated file.
const Header = "// Code generated by modkit. DO NOT EDIT."

const fingerprintPrefix = "// Fingerprint: "

func renderGo(tpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	body, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gofmt/format failed: %w", err)
	}

	var out bytes.Buffer
	out.Grow(len(body) + 64)
	out.WriteString(Header + "\n")
	out.WriteString(fingerprintPrefix + Fingerprint(body) + "\n\n")
	out.Write(body)
	return out.Bytes(), nil
}

// Fingerprint returns the hex xxhash of b.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// VerifyFingerprint reports whether src is a generated file whose body still
// matches its fingerprint line. Hand-edited or foreign files report false.
func VerifyFingerprint(src []byte) bool {
	rest, ok := bytes.CutPrefix(src, []byte(Header+"\n"+fingerprintPrefix))
	if !ok {
		return false
	}
	sum, body, ok := bytes.Cut(rest, []byte("\n\n"))
	if !ok {
		return false
	}
	return string(sum) == Fingerprint(body)
}

var funcs = template.FuncMap{
	"quote": strconv.Quote,
}

var routesTpl = template.Must(template.New("routes").Funcs(funcs).Parse(`package {{.Package}}

import (
{{- range .Imports }}
	{{ .Name }} {{ quote .Path }}
{{- end }}
)

// Routes resolves the targets of group {{ quote .Group }}.
type Routes struct{}

var _ {{.Kit}}.TargetProvider = Routes{}

// Group implements {{.Kit}}.TargetProvider.
func (Routes) Group() string { return {{ quote .Group }} }

// Resolve implements {{.Kit}}.TargetProvider.
func (Routes) Resolve(subpath string) ({{.Kit}}.Target, bool) {
	switch subpath {
{{- range .Routes }}
	case {{ quote .Subpath }}:
		return {{$.Kit}}.Target{
			Path: {{ quote .Path }},
			Type: {{ quote .Target.Full }},
			New:  func() any { return new({{ .Target.Expr }}) },
		}, true
{{- end }}
	}
	return {{.Kit}}.Target{}, false
}
`))

var activatorTpl = template.Must(template.New("activator").Funcs(funcs).Parse(`package {{.Package}}

import (
{{- range .Imports }}
	{{ .Name }} {{ quote .Path }}
{{- end }}
)

// Activate registers the services, module and routes of this package with host.
func Activate(host {{.Kit}}.Host) {
{{- range .Services }}
	host.RegisterService({{ quote .Key }}, new({{ .Impl.Expr }}))
{{- end }}
{{- with .Module }}
	host.RegisterModule(new({{ .Expr }}))
{{- end }}
{{- if .Routes }}
	host.RegisterTargetProvider(Routes{})
{{- end }}
}

var _ {{.Kit}}.Activator = Activate
{{- if or .Services .Module }}

var (
{{- range .Services }}
	_ {{ .Service.Expr }} = (*{{ .Impl.Expr }})(nil)
{{- end }}
{{- with .Module }}
	_ {{$.Kit}}.Module = (*{{ .Expr }})(nil)
{{- end }}
)
{{- end }}
`))
