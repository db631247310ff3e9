package codegen

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const appModule = "example.com/app"

// kitSource is the runtime surface generated code refers to.
const kitSource = `package kit

import "context"

type Service interface{}

type Module interface {
	Start(ctx context.Context) error
}

type BaseModule struct{}

func (*BaseModule) Start(context.Context) error { return nil }

type Target struct {
	Path string
	Type string
	New  func() any
}

type TargetProvider interface {
	Group() string
	Resolve(subpath string) (Target, bool)
}

type Host interface {
	RegisterService(key string, impl any)
	RegisterModule(m Module)
	RegisterTargetProvider(p TargetProvider)
}

type Activator func(Host)
`

// modHarness is a throwaway Go module on disk.
type modHarness struct {
	t   *testing.T
	dir string
}

func newModule(t *testing.T) *modHarness {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	m := &modHarness{t: t, dir: t.TempDir()}
	m.write("go.mod", "module "+appModule+"\n\ngo 1.21\n")
	m.write("kit/kit.go", kitSource)
	return m
}

func (m *modHarness) env() []string {
	return append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOPROXY=off")
}

func (m *modHarness) write(rel, content string) {
	m.t.Helper()
	path := filepath.Join(m.dir, rel)
	require.NoError(m.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(m.t, os.WriteFile(path, []byte(content), 0o644))
}

func (m *modHarness) remove(rel string) {
	m.t.Helper()
	require.NoError(m.t, os.Remove(filepath.Join(m.dir, rel)))
}

func (m *modHarness) read(rel string) string {
	m.t.Helper()
	b, err := os.ReadFile(filepath.Join(m.dir, rel))
	require.NoError(m.t, err)
	return string(b)
}

func (m *modHarness) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(m.dir, rel))
	return err == nil
}

func (m *modHarness) options(outRel string) Options {
	return Options{
		Dir:       m.dir,
		OutputDir: filepath.Join(m.dir, outRel),
		KitPath:   appModule + "/kit",
		Env:       m.env(),
	}
}

// build compiles every package of the module.
func (m *modHarness) build() {
	m.t.Helper()
	cmd := exec.Command("go", "build", "./...")
	cmd.Dir = m.dir
	cmd.Env = m.env()
	out, err := cmd.CombinedOutput()
	require.NoError(m.t, err, string(out))
}

func assertContainsInOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(s[pos:], p)
		if i < 0 {
			t.Fatalf("expected to find %q after offset %d in:\n%s", p, pos, s)
		}
		pos += i + len(p)
	}
}
