package scan

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sghaida/modkit/processor"
)

const appModule = "example.com/app"

var (
	kitService = processor.TypeName{PkgPath: appModule + "/kit", Name: "Service"}
	kitBase    = processor.TypeName{PkgPath: appModule + "/kit", Name: "BaseModule"}
)

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
	m.write("kit/kit.go", `package kit

type Service interface{}

type BaseModule struct{}
`)
	return m
}

func (m *modHarness) write(rel, content string) {
	m.t.Helper()
	path := filepath.Join(m.dir, rel)
	require.NoError(m.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(m.t, os.WriteFile(path, []byte(content), 0o644))
}

func (m *modHarness) loader(outputPkg string) *Loader {
	return &Loader{
		Dir:           m.dir,
		Patterns:      []string{"./..."},
		OutputPkgPath: outputPkg,
		Env:           append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod", "GOPROXY=off"),
	}
}

func (m *modHarness) load(outputPkg string) ([]Batch, error) {
	m.t.Helper()
	return m.loader(outputPkg).Load(context.Background())
}
