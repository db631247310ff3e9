package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFindModule verifies the upward search and module path parsing.
func TestFindModule(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("// travel\nmodule \"example.com/travel\"\n\ngo 1.22\n"), 0o644))
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	info, err := FindModule(deep)
	require.NoError(t, err)
	assert.Equal(t, "example.com/travel", info.Path)
	assert.Equal(t, root, info.Root)

	// the directory itself does not have to exist yet
	info, err = FindModule(filepath.Join(root, "gen", "hotel"))
	require.NoError(t, err)
	assert.Equal(t, root, info.Root)
}

// TestFindModule_Errors verifies missing module directives are reported.
func TestFindModule_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.22\n"), 0o644))

	_, err := FindModule(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing module directive")
}

// TestModuleInfo_ImportPath verifies paths inside and outside the module.
func TestModuleInfo_ImportPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	info := ModuleInfo{Root: root, Path: "example.com/travel"}

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr string
	}{
		{name: "root", dir: root, want: "example.com/travel"},
		{name: "nested", dir: filepath.Join(root, "hotel", "gen"), want: "example.com/travel/hotel/gen"},
		{name: "outside", dir: filepath.Dir(root), wantErr: "outside module root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := info.ImportPath(tt.dir)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
