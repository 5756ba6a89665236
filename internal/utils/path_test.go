package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{name: "empty path", input: "", wantError: true},
		{name: "home", input: "~", want: filepath.Clean(home)},
		{name: "home relative", input: "~/mirror/replica", want: filepath.Join(home, "mirror", "replica")},
		{name: "unclean absolute", input: filepath.Join(string(filepath.Separator), "tmp", "a", "..", "b"), want: filepath.Join(string(filepath.Separator), "tmp", "b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolvePath(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestResolvePath_RelativeBecomesAbsolute(t *testing.T) {
	result, err := ResolvePath("./replica")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(result))
	assert.Equal(t, "replica", filepath.Base(result))
}

func TestIsWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "source")

	assert.True(t, IsWithin(root, root))
	assert.True(t, IsWithin(root, filepath.Join(root, "sub", "file.txt")))
	assert.False(t, IsWithin(root, filepath.Join(string(filepath.Separator), "data", "source-replica")))
	assert.False(t, IsWithin(root, filepath.Join(string(filepath.Separator), "data")))
	assert.False(t, IsWithin(filepath.Join(root, "sub"), root))
}

func TestEnsureDirAndExists(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "a", "b")
	file := filepath.Join(dir, "f.txt")

	assert.False(t, DirExists(dir))
	require.NoError(t, EnsureParent(file))
	assert.True(t, DirExists(dir))
	require.NoError(t, EnsureDir(dir), "existing dir is fine")

	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, DirExists(file), "files are not directories")
}
