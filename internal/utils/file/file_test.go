package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/utils/file"
)

func TestCopyDir(t *testing.T) {
	require := require.New(t)
	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "out")

	require.NoError(os.MkdirAll(filepath.Join(src, "a", "b"), 0755))
	require.NoError(os.WriteFile(filepath.Join(src, "top.txt"), []byte("top"), 0644))
	require.NoError(os.WriteFile(filepath.Join(src, "a", "b", "deep.txt"), []byte("deep"), 0644))

	require.NoError(file.CopyDir(src, dst))

	got, err := os.ReadFile(filepath.Join(dst, "top.txt"))
	require.NoError(err)
	assert.Equal(t, "top", string(got))
	got, err = os.ReadFile(filepath.Join(dst, "a", "b", "deep.txt"))
	require.NoError(err)
	assert.Equal(t, "deep", string(got))
}

func TestCopyMissingSource(t *testing.T) {
	err := file.Copy(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "dst"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files", "op1", "tool.exe")
	require.NoError(t, file.Write(path, []byte("MZ")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MZ", string(got))
}

func TestRemove(t *testing.T) {
	tests := map[string]struct {
		path func(t *testing.T) string
	}{
		"Removing an existing file should remove it.": {
			path: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "f")
				require.NoError(t, os.WriteFile(p, nil, 0644))
				return p
			},
		},
		"Removing a missing file should not fail.": {
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
		},
		"Removing an empty path should not fail.": {
			path: func(t *testing.T) string { return "" },
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			p := test.path(t)
			require.NoError(t, file.Remove(p))
			if p != "" {
				assert.NoFileExists(t, p)
			}
		})
	}
}
