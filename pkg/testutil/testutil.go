package testutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revdiff/revdiff/pkg/types"
)

// MustMkdirAll creates a directory tree or fails the test
func MustMkdirAll(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(path, 0755), "mkdir %s", path)
}

// MustWriteFile writes a file or fails the test
func MustWriteFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755), "mkdir parent of %s", path)
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644), "write %s", path)
}

// Exists reports whether a path exists on the filesystem
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// IsDir reports whether a path exists and is a directory
func IsDir(fsys types.FS, path string) bool {
	info, err := fsys.Lstat(path)
	return err == nil && info.IsDir()
}

// DirNames returns the sorted names of a directory's entries,
// failing the test on error
func DirNames(t *testing.T, fsys types.FS, path string) []string {
	t.Helper()
	entries, err := fsys.ReadDir(path)
	require.NoError(t, err, "readdir %s", path)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Mode returns the file mode of a path, failing the test on error
func Mode(t *testing.T, fsys types.FS, path string) fs.FileMode {
	t.Helper()
	info, err := fsys.Lstat(path)
	require.NoError(t, err, "lstat %s", path)
	return info.Mode()
}
