package locations

import (
	"io/fs"
	"path/filepath"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/types"
)

// localLocation implements Location for paths on the local endpoint
type localLocation struct {
	fs   types.FS
	path string
}

// NewLocal creates a Location for a path on the local endpoint
func NewLocal(fsys types.FS, path string) Location {
	return &localLocation{fs: fsys, path: filepath.Clean(path)}
}

func (l *localLocation) Path() string {
	return l.path
}

func (l *localLocation) String() string {
	return l.path
}

func (l *localLocation) Append(parts ...string) Location {
	elems := append([]string{l.path}, parts...)
	return &localLocation{fs: l.fs, path: filepath.Join(elems...)}
}

func (l *localLocation) Lstat() (fs.FileInfo, error) {
	return l.fs.Lstat(l.path)
}

func (l *localLocation) Exists() bool {
	_, err := l.fs.Lstat(l.path)
	return err == nil
}

func (l *localLocation) IsDir() bool {
	info, err := l.fs.Lstat(l.path)
	return err == nil && info.IsDir()
}

func (l *localLocation) ListDir() ([]fs.DirEntry, error) {
	return l.fs.ReadDir(l.path)
}

func (l *localLocation) Mkdir() error {
	return l.fs.Mkdir(l.path, 0755)
}

func (l *localLocation) MkdirAll() error {
	return l.fs.MkdirAll(l.path, 0755)
}

func (l *localLocation) Chmod(mode fs.FileMode) error {
	return l.fs.Chmod(l.path, mode)
}

func (l *localLocation) Delete() error {
	return l.fs.RemoveAll(l.path)
}

func (l *localLocation) DeleteDirNoFiles() error {
	if err := l.checkNoFiles(l.path); err != nil {
		return err
	}
	return l.fs.RemoveAll(l.path)
}

// checkNoFiles walks the tree under path and fails on the first
// non-directory entry
func (l *localLocation) checkNoFiles(path string) error {
	entries, err := l.fs.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if !entry.IsDir() {
			return errors.Newf(errors.ErrDirHasFiles,
				"directory %s contains files", l.path).WithDetail("file", child)
		}
		if err := l.checkNoFiles(child); err != nil {
			return err
		}
	}
	return nil
}

func (l *localLocation) ReadFile() ([]byte, error) {
	return l.fs.ReadFile(l.path)
}

func (l *localLocation) WriteFile(data []byte, perm fs.FileMode) error {
	return l.fs.WriteFile(l.path, data, perm)
}
