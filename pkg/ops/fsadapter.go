package ops

import (
	"bytes"
	"io/fs"
	"path/filepath"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/types"
)

// fsAdapter exposes a types.FS as the filesystem interface synthfs
// executes against. synthfs addresses files with rootless paths, so the
// adapter re-roots every name at "/".
type fsAdapter struct {
	fs types.FS
}

func (a *fsAdapter) abs(name string) string {
	return filepath.Join("/", name)
}

func (a *fsAdapter) Open(name string) (fs.File, error) {
	path := a.abs(name)
	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	var content []byte
	if !info.IsDir() {
		content, err = a.fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	return &memFile{info: info, reader: bytes.NewReader(content)}, nil
}

func (a *fsAdapter) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(a.abs(name))
}

func (a *fsAdapter) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return a.fs.WriteFile(a.abs(name), data, perm)
}

func (a *fsAdapter) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(a.abs(path), perm)
}

func (a *fsAdapter) Remove(name string) error {
	return a.fs.Remove(a.abs(name))
}

func (a *fsAdapter) RemoveAll(name string) error {
	return a.fs.RemoveAll(a.abs(name))
}

func (a *fsAdapter) Rename(oldpath, newpath string) error {
	return a.fs.Rename(a.abs(oldpath), a.abs(newpath))
}

func (a *fsAdapter) Symlink(oldname, newname string) error {
	return errors.New(errors.ErrNotImplemented, "symlinks are not part of planned operations")
}

func (a *fsAdapter) Readlink(name string) (string, error) {
	return "", errors.New(errors.ErrNotImplemented, "symlinks are not part of planned operations")
}

// memFile is the fs.File returned by Open
type memFile struct {
	info   fs.FileInfo
	reader *bytes.Reader
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *memFile) Close() error               { return nil }
