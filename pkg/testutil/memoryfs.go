package testutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage.
// It supports per-path error injection so tests can exercise
// filesystem failure paths deterministically.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*fileNode

	// Error injection: the injected error is returned for any
	// operation touching the given path.
	errorPaths map[string]error

	writeCount int
}

// fileNode represents a file or directory in memory
type fileNode struct {
	name    string
	mode    fs.FileMode
	modTime time.Time
	content []byte
	isDir   bool
}

// NewMemoryFS creates a new in-memory filesystem with a root directory
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: map[string]*fileNode{
			"/": {name: "/", mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// InjectError makes every operation on path fail with err
func (m *MemoryFS) InjectError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorPaths[filepath.Clean(path)] = err
}

// WriteCount returns the number of mutating calls made so far
func (m *MemoryFS) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writeCount
}

func (m *MemoryFS) checkInjected(path string) error {
	if err, ok := m.errorPaths[filepath.Clean(path)]; ok {
		return err
	}
	return nil
}

func (m *MemoryFS) getNode(path string) (*fileNode, error) {
	path = filepath.Clean(path)
	if err := m.checkInjected(path); err != nil {
		return nil, err
	}
	node, exists := m.files[path]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return node, nil
}

// Stat returns file info
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(filepath.Clean(name))}, nil
}

// Lstat behaves like Stat; MemoryFS has no symlinks
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	return m.Stat(name)
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	node, err := m.getNode(name)
	if err != nil {
		return nil, err
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}

	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary.
// The parent directory must exist.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	path := filepath.Clean(name)

	if err := m.checkInjected(path); err != nil {
		return err
	}
	if err := m.requireDir(filepath.Dir(path)); err != nil {
		return err
	}
	if node, ok := m.files[path]; ok && node.isDir {
		return &fs.PathError{Op: "write", Path: name, Err: errors.New("is a directory")}
	}

	node := &fileNode{
		name:    filepath.Base(path),
		mode:    perm,
		modTime: time.Now(),
		content: append([]byte(nil), data...),
	}
	m.files[path] = node
	return nil
}

// Mkdir creates a single directory; the parent must exist
func (m *MemoryFS) Mkdir(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	path = filepath.Clean(path)

	if err := m.checkInjected(path); err != nil {
		return err
	}
	if _, exists := m.files[path]; exists {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	if err := m.requireDir(filepath.Dir(path)); err != nil {
		return err
	}

	m.files[path] = &fileNode{
		name:    filepath.Base(path),
		mode:    perm | fs.ModeDir,
		modTime: time.Now(),
		isDir:   true,
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	path = filepath.Clean(path)

	if err := m.checkInjected(path); err != nil {
		return err
	}
	if node, exists := m.files[path]; exists {
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: path, Err: errors.New("not a directory")}
		}
		return nil
	}

	current := "/"
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		current = filepath.Join(current, part)
		if node, exists := m.files[current]; exists {
			if !node.isDir {
				return &fs.PathError{Op: "mkdir", Path: current, Err: errors.New("not a directory")}
			}
			continue
		}
		m.files[current] = &fileNode{
			name:    part,
			mode:    perm | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}
	}
	return nil
}

// ReadDir lists the entries of a directory, sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	path := filepath.Clean(name)
	node, err := m.getNode(path)
	if err != nil {
		return nil, err
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
	}

	prefix := path
	if prefix != "/" {
		prefix += "/"
	}

	var entries []fs.DirEntry
	for p, child := range m.files {
		if p == path || !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if strings.Contains(rest, "/") {
			continue // not a direct child
		}
		entries = append(entries, &dirEntry{node: child, name: rest})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Remove removes a file or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	path := filepath.Clean(name)

	node, err := m.getNode(path)
	if err != nil {
		return err
	}
	if node.isDir {
		for p := range m.files {
			if strings.HasPrefix(p, path+"/") {
				return &fs.PathError{Op: "remove", Path: name, Err: errors.New("directory not empty")}
			}
		}
	}
	delete(m.files, path)
	return nil
}

// RemoveAll removes a file or directory recursively
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	path = filepath.Clean(path)

	if err := m.checkInjected(path); err != nil {
		return err
	}
	for p := range m.files {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(m.files, p)
		}
	}
	return nil
}

// Rename moves a file or directory tree
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	oldpath = filepath.Clean(oldpath)
	newpath = filepath.Clean(newpath)

	if err := m.checkInjected(oldpath); err != nil {
		return err
	}
	if err := m.checkInjected(newpath); err != nil {
		return err
	}
	if _, exists := m.files[oldpath]; !exists {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if err := m.requireDir(filepath.Dir(newpath)); err != nil {
		return err
	}

	moved := make(map[string]*fileNode)
	for p, node := range m.files {
		if p == oldpath || strings.HasPrefix(p, oldpath+"/") {
			moved[newpath+strings.TrimPrefix(p, oldpath)] = node
			delete(m.files, p)
		}
	}
	for p, node := range moved {
		node.name = filepath.Base(p)
		m.files[p] = node
	}
	return nil
}

// Chmod changes the mode of a file or directory
func (m *MemoryFS) Chmod(name string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeCount++
	node, err := m.getNode(name)
	if err != nil {
		return err
	}
	if node.isDir {
		node.mode = mode | fs.ModeDir
	} else {
		node.mode = mode
	}
	return nil
}

// requireDir fails unless path exists and is a directory
func (m *MemoryFS) requireDir(path string) error {
	node, exists := m.files[filepath.Clean(path)]
	if !exists {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if !node.isDir {
		return &fs.PathError{Op: "open", Path: path, Err: errors.New("not a directory")}
	}
	return nil
}

// fileInfo implements fs.FileInfo for MemoryFS nodes
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir }
func (fi *fileInfo) Sys() interface{}   { return nil }

// dirEntry implements fs.DirEntry for MemoryFS nodes
type dirEntry struct {
	node *fileNode
	name string
}

func (d *dirEntry) Name() string               { return d.name }
func (d *dirEntry) IsDir() bool                { return d.node.isDir }
func (d *dirEntry) Type() fs.FileMode          { return d.node.mode.Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return &fileInfo{node: d.node, name: d.name}, nil }
