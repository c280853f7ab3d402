// Package locations models filesystem paths that may live on different
// endpoints. A Location routes every operation to the endpoint that
// owns it; callers never inspect the endpoint kind at runtime. The
// implementation for an endpoint is selected once, when the location is
// connected.
package locations

import "io/fs"

// Location is a reference to a filesystem path, possibly on a remote
// endpoint. Locations on different endpoints are structurally
// identical; all operations are routed to the owning endpoint.
type Location interface {
	// Path returns the path on the owning endpoint
	Path() string

	// Append derives a sub-location with the given path elements
	Append(parts ...string) Location

	// Lstat returns info about the path without following symlinks
	Lstat() (fs.FileInfo, error)

	// Exists reports whether the path exists
	Exists() bool

	// IsDir reports whether the path exists and is a directory
	IsDir() bool

	// ListDir lists the children of the path
	ListDir() ([]fs.DirEntry, error)

	// Mkdir creates the directory; the parent must exist
	Mkdir() error

	// MkdirAll creates the directory and any missing parents
	MkdirAll() error

	// Chmod sets the permissions of the path
	Chmod(mode fs.FileMode) error

	// Delete removes the path recursively
	Delete() error

	// DeleteDirNoFiles removes the directory tree only if it contains
	// no regular files. A tree holding files fails with ErrDirHasFiles
	// and is left untouched.
	DeleteDirNoFiles() error

	// ReadFile returns the content of the file at the path
	ReadFile() ([]byte, error)

	// WriteFile writes content to the file at the path
	WriteFile(data []byte, perm fs.FileMode) error
}
