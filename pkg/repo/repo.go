// Package repo models the on-disk backup repository: its fixed layout,
// the timestamped marker artifacts inside the data directory, and the
// state classification computed from them at the start of every run.
package repo

import (
	"github.com/revdiff/revdiff/pkg/locations"
)

// Fixed repository layout, relative to the target location
const (
	// DataDirName is the repository data directory
	DataDirName = "rdiff-backup-data"

	// IncrementsDirName is the increments directory, nested inside the
	// data directory
	IncrementsDirName = "increments"
)

// Artifact name prefixes inside the data directory
const (
	// CurrentMirrorPrefix marks a mirror operation's start/completion
	CurrentMirrorPrefix = "current_mirror"

	// ErrorLogPrefix names per-session error logs
	ErrorLogPrefix = "error_log"

	// MirrorMetadataPrefix names metadata mirror snapshots
	MirrorMetadataPrefix = "mirror_metadata"

	// SessionStatsPrefix names per-session statistics artifacts
	SessionStatsPrefix = "session_statistics"
)

// Repository is a target location plus its two derived sub-locations.
// It is discovered from disk at the start of every invocation and never
// cached across invocations.
type Repository struct {
	// Base is the target location
	Base locations.Location

	// DataDir is the data directory inside the target
	DataDir locations.Location

	// Increments is the increments directory inside the data directory.
	// It only has meaning once the data directory exists.
	Increments locations.Location
}

// New derives a Repository from its target location
func New(base locations.Location) *Repository {
	dataDir := base.Append(DataDirName)
	return &Repository{
		Base:       base,
		DataDir:    dataDir,
		Increments: dataDir.Append(IncrementsDirName),
	}
}
