// Package backup is the backup-session lifecycle controller. One
// invocation moves through three strictly sequential phases: Check
// inspects the source and target without mutating anything, Setup
// creates or repairs the repository skeleton, and Run dispatches either
// the first full mirror or an incremental mirror with increment
// recording. Each later phase assumes the previous one succeeded.
package backup

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/logging"
	"github.com/revdiff/revdiff/pkg/mirror"
	"github.com/revdiff/revdiff/pkg/repo"
)

// Session carries one backup invocation's explicit state: locations,
// collaborators and options. Nothing is shared across invocations; the
// repository is rediscovered from disk every time.
type Session struct {
	// Source is the directory being backed up
	Source locations.Location

	// Target is the repository receiving the backup
	Target *repo.Repository

	// Mirror is the mirroring collaborator
	Mirror mirror.Mirrorer

	// Force overrides the occupied-target and non-directory-target
	// preflight failures
	Force bool

	// CreateFullPath creates missing target parents during Setup
	CreateFullPath bool

	// Now supplies the session clock; tests substitute a fixed one
	Now func() time.Time

	logger zerolog.Logger
}

// NewSession builds a session with the wall clock
func NewSession(source locations.Location, target *repo.Repository, m mirror.Mirrorer) *Session {
	return &Session{
		Source: source,
		Target: target,
		Mirror: m,
		Now:    time.Now,
		logger: logging.GetLogger("backup"),
	}
}
