// Package mirror implements the mirroring collaborator consumed by the
// backup session controller: full mirrors, incremental mirrors with
// increment recording, current-mirror markers and session statistics.
// The controller depends only on the Mirrorer interface; how content is
// carried across is this package's business.
package mirror

import (
	"time"

	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/repo"
)

// Mirrorer is the collaborator interface the session controller
// invokes. All methods are synchronous and may fail with filesystem or
// transport errors, which the controller surfaces rather than retries.
type Mirrorer interface {
	// FullMirror copies the source into the target as the first backup.
	// No increments are produced; there is nothing to diff against.
	FullMirror(source locations.Location, target *repo.Repository, now time.Time) error

	// IncrementalMirror brings the target mirror up to date with the
	// source, recording the displaced state as increments timestamped
	// with the previous mirror time.
	IncrementalMirror(source locations.Location, target *repo.Repository, prev, now time.Time) error

	// TouchCurrentMirror writes the current-mirror marker for time t
	TouchCurrentMirror(target *repo.Repository, t time.Time) error

	// RemoveCurrentMirror removes every current-mirror marker older
	// than keep, committing the mirror at keep
	RemoveCurrentMirror(target *repo.Repository, keep time.Time) error

	// CloseStatistics flushes session statistics with the completion
	// timestamp
	CloseStatistics(target *repo.Repository, t time.Time) error

	// MirrorTime returns the time recorded by the most recent completed
	// backup; the zero time means no completed backup exists yet
	MirrorTime(target *repo.Repository) (time.Time, error)
}
