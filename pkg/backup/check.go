package backup

import (
	"strings"
	"time"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/repo"
)

// Verdict is the preflight result: one bit per failed check category,
// OR-combined. Zero means every check passed.
type Verdict uint

const (
	// VerdictSourceMissing is set when the source does not exist
	VerdictSourceMissing Verdict = 1 << iota

	// VerdictSourceNotDir is set when the source is not a directory
	VerdictSourceNotDir

	// VerdictTargetNotDir is set when the target exists as a
	// non-directory and force is not given
	VerdictTargetNotDir

	// VerdictTargetOccupied is set when the target is a non-empty
	// directory without a data directory and force is not given
	VerdictTargetOccupied

	// VerdictMirrorTime is set when the previous mirror time is not
	// strictly in the past; force never overrides this
	VerdictMirrorTime
)

// OK reports whether every check passed
func (v Verdict) OK() bool { return v == 0 }

// String renders the failed check names, comma separated
func (v Verdict) String() string {
	if v == 0 {
		return "ok"
	}
	names := []string{}
	for _, b := range []struct {
		bit  Verdict
		name string
	}{
		{VerdictSourceMissing, "source-missing"},
		{VerdictSourceNotDir, "source-not-directory"},
		{VerdictTargetNotDir, "target-not-directory"},
		{VerdictTargetOccupied, "target-occupied"},
		{VerdictMirrorTime, "mirror-time-not-past"},
	} {
		if v&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	return strings.Join(names, ",")
}

// Err converts a failing verdict into one coded error naming every
// failed check. A passing verdict yields nil.
func (v Verdict) Err() error {
	if v.OK() {
		return nil
	}
	code := errors.ErrSourceMissing
	switch {
	case v&VerdictSourceMissing != 0:
		code = errors.ErrSourceMissing
	case v&VerdictSourceNotDir != 0:
		code = errors.ErrSourceNotDir
	case v&VerdictTargetNotDir != 0:
		code = errors.ErrTargetNotDir
	case v&VerdictTargetOccupied != 0:
		code = errors.ErrTargetOccupied
	case v&VerdictMirrorTime != 0:
		code = errors.ErrMirrorTime
	}
	return errors.Newf(code, "preflight failed: %s", v)
}

// Check runs every preflight check and accumulates the failures into
// one verdict, so the operator sees all blocking problems from a
// single pass. It never mutates the source or the target.
func (s *Session) Check() (Verdict, error) {
	var v Verdict

	switch {
	case !s.Source.Exists():
		s.logger.Error().Str("source", s.Source.Path()).Msg("source does not exist")
		v |= VerdictSourceMissing
	case !s.Source.IsDir():
		s.logger.Error().Str("source", s.Source.Path()).Msg("source is not a directory")
		v |= VerdictSourceNotDir
	}

	state, err := s.Target.Classify()
	if err != nil {
		return v, errors.Wrap(err, errors.ErrInternal, "cannot classify target")
	}
	switch state {
	case repo.StateNotDirectory:
		if s.Force {
			s.logger.Warn().Str("target", s.Target.Base.Path()).
				Msg("target is not a directory; force will replace it")
		} else {
			s.logger.Error().Str("target", s.Target.Base.Path()).
				Msg("target exists and is not a directory")
			v |= VerdictTargetNotDir
		}
	case repo.StateOccupiedNonRepo:
		if s.Force {
			s.logger.Warn().Str("target", s.Target.Base.Path()).
				Msg("target is an occupied non-repository directory; force will back up into it")
		} else {
			s.logger.Error().Str("target", s.Target.Base.Path()).
				Msg("target is a non-empty directory without a backup repository")
			v |= VerdictTargetOccupied
		}
	}

	last, err := s.Target.LastMirrorTime()
	if err != nil {
		return v, errors.Wrap(err, errors.ErrInternal, "cannot read previous mirror time")
	}
	// compare at the granularity the session will actually run with:
	// marker names carry whole seconds, so a clock sub-second past the
	// previous marker still collides with it
	if !last.IsZero() && !last.Before(s.Now().Truncate(time.Second)) {
		// two sessions inside one timestamp granule would leave
		// indistinguishable increments
		s.logger.Error().Time("previous", last).
			Msg("previous mirror time is not strictly in the past")
		v |= VerdictMirrorTime
	}

	if v.OK() {
		s.logger.Debug().Msg("preflight passed")
	}
	return v, nil
}
