package backup

import (
	"time"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/logging"
)

// Run dispatches the mirror operation. The previous mirror time picks
// the branch: absent means first backup (full mirror, then the
// completion marker), present means incremental (marker first, then
// mirror plus increments, then the stale marker is cleared). A marker
// left behind by a failure is evidence for the next invocation, not
// cleaned up here.
func (s *Session) Run() error {
	done := logging.LogOperationStart(s.logger, "run")
	defer done()

	if err := s.checkDestination(); err != nil {
		return err
	}

	// marker names carry second precision; keep the session time at
	// the same granularity so it round-trips
	now := s.Now().Truncate(time.Second)

	prev, err := s.Mirror.MirrorTime(s.Target)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot read previous mirror time")
	}

	if prev.IsZero() {
		if err := s.runFull(now); err != nil {
			return err
		}
	} else {
		if err := s.runIncremental(prev, now); err != nil {
			return err
		}
	}

	return s.Mirror.CloseStatistics(s.Target, now)
}

// checkDestination refuses a repository cut short mid-mirror by an
// earlier, already-valid backup. That state needs regression, which is
// a separate operation.
func (s *Session) checkDestination() error {
	times, err := s.Target.MirrorTimes()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot read mirror markers")
	}
	if len(times) >= 2 {
		s.logger.Error().Int("markers", len(times)).
			Msg("repository was interrupted mid-mirror and needs regression")
		return errors.New(errors.ErrNeedsRegress,
			"target was interrupted during a previous backup; regress it before backing up again")
	}
	return nil
}

func (s *Session) runFull(now time.Time) error {
	s.logger.Info().Time("session", now).Msg("no previous backup found, running full mirror")
	if err := s.Mirror.FullMirror(s.Source, s.Target, now); err != nil {
		return err
	}
	// the marker records completion of the first mirror
	return s.Mirror.TouchCurrentMirror(s.Target, now)
}

func (s *Session) runIncremental(prev, now time.Time) error {
	s.logger.Info().Time("session", now).Time("previous", prev).
		Msg("previous backup found, running incremental mirror")
	// bracket the mirror: the new marker goes down first, so an
	// interruption leaves both markers for the next invocation to see
	if err := s.Mirror.TouchCurrentMirror(s.Target, now); err != nil {
		return err
	}
	if err := s.Mirror.IncrementalMirror(s.Source, s.Target, prev, now); err != nil {
		return err
	}
	return s.Mirror.RemoveCurrentMirror(s.Target, now)
}
