package backup

import (
	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/logging"
)

// ownerOnly restricts a freshly created target to its owner
const ownerOnly = 0o700

// Setup creates or repairs the repository skeleton. Unlike Check it
// mutates and therefore stops at the first fatal error: once mutation
// has begun, continuing after a failure risks compounding partial
// state.
func (s *Session) Setup() error {
	done := logging.LogOperationStart(s.logger, "setup")
	defer done()

	if err := s.setupTarget(); err != nil {
		return err
	}
	if err := s.setupDataDir(); err != nil {
		return err
	}
	// always attempted, even when the data directory already existed: a
	// data directory without an increments directory is a pathological
	// state the initializer self-heals
	if !s.Target.Increments.Exists() {
		if err := s.Target.Increments.Mkdir(); err != nil {
			return errors.Wrap(err, errors.ErrIncrDirCreate, "cannot create increments directory")
		}
		s.logger.Debug().Str("path", s.Target.Increments.Path()).Msg("created increments directory")
	}
	return nil
}

// setupTarget makes the target an existing directory with owner-only
// permissions when it has to be created
func (s *Session) setupTarget() error {
	base := s.Target.Base
	if base.Exists() && !base.IsDir() {
		if !s.Force {
			return errors.Newf(errors.ErrTargetCreate,
				"target %s exists and is not a directory", base.Path())
		}
		s.logger.Warn().Str("target", base.Path()).Msg("replacing non-directory target")
		if err := base.Delete(); err != nil {
			return errors.Wrap(err, errors.ErrTargetCreate, "cannot remove non-directory target")
		}
	}
	if base.Exists() {
		return nil
	}

	var err error
	if s.CreateFullPath {
		err = base.MkdirAll()
	} else {
		err = base.Mkdir()
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrTargetCreate, "cannot create target %s", base.Path())
	}
	if err := base.Chmod(ownerOnly); err != nil {
		return errors.Wrap(err, errors.ErrTargetCreate, "cannot restrict target permissions")
	}
	s.logger.Info().Str("target", base.Path()).Msg("created target directory")
	return nil
}

// setupDataDir creates the data directory, or repairs the leavings of
// a first backup that never finished
func (s *Session) setupDataDir() error {
	if !s.Target.DataDir.Exists() {
		if err := s.Target.DataDir.Mkdir(); err != nil {
			return errors.Wrap(err, errors.ErrDataDirCreate, "cannot create data directory")
		}
		s.logger.Debug().Str("path", s.Target.DataDir.Path()).Msg("created data directory")
		return nil
	}

	failed, err := s.Target.IsFailedInitial()
	if err != nil {
		return errors.Wrap(err, errors.ErrDataDirCreate, "cannot inspect data directory")
	}
	if !failed {
		return nil
	}
	return s.repairFailedInitial()
}

// repairFailedInitial discards the leavings of a failed first backup
// so the next one starts clean. Delete-and-retry is chosen over
// regression: with no prior successful backup there is nothing to
// regress to.
//
// The repair declines, leaving the repository untouched, when the
// increments directory holds files (a non-trivial partial state that
// must not be blindly discarded) or when the endpoint forbids deleting
// resumable state. A declined repair is not an error; initialization
// continues to the increments-directory step. A repair that starts
// deleting and then fails aborts the whole initialization.
func (s *Session) repairFailedInitial() error {
	s.logger.Info().Str("target", s.Target.Base.Path()).
		Msg("found leavings of an unfinished first backup, repairing")

	if s.Target.Increments.Exists() {
		err := s.Target.Increments.DeleteDirNoFiles()
		switch {
		case errors.IsErrorCode(err, errors.ErrDirHasFiles):
			s.logger.Info().Str("path", s.Target.Increments.Path()).
				Msg("increments directory holds files, leaving repository untouched")
			return nil
		case errors.IsErrorCode(err, errors.ErrPermission):
			s.logger.Warn().Str("path", s.Target.Increments.Path()).
				Msg("endpoint refuses to delete resumable state, leaving repository untouched")
			return nil
		case err != nil:
			return errors.Wrap(err, errors.ErrRepairFailed, "cannot delete increments directory")
		}
	}

	entries, err := s.Target.DataDir.ListDir()
	if err != nil {
		return errors.Wrap(err, errors.ErrRepairFailed, "cannot list data directory")
	}
	for _, entry := range entries {
		// stray directories other than increments are left alone
		if entry.IsDir() {
			continue
		}
		if err := s.Target.DataDir.Append(entry.Name()).Delete(); err != nil {
			return errors.Wrapf(err, errors.ErrRepairFailed, "cannot delete %s", entry.Name())
		}
		s.logger.Debug().Str("artifact", entry.Name()).Msg("discarded failed-backup artifact")
	}
	return nil
}
