package repo

// State classifies a target repository. It is computed each run, never
// stored.
type State string

const (
	// StateAbsent means the target location does not exist
	StateAbsent State = "absent"

	// StateNotDirectory means the target exists but is not a directory
	StateNotDirectory State = "not-directory"

	// StateEmpty means the target is an existing empty directory
	StateEmpty State = "empty"

	// StateOccupiedNonRepo means the target is a non-empty directory
	// without a data directory; it could be unrelated data the operator
	// does not want overwritten
	StateOccupiedNonRepo State = "occupied-non-repo"

	// StateFailedInitial means the data directory was left behind by a
	// first backup that never completed
	StateFailedInitial State = "failed-initial"

	// StateInterrupted means a later backup was cut short mid-mirror:
	// more than one current-mirror marker is present
	StateInterrupted State = "interrupted"

	// StateValid means the data directory carries a completion marker
	// from a prior successful backup
	StateValid State = "valid"

	// StateDamaged means the data directory carries no completion
	// marker but too many artifacts for the failed-initial heuristic
	StateDamaged State = "damaged"
)

// Classify inspects the repository and returns its state. It never
// mutates anything.
func (r *Repository) Classify() (State, error) {
	if !r.Base.Exists() {
		return StateAbsent, nil
	}
	if !r.Base.IsDir() {
		return StateNotDirectory, nil
	}
	if !r.DataDir.Exists() {
		entries, err := r.Base.ListDir()
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return StateEmpty, nil
		}
		return StateOccupiedNonRepo, nil
	}

	markers, errorLogs, metadataMirrors, err := r.countArtifacts()
	if err != nil {
		return "", err
	}
	switch {
	case markers >= 2:
		return StateInterrupted, nil
	case markers == 1:
		return StateValid, nil
	case errorLogs <= 1 && metadataMirrors <= 1:
		return StateFailedInitial, nil
	default:
		return StateDamaged, nil
	}
}

// IsFailedInitial reports whether the data directory looks like the
// leavings of a first backup that never finished: no current-mirror
// marker, at most one error log and at most one metadata mirror. Two
// completed backups would leave at least a marker and typically more
// than one metadata artifact.
func (r *Repository) IsFailedInitial() (bool, error) {
	if !r.DataDir.Exists() {
		return false, nil
	}
	markers, errorLogs, metadataMirrors, err := r.countArtifacts()
	if err != nil {
		return false, err
	}
	return markers == 0 && errorLogs <= 1 && metadataMirrors <= 1, nil
}

func (r *Repository) countArtifacts() (markers, errorLogs, metadataMirrors int, err error) {
	entries, err := r.DataDir.ListDir()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case HasPrefix(name, CurrentMirrorPrefix):
			markers++
		case HasPrefix(name, ErrorLogPrefix):
			errorLogs++
		case HasPrefix(name, MirrorMetadataPrefix):
			metadataMirrors++
		}
	}
	return markers, errorLogs, metadataMirrors, nil
}
