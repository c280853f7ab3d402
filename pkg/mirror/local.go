package mirror

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/logging"
	"github.com/revdiff/revdiff/pkg/ops"
	"github.com/revdiff/revdiff/pkg/repo"
	"github.com/revdiff/revdiff/pkg/selection"
	"github.com/revdiff/revdiff/pkg/types"
)

// Increment name suffixes. An increment records the state a path held
// at the previous mirror time: a snapshot carries the displaced
// content, a missing marker records that the path did not exist, and a
// dir marker records a directory that has since been removed.
const (
	suffixSnapshot = "snapshot"
	suffixMissing  = "missing"
	suffixDir      = "dir"
)

const markerMode = 0o600

// Local mirrors between locations reachable through the local
// filesystem. Content moves through planned operations executed in
// order; markers and artifacts are written directly since they bracket
// the operation pipeline rather than run inside it.
type Local struct {
	logger zerolog.Logger
	exec   *ops.Executor
	rules  *selection.Rules
	stats  *Stats
	dryRun bool
}

// NewLocal builds a local mirrorer. A nil rule list selects everything.
func NewLocal(fsys types.FS, rules *selection.Rules, dryRun bool) *Local {
	return &Local{
		logger: logging.GetLogger("mirror"),
		exec:   ops.NewExecutor(fsys, dryRun),
		rules:  rules,
		dryRun: dryRun,
	}
}

// Stats returns the counters collected by the last mirror run, nil
// before any mirror ran
func (l *Local) Stats() *Stats { return l.stats }

// FullMirror copies the selected source tree into the target base. The
// data directory inside the target is left alone.
func (l *Local) FullMirror(source locations.Location, target *repo.Repository, now time.Time) error {
	l.stats = NewStats(now)
	p := &planner{rules: l.rules, stats: l.stats}
	if err := p.planCreate(source, target.Base, ""); err != nil {
		return errors.Wrap(err, errors.ErrMirrorFailed, "cannot plan full mirror")
	}

	l.logger.Info().Int("operations", len(p.ops)).
		Str("source", source.Path()).Str("target", target.Base.Path()).
		Msg("running full mirror")

	if err := l.exec.Execute(p.ops); err != nil {
		return errors.Wrap(err, errors.ErrMirrorFailed, "full mirror failed")
	}
	return l.writeMetadata(target, now, p.metadata)
}

// IncrementalMirror brings the target mirror in line with the source.
// Displaced target state is recorded under the increments directory,
// timestamped with the previous mirror time, before the mirror is
// touched.
func (l *Local) IncrementalMirror(source locations.Location, target *repo.Repository, prev, now time.Time) error {
	l.stats = NewStats(now)
	p := &planner{
		rules:   l.rules,
		stats:   l.stats,
		incr:    target.Increments,
		prev:    prev,
		ensured: map[string]bool{},
	}
	if err := p.planDiff(source, target.Base, "", true); err != nil {
		return errors.Wrap(err, errors.ErrMirrorFailed, "cannot plan incremental mirror")
	}

	l.logger.Info().Int("operations", len(p.ops)).
		Time("previous", prev).
		Str("source", source.Path()).Str("target", target.Base.Path()).
		Msg("running incremental mirror")

	if err := l.exec.Execute(p.ops); err != nil {
		return errors.Wrap(err, errors.ErrMirrorFailed, "incremental mirror failed")
	}
	return l.writeMetadata(target, now, p.metadata)
}

// TouchCurrentMirror writes the current-mirror marker for time t. The
// marker body carries the writing process id.
func (l *Local) TouchCurrentMirror(target *repo.Repository, t time.Time) error {
	name := repo.MarkerName(repo.CurrentMirrorPrefix, t, "data")
	if l.dryRun {
		l.logger.Debug().Str("marker", name).Msg("dry run: would touch current-mirror marker")
		return nil
	}
	body := fmt.Sprintf("PID %d\n", os.Getpid())
	if err := target.DataDir.Append(name).WriteFile([]byte(body), markerMode); err != nil {
		return errors.Wrapf(err, errors.ErrMarkerWrite, "cannot write marker %s", name)
	}
	l.logger.Debug().Str("marker", name).Msg("touched current-mirror marker")
	return nil
}

// RemoveCurrentMirror deletes every current-mirror marker recording a
// time other than keep. Removing the stale markers commits the session.
func (l *Local) RemoveCurrentMirror(target *repo.Repository, keep time.Time) error {
	entries, err := target.DataDir.ListDir()
	if err != nil {
		return errors.Wrap(err, errors.ErrMarkerWrite, "cannot list data directory")
	}
	for _, entry := range entries {
		t, ok := repo.ParseMarkerTime(entry.Name(), repo.CurrentMirrorPrefix)
		if !ok || t.Equal(keep) {
			continue
		}
		if l.dryRun {
			l.logger.Debug().Str("marker", entry.Name()).Msg("dry run: would remove current-mirror marker")
			continue
		}
		if err := target.DataDir.Append(entry.Name()).Delete(); err != nil {
			return errors.Wrapf(err, errors.ErrMarkerWrite, "cannot remove marker %s", entry.Name())
		}
		l.logger.Debug().Str("marker", entry.Name()).Msg("removed current-mirror marker")
	}
	return nil
}

// CloseStatistics writes the session statistics artifact for time t
func (l *Local) CloseStatistics(target *repo.Repository, t time.Time) error {
	stats := l.stats
	if stats == nil {
		stats = NewStats(t)
	}
	name := repo.MarkerName(repo.SessionStatsPrefix, t, "data")
	if l.dryRun {
		l.logger.Debug().Str("artifact", name).Msg("dry run: would write session statistics")
		return nil
	}
	if err := target.DataDir.Append(name).WriteFile([]byte(stats.Render(t)), markerMode); err != nil {
		return errors.Wrapf(err, errors.ErrStatsWrite, "cannot write statistics %s", name)
	}
	return nil
}

// MirrorTime returns the newest current-mirror marker time
func (l *Local) MirrorTime(target *repo.Repository) (time.Time, error) {
	return target.LastMirrorTime()
}

// writeMetadata records the mirrored file listing for time now
func (l *Local) writeMetadata(target *repo.Repository, now time.Time, entries []metadataEntry) error {
	name := repo.MarkerName(repo.MirrorMetadataPrefix, now, "snapshot")
	if l.dryRun {
		l.logger.Debug().Str("artifact", name).Msg("dry run: would write mirror metadata")
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "File %s %d\n", e.rel, e.size)
	}
	if err := target.DataDir.Append(name).WriteFile(buf.Bytes(), markerMode); err != nil {
		return errors.Wrapf(err, errors.ErrMarkerWrite, "cannot write metadata %s", name)
	}
	return nil
}

type metadataEntry struct {
	rel  string
	size int64
}

// planner turns a source/target comparison into an ordered operation
// list. For each path, increments that read displaced target state are
// planned before the mutation that displaces it; the executor runs the
// list in order.
type planner struct {
	rules    *selection.Rules
	stats    *Stats
	incr     locations.Location
	prev     time.Time
	ensured  map[string]bool
	ops      []types.Operation
	metadata []metadataEntry
}

// planCreate plans a fresh copy of src into dst. rel is the path of dst
// relative to the mirror root, "" at the root.
func (p *planner) planCreate(src, dst locations.Location, rel string) error {
	entries, err := src.ListDir()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		if !p.rules.Selected(childRel) {
			continue
		}
		childSrc := src.Append(entry.Name())
		childDst := dst.Append(entry.Name())
		if entry.IsDir() {
			if !childDst.IsDir() {
				p.add(types.Operation{
					Type:        types.OperationCreateDir,
					Target:      childDst.Path(),
					Description: fmt.Sprintf("create directory %s", childRel),
				})
			}
			if err := p.planCreate(childSrc, childDst, childRel); err != nil {
				return err
			}
			continue
		}
		info, err := childSrc.Lstat()
		if err != nil {
			return err
		}
		p.add(types.Operation{
			Type:        types.OperationCopyFile,
			Source:      childSrc.Path(),
			Target:      childDst.Path(),
			Description: fmt.Sprintf("copy %s", childRel),
		})
		p.stats.SourceFiles++
		p.stats.SourceBytes += info.Size()
		p.stats.NewFiles++
		p.metadata = append(p.metadata, metadataEntry{rel: childRel, size: info.Size()})
	}
	return nil
}

// planDiff compares src against the existing mirror at dst and plans
// the operations that reconcile them. root marks the mirror root, where
// the data directory is skipped on the target side.
func (p *planner) planDiff(src, dst locations.Location, rel string, root bool) error {
	srcEntries, err := listNames(src)
	if err != nil {
		return err
	}
	dstEntries, err := listNames(dst)
	if err != nil {
		return err
	}
	if root {
		delete(dstEntries, repo.DataDirName)
	}

	for _, name := range unionNames(srcEntries, dstEntries) {
		childRel := path.Join(rel, name)
		if !p.rules.Selected(childRel) {
			continue
		}
		inSrc, inDst := srcEntries[name], dstEntries[name]
		childSrc := src.Append(name)
		childDst := dst.Append(name)

		switch {
		case inSrc != nil && inDst == nil:
			if err := p.planNew(childSrc, childDst, childRel, inSrc.IsDir()); err != nil {
				return err
			}
		case inSrc == nil && inDst != nil:
			if err := p.planDeleted(childDst, childRel, inDst.IsDir()); err != nil {
				return err
			}
		case inSrc.IsDir() && inDst.IsDir():
			if err := p.planDiff(childSrc, childDst, childRel, false); err != nil {
				return err
			}
		case inSrc.IsDir() != inDst.IsDir():
			// type changed between sessions: displace the old entry,
			// then lay down the new one
			if err := p.planDeleted(childDst, childRel, inDst.IsDir()); err != nil {
				return err
			}
			if err := p.planNew(childSrc, childDst, childRel, inSrc.IsDir()); err != nil {
				return err
			}
		default:
			if err := p.planChanged(childSrc, childDst, childRel); err != nil {
				return err
			}
		}
	}
	return nil
}

// planNew plans a path present in the source but absent from the
// mirror: a missing marker under increments, then the copy.
func (p *planner) planNew(src, dst locations.Location, rel string, isDir bool) error {
	if err := p.planIncrement(rel, suffixMissing, nil); err != nil {
		return err
	}
	if isDir {
		p.add(types.Operation{
			Type:        types.OperationCreateDir,
			Target:      dst.Path(),
			Description: fmt.Sprintf("create directory %s", rel),
		})
		return p.planCreate(src, dst, rel)
	}
	info, err := src.Lstat()
	if err != nil {
		return err
	}
	p.add(types.Operation{
		Type:        types.OperationCopyFile,
		Source:      src.Path(),
		Target:      dst.Path(),
		Description: fmt.Sprintf("copy new %s", rel),
	})
	p.stats.SourceFiles++
	p.stats.SourceBytes += info.Size()
	p.stats.NewFiles++
	p.metadata = append(p.metadata, metadataEntry{rel: rel, size: info.Size()})
	return nil
}

// planDeleted plans a path present in the mirror but gone from the
// source: record what it held, then remove it.
func (p *planner) planDeleted(dst locations.Location, rel string, isDir bool) error {
	if isDir {
		if err := p.snapshotTree(dst, rel); err != nil {
			return err
		}
		if err := p.planIncrement(rel, suffixDir, nil); err != nil {
			return err
		}
		p.add(types.Operation{
			Type:        types.OperationDeleteTree,
			Target:      dst.Path(),
			Description: fmt.Sprintf("remove deleted directory %s", rel),
		})
		p.stats.DeletedFiles++
		return nil
	}
	if err := p.planIncrement(rel, suffixSnapshot, dst); err != nil {
		return err
	}
	p.add(types.Operation{
		Type:        types.OperationDeleteFile,
		Target:      dst.Path(),
		Description: fmt.Sprintf("remove deleted %s", rel),
	})
	p.stats.DeletedFiles++
	return nil
}

// planChanged plans a file present on both sides. Unchanged files yield
// a skipped operation so the run report can account for them.
func (p *planner) planChanged(src, dst locations.Location, rel string) error {
	info, err := src.Lstat()
	if err != nil {
		return err
	}
	p.stats.SourceFiles++
	p.stats.SourceBytes += info.Size()
	p.metadata = append(p.metadata, metadataEntry{rel: rel, size: info.Size()})

	same, err := sameContent(src, dst, info.Size())
	if err != nil {
		return err
	}
	if same {
		p.add(types.Operation{
			Type:        types.OperationCopyFile,
			Source:      src.Path(),
			Target:      dst.Path(),
			Description: fmt.Sprintf("unchanged %s", rel),
			Status:      types.StatusSkipped,
		})
		return nil
	}
	if err := p.planIncrement(rel, suffixSnapshot, dst); err != nil {
		return err
	}
	// displace before copying so no operation targets an existing path
	p.add(types.Operation{
		Type:        types.OperationDeleteFile,
		Target:      dst.Path(),
		Description: fmt.Sprintf("displace %s", rel),
	})
	p.add(types.Operation{
		Type:        types.OperationCopyFile,
		Source:      src.Path(),
		Target:      dst.Path(),
		Description: fmt.Sprintf("update %s", rel),
	})
	p.stats.ChangedFiles++
	return nil
}

// planIncrement plans one increment artifact for rel. A nil from writes
// an empty marker; otherwise the content at from is copied.
func (p *planner) planIncrement(rel, suffix string, from locations.Location) error {
	p.ensureIncrDir(path.Dir(rel))
	name := repo.MarkerName(path.Base(rel), p.prev, suffix)
	incrTarget := p.incr.Append(path.Dir(rel), name)
	op := types.Operation{
		Target:      incrTarget.Path(),
		Description: fmt.Sprintf("record increment %s", path.Join(path.Dir(rel), name)),
	}
	if from == nil {
		op.Type = types.OperationWriteFile
	} else {
		op.Type = types.OperationCopyFile
		op.Source = from.Path()
	}
	p.add(op)
	p.stats.Increments++
	return nil
}

// ensureIncrDir plans creation of the increments subdirectory for dir
// and its ancestors, once each per session
func (p *planner) ensureIncrDir(dir string) {
	if dir == "." {
		dir = ""
	}
	if p.ensured[dir] {
		return
	}
	if dir != "" {
		p.ensureIncrDir(path.Dir(dir))
	}
	p.ensured[dir] = true
	target := p.incr
	if dir != "" {
		target = p.incr.Append(dir)
	}
	if target.IsDir() {
		return
	}
	p.add(types.Operation{
		Type:        types.OperationCreateDir,
		Target:      target.Path(),
		Description: fmt.Sprintf("create increments directory %s", path.Join(repo.IncrementsDirName, dir)),
	})
}

// snapshotTree records every file under a mirror directory that is
// about to be removed
func (p *planner) snapshotTree(dst locations.Location, rel string) error {
	entries, err := dst.ListDir()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		child := dst.Append(entry.Name())
		if entry.IsDir() {
			if err := p.snapshotTree(child, childRel); err != nil {
				return err
			}
			if err := p.planIncrement(childRel, suffixDir, nil); err != nil {
				return err
			}
			continue
		}
		if err := p.planIncrement(childRel, suffixSnapshot, child); err != nil {
			return err
		}
		p.stats.DeletedFiles++
	}
	return nil
}

func (p *planner) add(op types.Operation) {
	if op.Status == "" {
		op.Status = types.StatusReady
	}
	p.ops = append(p.ops, op)
}

func listNames(loc locations.Location) (map[string]fs.FileInfo, error) {
	entries, err := loc.ListDir()
	if err != nil {
		return nil, err
	}
	names := make(map[string]fs.FileInfo, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		names[entry.Name()] = info
	}
	return names, nil
}

func unionNames(a, b map[string]fs.FileInfo) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var names []string
	for name := range a {
		seen[name] = true
		names = append(names, name)
	}
	for name := range b {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sameContent(a, b locations.Location, sizeA int64) (bool, error) {
	infoB, err := b.Lstat()
	if err != nil {
		return false, err
	}
	if sizeA != infoB.Size() {
		return false, nil
	}
	dataA, err := a.ReadFile()
	if err != nil {
		return false, err
	}
	dataB, err := b.ReadFile()
	if err != nil {
		return false, err
	}
	return bytes.Equal(dataA, dataB), nil
}
