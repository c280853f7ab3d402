package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/repo"
	"github.com/revdiff/revdiff/pkg/selection"
	"github.com/revdiff/revdiff/pkg/testutil"
)

var (
	prevTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sessTime = prevTime.Add(time.Hour)
)

// newTestRepo builds a source tree root and an initialized target
// repository on a fresh in-memory filesystem.
func newTestRepo(t *testing.T, fsys *testutil.MemoryFS) (locations.Location, *repo.Repository) {
	t.Helper()
	testutil.MustMkdirAll(t, fsys, "/src")
	testutil.MustMkdirAll(t, fsys, "/dst/rdiff-backup-data/increments")
	source := locations.NewLocal(fsys, "/src")
	return source, repo.New(locations.NewLocal(fsys, "/dst"))
}

func TestFullMirror(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/src/a.txt", "alpha")
	testutil.MustWriteFile(t, fsys, "/src/sub/b.txt", "beta")

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.FullMirror(source, target, sessTime))

	data, err := fsys.ReadFile("/dst/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
	data, err = fsys.ReadFile("/dst/sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))

	// data directory untouched by the content copy
	assert.True(t, testutil.IsDir(fsys, "/dst/rdiff-backup-data"))

	metaName := repo.MarkerName(repo.MirrorMetadataPrefix, sessTime, "snapshot")
	meta, err := fsys.ReadFile("/dst/rdiff-backup-data/" + metaName)
	require.NoError(t, err)
	assert.Equal(t, "File a.txt 5\nFile sub/b.txt 4\n", string(meta))

	assert.Equal(t, 2, m.stats.SourceFiles)
	assert.Equal(t, 2, m.stats.NewFiles)
	assert.Equal(t, int64(9), m.stats.SourceBytes)
}

func TestFullMirrorSelection(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/src/keep.txt", "keep")
	testutil.MustWriteFile(t, fsys, "/src/cache/x.tmp", "junk")

	rules, err := selection.New([]selection.Rule{{Include: false, Pattern: "cache"}})
	require.NoError(t, err)

	m := NewLocal(fsys, rules, false)
	require.NoError(t, m.FullMirror(source, target, sessTime))

	assert.True(t, testutil.Exists(fsys, "/dst/keep.txt"))
	assert.False(t, testutil.Exists(fsys, "/dst/cache"))
}

func TestFullMirrorDryRun(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/src/a.txt", "alpha")

	before := fsys.WriteCount()
	m := NewLocal(fsys, nil, true)
	require.NoError(t, m.FullMirror(source, target, sessTime))

	assert.Equal(t, before, fsys.WriteCount())
	assert.False(t, testutil.Exists(fsys, "/dst/a.txt"))
}

func TestIncrementalMirror(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)

	// previous mirror state
	testutil.MustWriteFile(t, fsys, "/dst/changed.txt", "old content")
	testutil.MustWriteFile(t, fsys, "/dst/gone.txt", "deleted content")
	testutil.MustWriteFile(t, fsys, "/dst/same.txt", "stable")

	// current source state
	testutil.MustWriteFile(t, fsys, "/src/changed.txt", "new content")
	testutil.MustWriteFile(t, fsys, "/src/fresh.txt", "brand new")
	testutil.MustWriteFile(t, fsys, "/src/same.txt", "stable")

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.IncrementalMirror(source, target, prevTime, sessTime))

	// mirror reconciled
	data, err := fsys.ReadFile("/dst/changed.txt")
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
	assert.True(t, testutil.Exists(fsys, "/dst/fresh.txt"))
	assert.False(t, testutil.Exists(fsys, "/dst/gone.txt"))

	// displaced state recorded under increments, stamped with the
	// previous mirror time
	incr := "/dst/rdiff-backup-data/increments/"
	snap, err := fsys.ReadFile(incr + repo.MarkerName("changed.txt", prevTime, "snapshot"))
	require.NoError(t, err)
	assert.Equal(t, "old content", string(snap))
	snap, err = fsys.ReadFile(incr + repo.MarkerName("gone.txt", prevTime, "snapshot"))
	require.NoError(t, err)
	assert.Equal(t, "deleted content", string(snap))
	missing, err := fsys.ReadFile(incr + repo.MarkerName("fresh.txt", prevTime, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	// no increment for the unchanged file
	assert.False(t, testutil.Exists(fsys, incr+repo.MarkerName("same.txt", prevTime, "snapshot")))

	assert.Equal(t, 1, m.stats.ChangedFiles)
	assert.Equal(t, 1, m.stats.NewFiles)
	assert.Equal(t, 1, m.stats.DeletedFiles)
	assert.Equal(t, 3, m.stats.Increments)
}

func TestIncrementalMirrorDeletedDir(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/dst/olddir/x.txt", "x")
	testutil.MustWriteFile(t, fsys, "/dst/olddir/nested/y.txt", "y")

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.IncrementalMirror(source, target, prevTime, sessTime))

	assert.False(t, testutil.Exists(fsys, "/dst/olddir"))

	incr := "/dst/rdiff-backup-data/increments/"
	assert.True(t, testutil.Exists(fsys, incr+"olddir/"+repo.MarkerName("x.txt", prevTime, "snapshot")))
	assert.True(t, testutil.Exists(fsys, incr+"olddir/nested/"+repo.MarkerName("y.txt", prevTime, "snapshot")))
	assert.True(t, testutil.Exists(fsys, incr+repo.MarkerName("olddir", prevTime, "dir")))
	assert.True(t, testutil.Exists(fsys, incr+"olddir/"+repo.MarkerName("nested", prevTime, "dir")))
}

func TestIncrementalMirrorTypeChange(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/dst/thing", "was a file")
	testutil.MustWriteFile(t, fsys, "/src/thing/inner.txt", "now a dir")

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.IncrementalMirror(source, target, prevTime, sessTime))

	assert.True(t, testutil.IsDir(fsys, "/dst/thing"))
	data, err := fsys.ReadFile("/dst/thing/inner.txt")
	require.NoError(t, err)
	assert.Equal(t, "now a dir", string(data))

	snap, err := fsys.ReadFile("/dst/rdiff-backup-data/increments/" +
		repo.MarkerName("thing", prevTime, "snapshot"))
	require.NoError(t, err)
	assert.Equal(t, "was a file", string(snap))
}

func TestTouchAndRemoveCurrentMirror(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	_, target := newTestRepo(t, fsys)

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.TouchCurrentMirror(target, prevTime))
	require.NoError(t, m.TouchCurrentMirror(target, sessTime))

	times, err := target.MirrorTimes()
	require.NoError(t, err)
	assert.Len(t, times, 2)

	require.NoError(t, m.RemoveCurrentMirror(target, sessTime))

	times, err = target.MirrorTimes()
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.True(t, times[0].Equal(sessTime))

	body, err := fsys.ReadFile("/dst/rdiff-backup-data/" +
		repo.MarkerName(repo.CurrentMirrorPrefix, sessTime, "data"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "PID ")
}

func TestMirrorTime(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	_, target := newTestRepo(t, fsys)
	m := NewLocal(fsys, nil, false)

	mt, err := m.MirrorTime(target)
	require.NoError(t, err)
	assert.True(t, mt.IsZero())

	require.NoError(t, m.TouchCurrentMirror(target, sessTime))
	mt, err = m.MirrorTime(target)
	require.NoError(t, err)
	assert.True(t, mt.Equal(sessTime))
}

func TestCloseStatistics(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	source, target := newTestRepo(t, fsys)
	testutil.MustWriteFile(t, fsys, "/src/a.txt", "alpha")

	m := NewLocal(fsys, nil, false)
	require.NoError(t, m.FullMirror(source, target, sessTime))
	require.NoError(t, m.CloseStatistics(target, sessTime))

	body, err := fsys.ReadFile("/dst/rdiff-backup-data/" +
		repo.MarkerName(repo.SessionStatsPrefix, sessTime, "data"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "SourceFiles 1\n")
	assert.Contains(t, string(body), "NewFiles 1\n")
	assert.Contains(t, string(body), "StartTime")
}
