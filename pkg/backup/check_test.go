package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/locations"
	"github.com/revdiff/revdiff/pkg/repo"
	"github.com/revdiff/revdiff/pkg/testutil"
)

var fixedNow = time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

func newTestSession(fsys *testutil.MemoryFS) *Session {
	s := NewSession(
		locations.NewLocal(fsys, "/src"),
		repo.New(locations.NewLocal(fsys, "/dst")),
		nil,
	)
	s.Now = func() time.Time { return fixedNow }
	return s
}

func writeMirrorMarker(t *testing.T, fsys *testutil.MemoryFS, ts time.Time) {
	t.Helper()
	name := repo.MarkerName(repo.CurrentMirrorPrefix, ts, "data")
	testutil.MustWriteFile(t, fsys, "/dst/rdiff-backup-data/"+name, "PID 1\n")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, fsys *testutil.MemoryFS)
		force bool
		want  Verdict
	}{
		{
			name: "absent target passes",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
			},
			want: 0,
		},
		{
			name:  "source missing",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {},
			want:  VerdictSourceMissing,
		},
		{
			name: "source is a file",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustWriteFile(t, fsys, "/src", "not a dir")
			},
			want: VerdictSourceNotDir,
		},
		{
			name: "target is a file",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				testutil.MustWriteFile(t, fsys, "/dst", "not a dir")
			},
			want: VerdictTargetNotDir,
		},
		{
			name: "target is a file with force",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				testutil.MustWriteFile(t, fsys, "/dst", "not a dir")
			},
			force: true,
			want:  0,
		},
		{
			name: "occupied non-repository target",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				testutil.MustWriteFile(t, fsys, "/dst/unrelated.txt", "data")
			},
			want: VerdictTargetOccupied,
		},
		{
			name: "occupied non-repository target with force",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				testutil.MustWriteFile(t, fsys, "/dst/unrelated.txt", "data")
			},
			force: true,
			want:  0,
		},
		{
			name: "valid repository with past mirror time",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				writeMirrorMarker(t, fsys, fixedNow.Add(-time.Hour))
			},
			want: 0,
		},
		{
			name: "future mirror time",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				writeMirrorMarker(t, fsys, fixedNow.Add(time.Hour))
			},
			want: VerdictMirrorTime,
		},
		{
			name: "future mirror time ignores force",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				writeMirrorMarker(t, fsys, fixedNow.Add(time.Hour))
			},
			force: true,
			want:  VerdictMirrorTime,
		},
		{
			name: "mirror time equal to now is not in the past",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustMkdirAll(t, fsys, "/src")
				writeMirrorMarker(t, fsys, fixedNow)
			},
			want: VerdictMirrorTime,
		},
		{
			name: "failures accumulate",
			setup: func(t *testing.T, fsys *testutil.MemoryFS) {
				testutil.MustWriteFile(t, fsys, "/dst/unrelated.txt", "data")
			},
			want: VerdictSourceMissing | VerdictTargetOccupied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testutil.NewMemoryFS()
			tt.setup(t, fsys)
			s := newTestSession(fsys)
			s.Force = tt.force

			before := fsys.WriteCount()
			v, err := s.Check()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v, "verdict %s", v)

			// preflight never mutates
			assert.Equal(t, before, fsys.WriteCount())
		})
	}
}

// A clock sub-second past the previous marker still lands in the same
// whole-second timestamp, so the session would overwrite that marker.
func TestCheckRejectsSameSecondSession(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, fsys, "/src")
	writeMirrorMarker(t, fsys, fixedNow)

	s := newTestSession(fsys)
	s.Now = func() time.Time { return fixedNow.Add(400 * time.Millisecond) }

	v, err := s.Check()
	require.NoError(t, err)
	assert.Equal(t, VerdictMirrorTime, v)

	// one granule later the collision is gone
	s.Now = func() time.Time { return fixedNow.Add(time.Second + 400*time.Millisecond) }
	v, err = s.Check()
	require.NoError(t, err)
	assert.Equal(t, Verdict(0), v)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "ok", Verdict(0).String())
	assert.Equal(t, "source-missing,mirror-time-not-past",
		(VerdictSourceMissing | VerdictMirrorTime).String())
}

func TestVerdictErr(t *testing.T) {
	assert.NoError(t, Verdict(0).Err())

	err := (VerdictTargetOccupied | VerdictMirrorTime).Err()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTargetOccupied))
	assert.Contains(t, err.Error(), "target-occupied")
	assert.Contains(t, err.Error(), "mirror-time-not-past")
}
