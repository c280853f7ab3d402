package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/testutil"
)

func TestLocalAppend(t *testing.T) {
	m := testutil.NewMemoryFS()
	loc := NewLocal(m, "/backups/repo")

	sub := loc.Append("rdiff-backup-data", "increments")
	assert.Equal(t, "/backups/repo/rdiff-backup-data/increments", sub.Path())
	// Append must not mutate the parent
	assert.Equal(t, "/backups/repo", loc.Path())
}

func TestLocalExistsAndIsDir(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, m, "/d")
	testutil.MustWriteFile(t, m, "/d/f.txt", "x")

	dir := NewLocal(m, "/d")
	file := NewLocal(m, "/d/f.txt")
	missing := NewLocal(m, "/nope")

	assert.True(t, dir.Exists())
	assert.True(t, dir.IsDir())
	assert.True(t, file.Exists())
	assert.False(t, file.IsDir())
	assert.False(t, missing.Exists())
	assert.False(t, missing.IsDir())
}

func TestLocalMkdirChmod(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, m, "/base")

	loc := NewLocal(m, "/base/repo")
	require.NoError(t, loc.Mkdir())
	require.NoError(t, loc.Chmod(0700))
	assert.Equal(t, "drwx------", testutil.Mode(t, m, "/base/repo").String())
}

func TestDeleteDirNoFilesEmptyTree(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, m, "/d/increments/sub/deeper")

	loc := NewLocal(m, "/d/increments")
	require.NoError(t, loc.DeleteDirNoFiles())
	assert.False(t, testutil.Exists(m, "/d/increments"))
}

func TestDeleteDirNoFilesRefusesFiles(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, m, "/d/increments/sub")
	testutil.MustWriteFile(t, m, "/d/increments/sub/f.snapshot", "data")

	loc := NewLocal(m, "/d/increments")
	err := loc.DeleteDirNoFiles()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDirHasFiles))
	// nothing was removed
	assert.True(t, testutil.Exists(m, "/d/increments/sub/f.snapshot"))
}

func TestLocalReadWriteFile(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustMkdirAll(t, m, "/d")

	loc := NewLocal(m, "/d/marker.data")
	require.NoError(t, loc.WriteFile([]byte("PID 123\n"), 0644))

	data, err := loc.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "PID 123\n", string(data))
}
