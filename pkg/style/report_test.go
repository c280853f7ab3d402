package style

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/revdiff/revdiff/pkg/mirror"
)

func testReport() Report {
	stats := mirror.NewStats(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stats.SourceFiles = 10
	stats.NewFiles = 2
	stats.ChangedFiles = 3
	stats.DeletedFiles = 1
	stats.Increments = 4
	stats.SourceBytes = 2048
	return Report{
		Source:      "/home/me/docs",
		Target:      "/backups/docs",
		Incremental: true,
		When:        stats.StartTime,
		Stats:       stats,
	}
}

func TestReportRenderPlain(t *testing.T) {
	out := testReport().Render(false)

	assert.Contains(t, out, "Backup completed (incremental)")
	assert.Contains(t, out, "/home/me/docs")
	assert.Contains(t, out, "/backups/docs")
	assert.Contains(t, out, "10 scanned, 2 new, 3 changed, 1 deleted")
	assert.Contains(t, out, "Increments")
	assert.Contains(t, out, "2026-03-01T12:00:00Z")
}

func TestReportRenderFull(t *testing.T) {
	r := testReport()
	r.Incremental = false
	out := r.Render(false)

	assert.Contains(t, out, "Backup completed (full)")
	assert.NotContains(t, out, "Increments")
}

func TestReportRenderDryRun(t *testing.T) {
	r := testReport()
	r.DryRun = true
	out := r.Render(false)
	assert.Contains(t, out, "Dry run: no changes made")
}

func TestReportRenderColored(t *testing.T) {
	out := testReport().Render(true)
	assert.Contains(t, out, "Backup completed (incremental)")
	assert.Contains(t, out, "/backups/docs")
}
