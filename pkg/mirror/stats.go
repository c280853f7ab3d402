package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/revdiff/revdiff/pkg/repo"
)

// Stats accumulates per-session counters while a mirror runs and
// renders them into the session statistics artifact on close.
type Stats struct {
	StartTime    time.Time
	SourceFiles  int
	SourceBytes  int64
	NewFiles     int
	ChangedFiles int
	DeletedFiles int
	Increments   int
}

// NewStats starts a statistics collection at t.
func NewStats(t time.Time) *Stats {
	return &Stats{StartTime: t}
}

// Render produces the artifact body. One "Key Value" pair per line,
// elapsed time in seconds with millisecond precision.
func (s *Stats) Render(end time.Time) string {
	var b strings.Builder
	elapsed := end.Sub(s.StartTime).Seconds()
	fmt.Fprintf(&b, "StartTime %d (%s)\n", s.StartTime.Unix(), s.StartTime.Format(repo.TimeFormat))
	fmt.Fprintf(&b, "EndTime %d (%s)\n", end.Unix(), end.Format(repo.TimeFormat))
	fmt.Fprintf(&b, "ElapsedTime %.3f\n", elapsed)
	fmt.Fprintf(&b, "SourceFiles %d\n", s.SourceFiles)
	fmt.Fprintf(&b, "SourceFileSize %d\n", s.SourceBytes)
	fmt.Fprintf(&b, "NewFiles %d\n", s.NewFiles)
	fmt.Fprintf(&b, "ChangedFiles %d\n", s.ChangedFiles)
	fmt.Fprintf(&b, "DeletedFiles %d\n", s.DeletedFiles)
	fmt.Fprintf(&b, "IncrementFiles %d\n", s.Increments)
	return b.String()
}
