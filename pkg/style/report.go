package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/revdiff/revdiff/pkg/mirror"
	"github.com/revdiff/revdiff/pkg/repo"
)

// Report is the one-screen summary printed after a backup run
type Report struct {
	Source      string
	Target      string
	Incremental bool
	DryRun      bool
	When        time.Time
	Stats       *mirror.Stats
}

// Render produces the report. With colored false every style is
// dropped, for pipes and color=never.
func (r Report) Render(colored bool) string {
	kind := "full"
	if r.Incremental {
		kind = "incremental"
	}
	title := fmt.Sprintf("Backup completed (%s)", kind)
	if r.DryRun {
		title = fmt.Sprintf("Dry run: no changes made (%s)", kind)
	}

	var b strings.Builder
	if colored {
		b.WriteString(SuccessIndicator + " " + TitleStyle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")

	r.line(&b, colored, "Source", r.Source, PathStyle)
	r.line(&b, colored, "Target", r.Target, PathStyle)
	r.line(&b, colored, "Session", r.When.Format(repo.TimeFormat), lipglossNone)

	if s := r.Stats; s != nil {
		files := fmt.Sprintf("%d scanned, %d new, %d changed, %d deleted",
			s.SourceFiles, s.NewFiles, s.ChangedFiles, s.DeletedFiles)
		r.line(&b, colored, "Files", files, lipglossNone)
		r.line(&b, colored, "Bytes", fmt.Sprintf("%d", s.SourceBytes), lipglossNone)
		if r.Incremental {
			r.line(&b, colored, "Increments", fmt.Sprintf("%d", s.Increments), lipglossNone)
		}
	}
	return b.String()
}

type renderer interface {
	Render(...string) string
}

// lipglossNone leaves values unstyled
var lipglossNone renderer = plainRenderer{}

type plainRenderer struct{}

func (plainRenderer) Render(s ...string) string { return strings.Join(s, " ") }

func (r Report) line(b *strings.Builder, colored bool, label, value string, style renderer) {
	if colored {
		fmt.Fprintf(b, "  %s %s\n", LabelStyle.Render(label), style.Render(value))
	} else {
		fmt.Fprintf(b, "  %-12s %s\n", label, value)
	}
}
