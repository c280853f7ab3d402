package repo

import (
	"sort"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout encoded into artifact names,
// RFC 3339 without fractional seconds.
const TimeFormat = "2006-01-02T15:04:05Z07:00"

// MarkerName builds an artifact name: <prefix>.<timestamp>.<suffix>
func MarkerName(prefix string, t time.Time, suffix string) string {
	return prefix + "." + t.Format(TimeFormat) + "." + suffix
}

// ParseMarkerTime extracts the timestamp from an artifact name with the
// given prefix. The second return is false when the name does not carry
// the prefix or its timestamp does not parse.
func ParseMarkerTime(name, prefix string) (time.Time, bool) {
	rest, found := strings.CutPrefix(name, prefix+".")
	if !found {
		return time.Time{}, false
	}
	// strip the trailing .<suffix>
	dot := strings.LastIndex(rest, ".")
	if dot <= 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeFormat, rest[:dot])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// HasPrefix reports whether an artifact name carries the given prefix
func HasPrefix(name, prefix string) bool {
	return name == prefix || strings.HasPrefix(name, prefix+".")
}

// MirrorTimes returns the timestamps of every current-mirror marker in
// the data directory, oldest first. A missing data directory yields an
// empty result.
func (r *Repository) MirrorTimes() ([]time.Time, error) {
	if !r.DataDir.Exists() {
		return nil, nil
	}
	entries, err := r.DataDir.ListDir()
	if err != nil {
		return nil, err
	}
	var times []time.Time
	for _, entry := range entries {
		if t, ok := ParseMarkerTime(entry.Name(), CurrentMirrorPrefix); ok {
			times = append(times, t)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times, nil
}

// LastMirrorTime returns the time recorded by the most recent completed
// backup, or the zero time when no completed backup exists yet.
func (r *Repository) LastMirrorTime() (time.Time, error) {
	times, err := r.MirrorTimes()
	if err != nil || len(times) == 0 {
		return time.Time{}, err
	}
	return times[len(times)-1], nil
}
