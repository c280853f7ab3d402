package locations

import (
	"strings"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/types"
)

// Spec is a parsed location argument of the form [[USER@]HOST::]PATH.
// A spec without the HOST:: prefix refers to the local endpoint.
type Spec struct {
	User string
	Host string
	Path string
}

// Remote reports whether the spec names a remote endpoint
func (s Spec) Remote() bool {
	return s.Host != ""
}

// ParseSpec parses a location argument. A literal "::" separates the
// endpoint from the path; everything before an optional "@" in the
// endpoint part is the user name.
func ParseSpec(arg string) (Spec, error) {
	if arg == "" {
		return Spec{}, errors.New(errors.ErrLocationSpec, "empty location")
	}

	host, path, found := strings.Cut(arg, "::")
	if !found {
		return Spec{Path: arg}, nil
	}
	if host == "" || path == "" {
		return Spec{}, errors.Newf(errors.ErrLocationSpec,
			"malformed location %q, expected [[USER@]HOST::]PATH", arg)
	}

	spec := Spec{Host: host, Path: path}
	if user, rest, ok := strings.Cut(host, "@"); ok {
		if user == "" || rest == "" {
			return Spec{}, errors.Newf(errors.ErrLocationSpec,
				"malformed location %q, expected [[USER@]HOST::]PATH", arg)
		}
		spec.User = user
		spec.Host = rest
	}
	return spec, nil
}

// Connect resolves a spec into a Location on its endpoint. The
// implementation is chosen here, once; callers treat every Location
// identically afterwards. Remote endpoints are not supported by this
// build and are rejected at connection time.
func Connect(spec Spec, fsys types.FS) (Location, error) {
	if spec.Remote() {
		return nil, errors.Newf(errors.ErrRemoteEndpoint,
			"remote endpoint %s is not supported", spec.Host)
	}
	return NewLocal(fsys, spec.Path), nil
}
