package versionset

import (
	"fmt"
	"strings"

	"github.com/depsolve/resolvercore/version"
)

// MalformedVersionSet reports a fixture literal that failed to parse.
type MalformedVersionSet struct {
	Input string
	Cause error
}

func (e *MalformedVersionSet) Error() string {
	return fmt.Sprintf("malformed version set %q: %s", e.Input, e.Cause)
}

func (e *MalformedVersionSet) Unwrap() error { return e.Cause }

// ParseFixtureLiteral parses the three string forms the mock graph
// fixture format uses: "any", "=X.Y.Z", and "X.Y.Z..<A.B.C". The
// resolver core itself never calls this — it is grammar belonging
// to the test/fixture harness, kept here only so the harness and any
// caller building fixtures share one implementation.
func ParseFixtureLiteral(s string) (VersionSet, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "any" || s == "":
		return Any, nil
	case strings.HasPrefix(s, "="):
		v, err := version.Parse(strings.TrimSpace(s[1:]))
		if err != nil {
			return Empty, &MalformedVersionSet{Input: s, Cause: err}
		}
		return Exact(v), nil
	case strings.Contains(s, "..<"):
		parts := strings.SplitN(s, "..<", 2)
		if len(parts) != 2 {
			return Empty, &MalformedVersionSet{Input: s, Cause: fmt.Errorf("expected LO..<HI")}
		}
		lo, err := version.Parse(strings.TrimSpace(parts[0]))
		if err != nil {
			return Empty, &MalformedVersionSet{Input: s, Cause: err}
		}
		hi, err := version.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return Empty, &MalformedVersionSet{Input: s, Cause: err}
		}
		return Range(lo, hi), nil
	default:
		// bare "X.Y.Z" is treated as an exact pin, matching the
		// teacher's dsv()/mksvpa() helpers which accept a bare version
		// wherever an exact constraint is meant.
		v, err := version.Parse(s)
		if err != nil {
			return Empty, &MalformedVersionSet{Input: s, Cause: err}
		}
		return Exact(v), nil
	}
}

// ParseFixtureLiteralUnion parses a union of fixture literals, folding
// each element's VersionSet together.
func ParseFixtureLiteralUnion(ss []string) (VersionSet, error) {
	out := Empty
	for _, s := range ss {
		vs, err := ParseFixtureLiteral(s)
		if err != nil {
			return Empty, err
		}
		out = Union(out, vs)
	}
	return out, nil
}
