// Package version implements the semantic version triple and its
// total order.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is an immutable semantic version: major.minor.patch with
// optional prerelease and build metadata. Build metadata is carried for
// round-tripping but never participates in ordering or equality.
type Version struct {
	sv *semver.Version
}

// MalformedVersion reports a version string that failed to parse.
type MalformedVersion struct {
	Input string
	Cause error
}

func (e *MalformedVersion) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Cause)
}

func (e *MalformedVersion) Unwrap() error { return e.Cause }

// Parse parses a MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] string.
//
// Masterminds/semver already rejects leading zeros in numeric
// identifiers; empty prerelease or build identifiers ("1.2.3-",
// "1.2.3-a..b", "1.2.3+") get past it and are rejected here.
func Parse(s string) (Version, error) {
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, &MalformedVersion{Input: s, Cause: err}
	}
	core, build, hasBuild := strings.Cut(s, "+")
	_, pre, hasPre := strings.Cut(core, "-")
	var idents []string
	if hasPre {
		idents = append(idents, strings.Split(pre, ".")...)
	}
	if hasBuild {
		idents = append(idents, strings.Split(build, ".")...)
	}
	for _, id := range idents {
		if id == "" {
			return Version{}, &MalformedVersion{Input: s, Cause: fmt.Errorf("empty identifier")}
		}
	}
	return Version{sv: sv}, nil
}

// MustParse is Parse, panicking on error. Only for tests and fixture
// construction — never used on the resolver's hot path.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Zero reports whether v is the unconstructed zero value.
func (v Version) Zero() bool {
	return v.sv == nil
}

func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.Original()
}

func (v Version) Major() uint64      { return v.sv.Major() }
func (v Version) Minor() uint64      { return v.sv.Minor() }
func (v Version) Patch() uint64      { return v.sv.Patch() }
func (v Version) Prerelease() string { return v.sv.Prerelease() }

// IsPrerelease reports whether v carries a non-empty prerelease.
func (v Version) IsPrerelease() bool {
	return v.sv.Prerelease() != ""
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other.
func (v Version) Compare(other Version) int {
	if c := v.sv.Compare(other.sv); c != 0 {
		return c
	}
	// semver.Version.Compare already implements the full precedence
	// rule including prerelease identifier comparison, so a non-zero
	// result above is authoritative. Equal triples with equal
	// prereleases fall through to 0 here.
	return 0
}

// Less reports whether v precedes other in the total order.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports whether v and other denote the same version (build
// metadata ignored).
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// Sort sorts vs in ascending order.
func Sort(vs []Version) {
	sortSlice(vs)
}

func sortSlice(vs []Version) {
	// insertion sort is fine for the handful of versions a single
	// package typically carries; providers are expected to hand back
	// an already-sorted descending list in the common case anyway.
	for i := 1; i < len(vs); i++ {
		for j := i; j > 0 && vs[j].Less(vs[j-1]); j-- {
			vs[j], vs[j-1] = vs[j-1], vs[j]
		}
	}
}

// SortDescending sorts vs in descending order, the order a Container's
// Versions() is expected to yield.
func SortDescending(vs []Version) {
	sortSlice(vs)
	for i, j := 0, len(vs)-1; i < j; i, j = i+1, j-1 {
		vs[i], vs[j] = vs[j], vs[i]
	}
}
