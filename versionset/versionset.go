// Package versionset implements VersionSet, the canonical
// closed-under-intersection set over versions, and Constraint, a
// (PackageID, VersionSet) pair.
//
// A VersionSet is represented internally as a sorted vector of
// disjoint pieces. Most pieces are half-open ranges [lo, hi); a piece
// may also be closed at its upper bound, which is how a single exact
// version is represented — not as a derived range ending at some
// computed "next" version, since prerelease identifiers don't have
// one (the identifiers are ordered but not discrete: there is no
// general way to name "the version immediately after 1.0.0-alpha").
// Intersection and union are linear merges over two such vectors;
// every constructor returns the canonical (coalesced,
// empty-pieces-dropped) form.
package versionset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/depsolve/resolvercore/version"
)

type piece struct {
	hasLo bool
	lo    version.Version
	hasHi bool
	hi    version.Version
	// hiClosed marks hi as included in the piece rather than excluded.
	// Exact sets it on a singleton piece (where lo equals hi); the other
	// constructors leave it false, and Intersect and Union carry it onto
	// the pieces they build, so a merged piece can be closed with lo
	// below hi.
	hiClosed bool
}

// VersionSet is an immutable, canonicalized set of versions.
type VersionSet struct {
	pieces []piece // sorted, disjoint, never touching (adjacent pieces coalesced)
}

// Empty is the set containing no versions.
var Empty = VersionSet{}

// Any is the set containing every version.
var Any = VersionSet{pieces: []piece{{}}}

// Exact returns the singleton set {v}, represented as a piece closed
// at both ends so it contains v and nothing else, regardless of
// whether v carries a prerelease.
func Exact(v version.Version) VersionSet {
	return VersionSet{pieces: []piece{{hasLo: true, lo: v, hasHi: true, hi: v, hiClosed: true}}}
}

// Range returns the half-open set [lo, hi). If hi is not strictly
// greater than lo the result is Empty.
func Range(lo, hi version.Version) VersionSet {
	if !lo.Less(hi) {
		return Empty
	}
	return VersionSet{pieces: []piece{{hasLo: true, lo: lo, hasHi: true, hi: hi}}}
}

// AtLeast returns the unbounded-above set [lo, +inf).
func AtLeast(lo version.Version) VersionSet {
	return VersionSet{pieces: []piece{{hasLo: true, lo: lo}}}
}

// Before returns the unbounded-below set (-inf, hi).
func Before(hi version.Version) VersionSet {
	return VersionSet{pieces: []piece{{hasHi: true, hi: hi}}}
}

// IsEmpty reports whether the set admits no versions.
func (s VersionSet) IsEmpty() bool { return len(s.pieces) == 0 }

// IsAny reports whether the set admits every version.
func (s VersionSet) IsAny() bool {
	return len(s.pieces) == 1 && !s.pieces[0].hasLo && !s.pieces[0].hasHi
}

// upperAdmits reports whether v falls at or below p's upper bound.
func upperAdmits(p piece, v version.Version) bool {
	if !p.hasHi {
		return true
	}
	if p.hiClosed {
		return !p.hi.Less(v)
	}
	return v.Less(p.hi)
}

func lowerAdmits(p piece, v version.Version) bool {
	return !p.hasLo || !v.Less(p.lo)
}

// Contains reports whether v is a member of s. O(log n) over the
// normalized piece vector.
func (s VersionSet) Contains(v version.Version) bool {
	i := sort.Search(len(s.pieces), func(i int) bool {
		return upperAdmits(s.pieces[i], v)
	})
	if i == len(s.pieces) {
		return false
	}
	p := s.pieces[i]
	return lowerAdmits(p, v) && upperAdmits(p, v)
}

// Intersect returns the canonical intersection of a and b.
//
// ∅ ∩ X = ∅; any ∩ X = X; intersection of two ranges is their overlap
// or empty.
func Intersect(a, b VersionSet) VersionSet {
	if a.IsEmpty() || b.IsEmpty() {
		return Empty
	}
	if a.IsAny() {
		return b
	}
	if b.IsAny() {
		return a
	}

	var out []piece
	i, j := 0, 0
	for i < len(a.pieces) && j < len(b.pieces) {
		pa, pb := a.pieces[i], b.pieces[j]
		lo, hasLo := maxLower(pa, pb)
		hi, hasHi, hiClosed := minUpper(pa, pb)
		if nonEmptyBounds(lo, hasLo, hi, hasHi, hiClosed) {
			out = append(out, piece{hasLo: hasLo, lo: lo, hasHi: hasHi, hi: hi, hiClosed: hiClosed})
		}
		// advance whichever piece's reach ends first
		if endsBefore(pa, pb) {
			i++
		} else if endsBefore(pb, pa) {
			j++
		} else {
			j++
		}
	}
	return canonicalize(out)
}

// Union returns the canonical union of a and b, coalescing pieces that
// touch or overlap.
func Union(a, b VersionSet) VersionSet {
	if a.IsAny() || b.IsAny() {
		return Any
	}
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}

	merged := make([]piece, 0, len(a.pieces)+len(b.pieces))
	merged = append(merged, a.pieces...)
	merged = append(merged, b.pieces...)
	sort.Slice(merged, func(i, j int) bool {
		return lowerLess(merged[i], merged[j])
	})
	return canonicalize(merged)
}

// canonicalize coalesces a slice of (possibly touching/overlapping,
// lower-bound sorted) pieces into the canonical disjoint form,
// dropping empty pieces.
func canonicalize(pieces []piece) VersionSet {
	var out []piece
	for _, p := range pieces {
		if isEmptyPiece(p) {
			continue
		}
		if len(out) == 0 {
			out = append(out, p)
			continue
		}
		last := &out[len(out)-1]
		if touches(*last, p) {
			switch {
			case !p.hasHi:
				last.hasHi = false
				last.hiClosed = false
			case !last.hasHi:
				// last already unbounded above; nothing to extend
			case last.hi.Less(p.hi):
				last.hi = p.hi
				last.hiClosed = p.hiClosed
			case p.hi.Less(last.hi):
				// last already reaches further; no change
			default:
				// equal upper bound value: closed wins over half-open
				last.hiClosed = last.hiClosed || p.hiClosed
			}
			continue
		}
		out = append(out, p)
	}
	if len(out) == 1 && !out[0].hasLo && !out[0].hasHi {
		return Any
	}
	return VersionSet{pieces: out}
}

// isEmptyPiece reports whether p admits no versions: a half-open
// range whose bounds coincide, or any range whose bounds are
// inverted. A closed piece with lo == hi is a valid singleton, not
// empty.
func isEmptyPiece(p piece) bool {
	if !p.hasLo || !p.hasHi {
		return false
	}
	if p.hi.Less(p.lo) {
		return true
	}
	if !p.hiClosed && p.lo.Equal(p.hi) {
		return true
	}
	return false
}

// nonEmptyBounds mirrors isEmptyPiece for bounds not yet packaged into
// a piece, used while building an intersection.
func nonEmptyBounds(lo version.Version, hasLo bool, hi version.Version, hasHi bool, hiClosed bool) bool {
	return !isEmptyPiece(piece{hasLo: hasLo, lo: lo, hasHi: hasHi, hi: hi, hiClosed: hiClosed})
}

// touches reports whether piece b starts at or before the end of
// piece a (so they should be merged into one piece).
func touches(a, b piece) bool {
	if !a.hasHi {
		return true // a already extends to +inf
	}
	if !b.hasLo {
		return true // b starts at -inf, necessarily touches any a
	}
	return !a.hi.Less(b.lo)
}

// endsBefore reports whether a's reach ends strictly before b's, so a
// can safely be retired from a two-pointer merge. Ties where both
// reach the same value are broken in favor of the closed piece, which
// reaches one point further than a half-open piece at the same value.
func endsBefore(a, b piece) bool {
	if !a.hasHi {
		return false
	}
	if !b.hasHi {
		return true
	}
	if a.hi.Less(b.hi) {
		return true
	}
	if b.hi.Less(a.hi) {
		return false
	}
	return !a.hiClosed && b.hiClosed
}

func lowerLess(a, b piece) bool {
	if !a.hasLo {
		return b.hasLo // unbounded-below sorts first
	}
	if !b.hasLo {
		return false
	}
	return a.lo.Less(b.lo)
}

func maxLower(a, b piece) (version.Version, bool) {
	if !a.hasLo {
		return b.lo, b.hasLo
	}
	if !b.hasLo {
		return a.lo, a.hasLo
	}
	if a.lo.Less(b.lo) {
		return b.lo, true
	}
	return a.lo, true
}

// minUpper returns the tighter of a's and b's upper bounds, carrying
// along whether that bound is closed.
func minUpper(a, b piece) (version.Version, bool, bool) {
	if !a.hasHi {
		return b.hi, b.hasHi, b.hiClosed
	}
	if !b.hasHi {
		return a.hi, a.hasHi, a.hiClosed
	}
	if a.hi.Less(b.hi) {
		return a.hi, true, a.hiClosed
	}
	if b.hi.Less(a.hi) {
		return b.hi, true, b.hiClosed
	}
	return a.hi, true, a.hiClosed && b.hiClosed
}

// String renders s as a human-readable set expression, used in
// conflict messages.
func (s VersionSet) String() string {
	if s.IsEmpty() {
		return "∅"
	}
	if s.IsAny() {
		return "any"
	}
	parts := make([]string, len(s.pieces))
	for i, p := range s.pieces {
		switch {
		case p.hasLo && p.hasHi && p.hiClosed && p.lo.Equal(p.hi):
			parts[i] = fmt.Sprintf("=%s", p.lo)
		case p.hasLo && p.hasHi && p.hiClosed:
			parts[i] = fmt.Sprintf("[%s,%s]", p.lo, p.hi)
		case p.hasLo && p.hasHi:
			parts[i] = fmt.Sprintf("[%s,%s)", p.lo, p.hi)
		case p.hasLo:
			parts[i] = fmt.Sprintf(">=%s", p.lo)
		case p.hasHi && p.hiClosed:
			parts[i] = fmt.Sprintf("<=%s", p.hi)
		case p.hasHi:
			parts[i] = fmt.Sprintf("<%s", p.hi)
		default:
			parts[i] = "any"
		}
	}
	return strings.Join(parts, " || ")
}

// Constraint is a (PackageID, VersionSet) pair — one edge's demand on
// a target package.
type Constraint struct {
	Package PackageID
	Set     VersionSet
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s", c.Package, c.Set)
}
