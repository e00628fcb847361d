package versionset

import (
	"testing"

	"github.com/depsolve/resolvercore/version"
)

func v(s string) version.Version { return version.MustParse(s) }

func TestEmptyAnyIdentities(t *testing.T) {
	r := Range(v("1.0.0"), v("2.0.0"))

	if !Intersect(Empty, r).IsEmpty() {
		t.Error("empty ∩ X should be empty")
	}
	if got := Intersect(Any, r); got.String() != r.String() {
		t.Errorf("any ∩ X should be X, got %s want %s", got, r)
	}
	if got := Union(Empty, r); got.String() != r.String() {
		t.Errorf("empty ∪ X should be X, got %s", got)
	}
}

func TestContainsMatchesRange(t *testing.T) {
	r := Range(v("1.0.0"), v("2.0.0"))
	if !r.Contains(v("1.0.0")) {
		t.Error("range should contain its inclusive low bound")
	}
	if r.Contains(v("2.0.0")) {
		t.Error("range should not contain its exclusive high bound")
	}
	if !r.Contains(v("1.9.9")) {
		t.Error("range should contain a version just below the high bound")
	}
}

func TestExactIsSingleton(t *testing.T) {
	e := Exact(v("1.2.3"))
	if !e.Contains(v("1.2.3")) {
		t.Error("exact should contain its version")
	}
	if e.Contains(v("1.2.4")) {
		t.Error("exact should not contain any other version")
	}
}

// A prerelease version has no well-defined "next version" in the
// total order (prerelease identifiers are ordered but not discrete),
// so Exact must not admit any other prerelease of the same release
// family.
func TestExactPrereleaseIsSingleton(t *testing.T) {
	e := Exact(v("1.0.0-alpha"))
	if !e.Contains(v("1.0.0-alpha")) {
		t.Error("exact should contain its own prerelease version")
	}
	for _, other := range []string{"1.0.0-alpha.1", "1.0.0-beta", "1.0.0-rc.1", "1.0.0"} {
		if e.Contains(v(other)) {
			t.Errorf("Exact(1.0.0-alpha) should not contain %s", other)
		}
	}
}

func TestExactIntersectsOnlyWithSetsContainingIt(t *testing.T) {
	e := Exact(v("1.0.0-alpha"))
	r := Range(v("1.0.0-alpha"), v("1.0.0"))
	if got := Intersect(e, r); got.String() != e.String() {
		t.Errorf("Exact(v) ∩ [v, hi) should be exactly {v}, got %s", got)
	}
	before := Before(v("1.0.0-alpha"))
	if !Intersect(e, before).IsEmpty() {
		t.Error("Exact(v) should not intersect a range excluding v")
	}
}

func TestUnionOfTwoDistinctExactsDoesNotCoalesce(t *testing.T) {
	a := Exact(v("1.0.0"))
	b := Exact(v("2.0.0"))
	u := Union(a, b)
	if !u.Contains(v("1.0.0")) || !u.Contains(v("2.0.0")) {
		t.Error("union of two exacts should contain both")
	}
	if u.Contains(v("1.5.0")) {
		t.Error("union of two exacts should not contain anything between them")
	}
}

func TestIntersectCommutativeAssociativeIdempotent(t *testing.T) {
	a := Range(v("1.0.0"), v("3.0.0"))
	b := Range(v("2.0.0"), v("4.0.0"))
	c := Range(v("2.5.0"), v("5.0.0"))

	if Intersect(a, b).String() != Intersect(b, a).String() {
		t.Error("intersect not commutative")
	}
	lhs := Intersect(Intersect(a, b), c)
	rhs := Intersect(a, Intersect(b, c))
	if lhs.String() != rhs.String() {
		t.Errorf("intersect not associative: %s != %s", lhs, rhs)
	}
	if Intersect(a, a).String() != a.String() {
		t.Error("intersect not idempotent")
	}
}

func TestIntersectNoOverlapIsEmpty(t *testing.T) {
	a := Range(v("1.0.0"), v("2.0.0"))
	b := Range(v("2.0.0"), v("3.0.0"))
	if !Intersect(a, b).IsEmpty() {
		t.Error("disjoint half-open ranges should intersect to empty")
	}
}

func TestContainsIffBothContain(t *testing.T) {
	a := Range(v("1.0.0"), v("3.0.0"))
	b := Range(v("2.0.0"), v("4.0.0"))
	inter := Intersect(a, b)

	probes := []version.Version{v("1.5.0"), v("2.5.0"), v("3.5.0"), v("0.5.0")}
	for _, p := range probes {
		got := inter.Contains(p)
		want := a.Contains(p) && b.Contains(p)
		if got != want {
			t.Errorf("Contains(%s, intersect) = %v, want %v", p, got, want)
		}
	}
}

func TestUnionCoalescesAdjacent(t *testing.T) {
	a := Range(v("1.0.0"), v("2.0.0"))
	b := Range(v("2.0.0"), v("3.0.0"))
	u := Union(a, b)
	if !u.Contains(v("1.5.0")) || !u.Contains(v("2.5.0")) {
		t.Error("union should cover both source ranges")
	}
	// coalesced to a single piece means String() has no "||"
	if got := u.String(); got != "[1.0.0,3.0.0)" {
		t.Errorf("expected coalesced single range, got %s", got)
	}
}

func TestUnionOfOneCollapses(t *testing.T) {
	a := Range(v("1.0.0"), v("2.0.0"))
	if got := Union(a, Empty); got.String() != a.String() {
		t.Errorf("union with empty should collapse to the non-empty side, got %s", got)
	}
}

func TestUnionRoundTripsThroughFixtureLiteral(t *testing.T) {
	vs, err := ParseFixtureLiteralUnion([]string{"=1.0.0", "=2.0.0"})
	if err != nil {
		t.Fatal(err)
	}
	if !vs.Contains(v("1.0.0")) || !vs.Contains(v("2.0.0")) {
		t.Error("union literal should contain both members")
	}
	if vs.Contains(v("1.5.0")) {
		t.Error("union of two exacts should not admit anything in between")
	}
}

func TestParseFixtureLiteralForms(t *testing.T) {
	cases := map[string]func(VersionSet) bool{
		"any":               func(s VersionSet) bool { return s.IsAny() },
		"=1.2.3":            func(s VersionSet) bool { return s.Contains(v("1.2.3")) && !s.Contains(v("1.2.4")) },
		"1.0.0..<2.0.0": func(s VersionSet) bool {
			return s.Contains(v("1.5.0")) && !s.Contains(v("2.0.0"))
		},
	}
	for lit, check := range cases {
		vs, err := ParseFixtureLiteral(lit)
		if err != nil {
			t.Fatalf("ParseFixtureLiteral(%q): %s", lit, err)
		}
		if !check(vs) {
			t.Errorf("ParseFixtureLiteral(%q) = %s failed its check", lit, vs)
		}
	}
}

func TestMalformedVersionSet(t *testing.T) {
	if _, err := ParseFixtureLiteral("=not-a-version"); err == nil {
		t.Error("expected error for malformed exact literal")
	}
	if _, err := ParseFixtureLiteral("garbage..<also-garbage"); err == nil {
		t.Error("expected error for malformed range literal")
	}
}
