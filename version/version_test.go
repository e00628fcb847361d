package version

import "testing"

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"1.2",
		"01.2.3",
		"1.2.3-",
		"not-a-version",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q): expected MalformedVersion, got nil", c)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"1.2.3", "1.2.3-alpha.1", "1.2.3+build.7", "0.0.0"} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %s", s, err)
		}
		if v.String() != s {
			t.Errorf("Parse(%q).String() = %q", s, v.String())
		}
	}
}

func TestOrderTotal(t *testing.T) {
	ordered := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}
	var vs []Version
	for _, s := range ordered {
		vs = append(vs, MustParse(s))
	}
	for i := 1; i < len(vs); i++ {
		if !vs[i-1].Less(vs[i]) {
			t.Errorf("expected %s < %s", vs[i-1], vs[i])
		}
		if vs[i].Less(vs[i-1]) {
			t.Errorf("expected not %s < %s", vs[i], vs[i-1])
		}
	}
	// antisymmetric + transitive spot checks
	a, b, c := vs[0], vs[len(vs)/2], vs[len(vs)-1]
	if a.Less(b) && b.Less(c) && !a.Less(c) {
		t.Errorf("order not transitive: %s < %s < %s but not %s < %s", a, b, c, a, c)
	}
}

func TestSortDescending(t *testing.T) {
	vs := []Version{MustParse("1.0.0"), MustParse("2.0.0"), MustParse("1.5.0")}
	SortDescending(vs)
	want := []string{"2.0.0", "1.5.0", "1.0.0"}
	for i, w := range want {
		if vs[i].String() != w {
			t.Errorf("SortDescending()[%d] = %s, want %s", i, vs[i], w)
		}
	}
}
