package provider

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

func TestMemoryUnknownPackage(t *testing.T) {
	m := NewMemory()
	_, err := m.GetContainer(context.Background(), "nope")
	var up *UnknownPackage
	if err == nil {
		t.Fatal("expected UnknownPackage")
	}
	if !asUnknownPackage(err, &up) {
		t.Fatalf("expected *UnknownPackage, got %T (%s)", err, err)
	}
}

func asUnknownPackage(err error, target **UnknownPackage) bool {
	if up, ok := err.(*UnknownPackage); ok {
		*target = up
		return true
	}
	return false
}

func TestMemoryVersionsDescending(t *testing.T) {
	m := NewMemory()
	m.Add("a", version.MustParse("1.0.0"))
	m.Add("a", version.MustParse("2.0.0"))
	m.Add("a", version.MustParse("1.5.0"))

	c, err := m.GetContainer(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	vs := c.Versions()
	want := []string{"2.0.0", "1.5.0", "1.0.0"}
	for i, w := range want {
		if vs[i].String() != w {
			t.Errorf("Versions()[%d] = %s, want %s", i, vs[i], w)
		}
	}
}

func TestMemoryDependencies(t *testing.T) {
	m := NewMemory()
	dep := versionset.Constraint{Package: "b", Set: versionset.Exact(version.MustParse("1.0.0"))}
	m.Add("a", version.MustParse("1.0.0"), dep)

	c, _ := m.GetContainer(context.Background(), "a")
	deps, err := c.Dependencies(version.MustParse("1.0.0"))
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].Package != "b" {
		t.Errorf("Dependencies() = %v, want one dep on b", deps)
	}
}

// countingProvider counts GetContainer calls, used to verify Cache
// deduplicates concurrent lookups for the same key.
type countingProvider struct {
	mem   *Memory
	calls int32
}

func (p *countingProvider) GetContainer(ctx context.Context, id ID) (Container, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.mem.GetContainer(ctx, id)
}

func TestCacheDeduplicatesConcurrentLookups(t *testing.T) {
	mem := NewMemory()
	mem.Add("a", version.MustParse("1.0.0"))
	cp := &countingProvider{mem: mem}
	cache := NewCache(cp)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetContainer(context.Background(), "a"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&cp.calls); calls != 1 {
		t.Errorf("wrapped provider called %d times, want exactly 1 (cached after first)", calls)
	}
}

func TestParseFixtureRoundTrip(t *testing.T) {
	data := []byte(`{
		"containers": [
			{"name": "A", "versions": {"1.0.0": [{"container": "B", "requirement": "1.0.0..<2.0.0"}]}},
			{"name": "B", "versions": {"1.0.0": []}}
		],
		"constraints": [{"container": "A", "requirement": "1.0.0..<2.0.0"}],
		"result": {"A": "1.0.0", "B": "1.0.0"}
	}`)

	mem, roots, expected, err := ParseFixture(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].Package != "A" {
		t.Errorf("roots = %v", roots)
	}
	if expected["A"].String() != "1.0.0" || expected["B"].String() != "1.0.0" {
		t.Errorf("expected = %v", expected)
	}

	c, err := mem.GetContainer(context.Background(), "A")
	if err != nil {
		t.Fatal(err)
	}
	deps, err := c.Dependencies(version.MustParse("1.0.0"))
	if err != nil || len(deps) != 1 || deps[0].Package != "B" {
		t.Errorf("Dependencies(A@1.0.0) = %v, %v", deps, err)
	}
}

func TestParseFixtureUnsatisfiableHasNilResult(t *testing.T) {
	data := []byte(`{"containers": [], "constraints": [], "result": {}}`)
	_, _, expected, err := ParseFixture(data)
	if err != nil {
		t.Fatal(err)
	}
	if expected != nil {
		t.Errorf("expected nil result map for unsatisfiable fixture, got %v", expected)
	}
}

func TestFromManifest(t *testing.T) {
	data := []byte(`
[[constraints]]
package = "example.org/foo"
requirement = "1.0.0..<2.0.0"
`)
	cs, err := FromManifest(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 1 || cs[0].Package != "example.org/foo" {
		t.Fatalf("FromManifest() = %v", cs)
	}
	if !cs[0].Set.Contains(version.MustParse("1.5.0")) {
		t.Errorf("expected constraint to admit 1.5.0")
	}
}
