package provider

import (
	"context"
	"sync"

	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

// entry is one (version, dependencies) pair for a package in a Memory
// provider.
type entry struct {
	v    version.Version
	deps []versionset.Constraint
}

// Memory is an in-memory Provider built from a small table, the
// resolver-core equivalent of the historical bestiary's
// depspec/newdepspecSM in-memory fixture source manager
// (golang-dep/bestiary_test.go). It is the provider used directly by
// the scenario and property tests.
type Memory struct {
	mu       sync.Mutex
	versions map[ID][]entry
}

// NewMemory returns an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{versions: make(map[ID][]entry)}
}

// Add registers one version of a package and its direct dependencies.
// Returns the receiver so calls can be chained while building a
// fixture.
func (m *Memory) Add(id ID, v version.Version, deps ...versionset.Constraint) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[id] = append(m.versions[id], entry{v: v, deps: deps})
	return m
}

// GetContainer implements Provider.
func (m *Memory) GetContainer(ctx context.Context, id ID) (Container, error) {
	m.mu.Lock()
	entries, ok := m.versions[id]
	m.mu.Unlock()
	if !ok {
		return nil, &UnknownPackage{ID: id}
	}

	sorted := make([]entry, len(entries))
	copy(sorted, entries)
	vs := make([]version.Version, len(sorted))
	for i, e := range sorted {
		vs[i] = e.v
	}
	version.SortDescending(vs)

	byVersion := make(map[string][]versionset.Constraint, len(sorted))
	for _, e := range sorted {
		byVersion[e.v.String()] = e.deps
	}

	return &memoryContainer{versions: vs, deps: byVersion}, nil
}

type memoryContainer struct {
	versions []version.Version
	deps     map[string][]versionset.Constraint
}

func (c *memoryContainer) Versions() []version.Version { return c.versions }

func (c *memoryContainer) Dependencies(v version.Version) ([]versionset.Constraint, error) {
	return c.deps[v.String()], nil
}
