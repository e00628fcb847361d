package provider

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

// Fixture is a JSON mock package graph: named containers, each with a
// set of versions and their dependency requirements, plus the root
// constraints to resolve and the expected resolution (if any). The
// resolver core never parses this — it belongs to the surrounding
// test/performance harness — but any test suite built against this
// module needs one shared implementation, the same role the
// historical bestiary's depspec helpers played for golang-dep.
type Fixture struct {
	Containers  []fixtureContainer    `json:"containers"`
	Constraints []fixtureRequirement  `json:"constraints"`
	Result      map[string]string     `json:"result"`
}

type fixtureContainer struct {
	Name     string                        `json:"name"`
	Versions map[string][]fixtureRequirement `json:"versions"`
}

type fixtureRequirement struct {
	Container   string          `json:"container"`
	Requirement requirementJSON `json:"requirement"`
}

// requirementJSON accepts either a bare string ("any", "=1.2.3",
// "1.0.0..<2.0.0") or a JSON array of such strings, meaning their
// union.
type requirementJSON struct {
	Literals []string
}

func (r *requirementJSON) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		r.Literals = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("requirement must be a string or list of strings: %w", err)
	}
	r.Literals = list
	return nil
}

func (r requirementJSON) toVersionSet() (versionset.VersionSet, error) {
	return versionset.ParseFixtureLiteralUnion(r.Literals)
}

// ParseFixture parses the JSON mock graph format described above into
// a Memory provider, the root Constraints the fixture declares, and
// the expected result (nil for an unsatisfiable fixture, matching the
// format's "empty result object means unsatisfiable").
func ParseFixture(data []byte) (mem *Memory, roots []versionset.Constraint, expected map[ID]version.Version, err error) {
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, nil, nil, fmt.Errorf("parsing fixture: %w", err)
	}

	mem = NewMemory()
	for _, c := range fx.Containers {
		for verStr, reqs := range c.Versions {
			v, err := version.Parse(verStr)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("container %s: %w", c.Name, err)
			}
			var deps []versionset.Constraint
			for _, r := range reqs {
				vs, err := r.Requirement.toVersionSet()
				if err != nil {
					return nil, nil, nil, fmt.Errorf("container %s@%s dependency on %s: %w", c.Name, verStr, r.Container, err)
				}
				deps = append(deps, versionset.Constraint{Package: ID(r.Container), Set: vs})
			}
			mem.Add(ID(c.Name), v, deps...)
		}
	}

	for _, c := range fx.Constraints {
		vs, err := c.Requirement.toVersionSet()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("root constraint on %s: %w", c.Container, err)
		}
		roots = append(roots, versionset.Constraint{Package: ID(c.Container), Set: vs})
	}

	if len(fx.Result) > 0 {
		expected = make(map[ID]version.Version, len(fx.Result))
		for name, verStr := range fx.Result {
			v, err := version.Parse(verStr)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("result %s: %w", name, err)
			}
			expected[ID(name)] = v
		}
	}

	return mem, roots, expected, nil
}

// LoadFixtureFile reads and parses a fixture from disk.
func LoadFixtureFile(path string) (*Memory, []versionset.Constraint, map[ID]version.Version, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}
