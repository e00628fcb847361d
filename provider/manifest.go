package provider

import (
	"fmt"
	"os"

	"github.com/depsolve/resolvercore/versionset"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// manifestDoc is a flat TOML manifest shaped like a real project
// manifest (Gopkg.toml-style), grounded on golang-dep/toml.go's
// rawProject/[[constraint]] table reading.
//
//	[[constraints]]
//	  package = "example.org/foo"
//	  requirement = "1.0.0..<2.0.0"
type manifestDoc struct {
	Constraints []struct {
		Package     string `toml:"package"`
		Requirement string `toml:"requirement"`
	} `toml:"constraints"`
}

// FromManifest parses a TOML manifest into root Constraints. Unlike
// ParseFixture, this never builds a Provider — it only covers turning
// a manifest's own constraint table into the Constraint values a
// caller hands to the resolver; it still owes the caller a separately
// built Provider.
func FromManifest(data []byte) ([]versionset.Constraint, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	out := make([]versionset.Constraint, 0, len(doc.Constraints))
	for _, c := range doc.Constraints {
		vs, err := versionset.ParseFixtureLiteral(c.Requirement)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint on %s", c.Package)
		}
		out = append(out, versionset.Constraint{Package: ID(c.Package), Set: vs})
	}
	return out, nil
}

// LoadManifestFile reads and parses a manifest from disk.
func LoadManifestFile(path string) ([]versionset.Constraint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return FromManifest(data)
}
