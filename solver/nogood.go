package solver

import (
	"sort"
	"strings"

	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/versionset"
)

// nogoodCache is an optional pruning cache: before trying a candidate
// version, check whether that same candidate of the same package,
// under the same requirement signature, has already been proven
// conflicting, and skip straight to the next candidate if so. The
// caller appends the candidate version to signature's key.
//
// This is a deliberately conservative simplification of full
// subsumption-based nogood learning: it only recognizes an exact
// repeat of a signature it has seen fail, not a requirement that is a
// strict subset of one it already knows is doomed. That keeps the
// cache a pure speedup — a miss never causes an incorrect accept, it
// only occasionally fails to skip redundant work a smarter cache
// would have caught.
type nogoodCache struct {
	seen map[string]struct{}
}

func newNogoodCache() *nogoodCache {
	return &nogoodCache{seen: make(map[string]struct{})}
}

// signature canonicalizes id's current requirement together with
// every already-bound package's version into one string key. Two
// searches that try the same candidate of the same package under the
// same requirement and the same surrounding bindings will always fail
// the same way, so it is sound to skip re-deriving that failure.
func signature(id provider.ID, req versionset.VersionSet, a *Assignment) string {
	var b strings.Builder
	b.WriteString(string(id))
	b.WriteByte('|')
	b.WriteString(req.String())
	b.WriteByte('|')

	snap := a.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(snap[versionset.PackageID(k)].String())
		b.WriteByte(';')
	}
	return b.String()
}

func (c *nogoodCache) knownBad(sig string) bool {
	_, ok := c.seen[sig]
	return ok
}

func (c *nogoodCache) record(sig string) {
	c.seen[sig] = struct{}{}
}
