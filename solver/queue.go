package solver

import (
	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/version"
)

// failedVersion records one version a versionQueue rejected, and why —
// folded into the noVersion conflict's witness when the whole queue is
// exhausted.
type failedVersion struct {
	v      version.Version
	reason error
}

// versionQueue is a restartable iterator over a package's versions: an
// immutable, provider-owned vector the resolver indexes into
// explicitly rather than consuming through generator semantics. The
// underlying vector is supplied once, in descending order, by the
// Container; the resolver only ever advances a cursor over it, never
// re-fetches.
// container is set once, right after the queue is built, and reused
// for every Dependencies() lookup a search makes against id — one
// fetch per package for the queue's whole lifetime.
type versionQueue struct {
	id        provider.ID
	versions  []version.Version
	cursor    int
	fails     []failedVersion
	container provider.Container
}

// newVersionQueue builds a queue for id from all, the container's
// full descending version list. If preferred is non-nil and present
// in all, it is moved to the front, so a locked or otherwise favored
// version is tried before the provider's natural ordering. A preferred
// version absent from all is ignored; it never widens what the
// provider actually offers.
func newVersionQueue(id provider.ID, all []version.Version, preferred *version.Version) *versionQueue {
	versions := all
	if preferred != nil {
		for i, v := range all {
			if v.Equal(*preferred) {
				versions = make([]version.Version, 0, len(all))
				versions = append(versions, v)
				versions = append(versions, all[:i]...)
				versions = append(versions, all[i+1:]...)
				break
			}
		}
	}
	return &versionQueue{id: id, versions: versions}
}

// current returns the version at the cursor, or false once exhausted.
func (q *versionQueue) current() (version.Version, bool) {
	if q.cursor >= len(q.versions) {
		return version.Version{}, false
	}
	return q.versions[q.cursor], true
}

// advance records why the current version was rejected and moves the
// cursor forward to the next candidate.
func (q *versionQueue) advance(reason error) {
	if cur, ok := q.current(); ok {
		q.fails = append(q.fails, failedVersion{v: cur, reason: reason})
	}
	q.cursor++
}

// exhausted reports whether every version has been tried.
func (q *versionQueue) exhausted() bool {
	return q.cursor >= len(q.versions)
}
