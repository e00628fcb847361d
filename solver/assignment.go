package solver

import (
	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

// Assignment is the resolver's working state: a partial mapping
// package → Version (bindings) plus the conjunction of active
// constraints per package (requirements).
//
// It is mutated only by the Resolver along a single logical stack —
// apart from seeding the root constraints before the search starts,
// every mutation either goes through a decision frame (undoable) or is
// the monotonic first-introduction of a package into requirements.
type Assignment struct {
	bindings     map[provider.ID]version.Version
	requirements map[provider.ID]versionset.VersionSet
	order        []provider.ID
	introduced   map[provider.ID]int
}

func newAssignment() *Assignment {
	return &Assignment{
		bindings:     make(map[provider.ID]version.Version),
		requirements: make(map[provider.ID]versionset.VersionSet),
		introduced:   make(map[provider.ID]int),
	}
}

// ensure records id's first introduction, if it isn't already known,
// defaulting its requirement to Any.
func (a *Assignment) ensure(id provider.ID) (isNew bool) {
	if _, ok := a.requirements[id]; ok {
		return false
	}
	a.requirements[id] = versionset.Any
	a.introduced[id] = len(a.order)
	a.order = append(a.order, id)
	return true
}

// Requirement returns the current accumulated VersionSet for id, Any
// if id has never been mentioned.
func (a *Assignment) Requirement(id provider.ID) versionset.VersionSet {
	if vs, ok := a.requirements[id]; ok {
		return vs
	}
	return versionset.Any
}

// Bound returns id's tentative binding, if any.
func (a *Assignment) Bound(id provider.ID) (version.Version, bool) {
	v, ok := a.bindings[id]
	return v, ok
}

// IntroductionOrder returns the index at which id was first mentioned,
// used for the selection heuristic's deterministic tie-break.
func (a *Assignment) IntroductionOrder(id provider.ID) int {
	if i, ok := a.introduced[id]; ok {
		return i
	}
	return -1
}

// Pending returns the unbound packages that have been mentioned so
// far, in first-introduction order.
func (a *Assignment) Pending() []provider.ID {
	var out []provider.ID
	for _, id := range a.order {
		if _, bound := a.bindings[id]; !bound {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot copies out the current bindings. A copy, not a live handle,
// so whoever holds it (such as the Mapping Resolve returns) cannot
// accidentally mutate resolver state, even by aliasing.
func (a *Assignment) Snapshot() map[provider.ID]version.Version {
	out := make(map[provider.ID]version.Version, len(a.bindings))
	for k, v := range a.bindings {
		out[k] = v
	}
	return out
}

// frame is one decision's undo record: a tentative binding plus the
// delta to requirements and the set of packages newly introduced, so
// backtracking restores state in O(|delta|) rather than replaying the
// whole search from scratch.
type frame struct {
	id      provider.ID
	version version.Version

	// prior holds, for each package this frame narrowed, the
	// requirement value it had immediately before this frame touched
	// it (first touch only).
	prior map[provider.ID]versionset.VersionSet
	// fresh holds the packages this frame introduced for the first
	// time — on undo these are removed entirely, not just reverted.
	fresh []provider.ID
	// deps holds the direct dependency package ids this frame's
	// version declared, used only to extend the cycle-detection graph
	// (solver.go's boundDeps) once the frame is committed.
	deps []provider.ID
}

func newFrame(id provider.ID, v version.Version) *frame {
	return &frame{id: id, version: v, prior: make(map[provider.ID]versionset.VersionSet)}
}

// bind tentatively binds f.id to f.version.
func (a *Assignment) bind(f *frame) {
	a.bindings[f.id] = f.version
}

// narrow intersects dep's requirement with newSet, recording the
// pre-narrow value in f so it can be restored on undo.
func (a *Assignment) narrow(f *frame, dep provider.ID, newSet versionset.VersionSet) {
	if a.ensure(dep) {
		f.fresh = append(f.fresh, dep)
	}
	if _, touched := f.prior[dep]; !touched {
		f.prior[dep] = a.requirements[dep]
	}
	a.requirements[dep] = newSet
}

// undo reverts f: drops the tentative binding, restores every
// requirement this frame narrowed, and removes packages this frame
// introduced for the first time.
func (a *Assignment) undo(f *frame) {
	delete(a.bindings, f.id)
	for dep, prior := range f.prior {
		a.requirements[dep] = prior
	}
	for _, id := range f.fresh {
		delete(a.requirements, id)
		delete(a.introduced, id)
		for i, oid := range a.order {
			if oid == id {
				a.order = append(a.order[:i], a.order[i+1:]...)
				break
			}
		}
	}
}
