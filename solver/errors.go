package solver

import (
	"bytes"
	"fmt"

	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
	"github.com/pkg/errors"
)

// ConflictKind discriminates the shapes of local conflict the search
// can hit, mirroring the error taxonomy of the historical solver
// (golang-dep/errors.go: noVersionError, disjointConstraintFailure,
// constraintNotAllowedFailure, versionNotAllowedFailure) folded into
// one structured type.
type ConflictKind int

const (
	// NoVersionAvailable: every version of a package was tried and
	// rejected — the versionQueue is exhausted.
	NoVersionAvailable ConflictKind = iota
	// DisjointConstraint: a newly-bound version's dependency
	// constraint has no overlap with the target's existing
	// requirement.
	DisjointConstraint
	// VersionNotAllowed: a newly-bound version's dependency constraint
	// does not admit an already-bound version of its target.
	VersionNotAllowed
)

func (k ConflictKind) String() string {
	switch k {
	case NoVersionAvailable:
		return "no version available"
	case DisjointConstraint:
		return "disjoint constraint"
	case VersionNotAllowed:
		return "version not allowed"
	default:
		return "unknown conflict"
	}
}

// Conflict is the local, backtrackable failure signal that drives the
// search — a control-flow signal, not a fatal error. It is never
// returned to a caller except folded into the Unsatisfiable witness at
// the root.
type Conflict struct {
	Kind ConflictKind
	// Package is the package the conflict was discovered against.
	Package provider.ID
	// Constraints are the incompatible constraints involved, enough to
	// build a human error message pointing at the two or more
	// incompatible edges.
	Constraints []versionset.Constraint
	// Fails carries the individual version rejections that led to a
	// NoVersionAvailable conflict, if that's the kind.
	Fails []failedVersion
}

func (c *Conflict) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s on %s", c.Kind, c.Package)
	if len(c.Constraints) > 0 {
		fmt.Fprint(&buf, ":")
		for _, con := range c.Constraints {
			fmt.Fprintf(&buf, "\n\t%s", con)
		}
	}
	for _, f := range c.Fails {
		fmt.Fprintf(&buf, "\n\t%s: %s", f.v, f.reason)
	}
	return buf.String()
}

// UnknownPackage, ContainerLoadFailure are re-exported from provider
// for callers that only import solver — they are always fatal and
// propagate unchanged from the PackageProvider up through Resolve.
type (
	UnknownPackage       = provider.UnknownPackage
	ContainerLoadFailure = provider.ContainerLoadFailure
)

// MalformedVersion, MalformedVersionSet are likewise re-exported; the
// resolver core itself never constructs these (parsing is the
// provider's or the caller's job), but they are fatal when a provider
// surfaces one.
type (
	MalformedVersion    = version.MalformedVersion
	MalformedVersionSet = versionset.MalformedVersionSet
)

// Cancelled reports that the caller's context was done before the
// search completed.
type Cancelled struct {
	Cause error
}

func (e *Cancelled) Error() string { return fmt.Sprintf("resolution cancelled: %s", e.Cause) }
func (e *Cancelled) Unwrap() error { return e.Cause }

// CycleError renders the cycle path of a CycleDetectedStatus result as
// an error, for callers that would rather treat a detected cycle as a
// failure than branch on Status. AssignmentResult.Err constructs one
// when Status is CycleDetectedStatus; the search itself never
// constructs or returns one directly, since a cycle is not backtracked
// past — it aborts the whole search by way of AssignmentResult, not an
// error return from Resolve.
type CycleError struct {
	Path []provider.ID
}

func (e *CycleError) Error() string {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "dependency cycle: ")
	for i, id := range e.Path {
		if i > 0 {
			fmt.Fprint(&buf, " -> ")
		}
		fmt.Fprint(&buf, id)
	}
	return buf.String()
}

// wrapProviderFailure wraps a non-taxonomy error returned by a
// Container's Dependencies() call as a ContainerLoadFailure, carrying
// the cause the way github.com/pkg/errors-wrapped errors do throughout
// the teacher lineage (golang-dep's pervasive pkg/errors usage).
func wrapProviderFailure(id provider.ID, err error) error {
	switch err.(type) {
	case *provider.UnknownPackage, *provider.ContainerLoadFailure:
		return err
	default:
		return &provider.ContainerLoadFailure{ID: id, Cause: errors.Wrap(err, "provider")}
	}
}
