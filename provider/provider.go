// Package provider implements the PackageProvider contract the
// resolver consumes: a lazy catalog that, given a package identifier,
// yields its available versions and, for any chosen version, its
// direct dependencies.
package provider

import (
	"context"
	"fmt"

	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

// ID is the opaque, hashable, totally-ordered package identifier a
// provider hands out.
type ID = versionset.PackageID

// Container is the provider-side handle to a single package's
// metadata.
type Container interface {
	// Versions returns the package's available versions in
	// descending order. The sequence is finite; callers may index
	// into it repeatedly.
	Versions() []version.Version

	// Dependencies returns the direct dependencies of the given
	// version. Deterministic: the same (id, version) always yields the
	// same result.
	Dependencies(v version.Version) ([]versionset.Constraint, error)
}

// Provider is the capability the resolver consumes: given a package
// identifier, yields its Container, or fails with UnknownPackage /
// ContainerLoadFailure.
type Provider interface {
	GetContainer(ctx context.Context, id ID) (Container, error)
}

// UnknownPackage reports that the provider has no container for id at
// all — a fatal error, not a local conflict.
type UnknownPackage struct {
	ID ID
}

func (e *UnknownPackage) Error() string {
	return fmt.Sprintf("unknown package %q", e.ID)
}

// ContainerLoadFailure reports that fetching a container failed for a
// reason unrelated to constraint satisfaction — I/O, a malformed
// manifest the provider encountered, etc. Always fatal.
type ContainerLoadFailure struct {
	ID    ID
	Cause error
}

func (e *ContainerLoadFailure) Error() string {
	return fmt.Sprintf("failed to load container for %q: %s", e.ID, e.Cause)
}

func (e *ContainerLoadFailure) Unwrap() error { return e.Cause }
