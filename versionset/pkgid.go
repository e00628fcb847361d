package versionset

// PackageID is the opaque, hashable, totally-ordered package identifier
// supplied by a provider. It is string-backed so it can key maps
// directly and sort with the builtin `<`.
type PackageID string
