package solver

import (
	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
	"github.com/sirupsen/logrus"
)

// Delegate is an optional, side-effect-only observer over the search.
// It must not mutate resolver state — the Resolver only ever hands it
// values (package ids, versions, constraints), never the Assignment.
type Delegate interface {
	WillResolve(id provider.ID)
	DidResolve(id provider.ID, v version.Version)
	WillBacktrack(id provider.ID)
	Conflict(c versionset.Constraint, reason string)
}

// NopDelegate implements Delegate with no-ops; used when a caller
// passes nil.
type NopDelegate struct{}

func (NopDelegate) WillResolve(provider.ID)                 {}
func (NopDelegate) DidResolve(provider.ID, version.Version) {}
func (NopDelegate) WillBacktrack(provider.ID)               {}
func (NopDelegate) Conflict(versionset.Constraint, string)  {}

// LogDelegate is a ready-made Delegate (a nil Options.Delegate gets
// NopDelegate, not this one), logging each hook through
// logrus with level-gated, field-structured calls the way the
// historical solver logged its own search
// (golang-dep/solver.go: `s.l.WithFields(logrus.Fields{...}).Debug(...)`
// throughout `solve`, `createVersionQueue`, `findValidVersion`,
// `satisfiable`, and `backtrack`).
type LogDelegate struct {
	Log *logrus.Logger
}

// NewLogDelegate returns a LogDelegate over l, or a fresh
// warn-level logger if l is nil.
func NewLogDelegate(l *logrus.Logger) *LogDelegate {
	if l == nil {
		l = logrus.New()
		l.SetLevel(logrus.WarnLevel)
	}
	return &LogDelegate{Log: l}
}

func (d *LogDelegate) WillResolve(id provider.ID) {
	if d.Log.IsLevelEnabled(logrus.DebugLevel) {
		d.Log.WithField("package", id).Debug("selecting package to decide")
	}
}

func (d *LogDelegate) DidResolve(id provider.ID, v version.Version) {
	if d.Log.IsLevelEnabled(logrus.InfoLevel) {
		d.Log.WithFields(logrus.Fields{"package": id, "version": v.String()}).Info("accepted version")
	}
}

func (d *LogDelegate) WillBacktrack(id provider.ID) {
	if d.Log.IsLevelEnabled(logrus.InfoLevel) {
		d.Log.WithField("package", id).Info("backtracking past package")
	}
}

func (d *LogDelegate) Conflict(c versionset.Constraint, reason string) {
	if d.Log.IsLevelEnabled(logrus.DebugLevel) {
		d.Log.WithFields(logrus.Fields{"constraint": c.String(), "reason": reason}).Debug("conflict")
	}
}
