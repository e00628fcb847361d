// Package solver implements the resolver core itself: a DPLL-style
// backtracking search over a lazily-discovered package graph. It is
// the heart of the module — every other package exists to feed or
// observe this one.
package solver

import (
	"context"
	"errors"

	"github.com/depsolve/resolvercore/provider"
	"github.com/depsolve/resolvercore/version"
	"github.com/depsolve/resolvercore/versionset"
)

// Status classifies how a search concluded.
type Status int

const (
	// Solved means Mapping is a total, consistent assignment for
	// every package reachable from the roots.
	Solved Status = iota
	// Unsatisfiable means the search exhausted every alternative
	// without finding a consistent assignment; Witness explains why.
	Unsatisfiable
	// CycleDetectedStatus means the bound packages formed a
	// dependency cycle; CyclePath names it. This is fatal, not a
	// local conflict — the search does not backtrack past it.
	CycleDetectedStatus
)

func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case Unsatisfiable:
		return "unsatisfiable"
	case CycleDetectedStatus:
		return "cycle detected"
	default:
		return "unknown"
	}
}

// AssignmentResult is what Resolve returns once the search concludes
// without a fatal error.
type AssignmentResult struct {
	Status    Status
	Mapping   map[provider.ID]version.Version
	Witness   *Conflict
	CyclePath []provider.ID
	Attempts  int
}

// Err returns the error describing why the search did not solve, or
// nil if Status is Solved. Unsatisfiable yields r.Witness directly;
// CycleDetectedStatus is wrapped in a *CycleError over r.CyclePath —
// useful for a caller that wants one uniform error check rather than
// a switch on Status.
func (r *AssignmentResult) Err() error {
	switch r.Status {
	case Unsatisfiable:
		return r.Witness
	case CycleDetectedStatus:
		return &CycleError{Path: r.CyclePath}
	default:
		return nil
	}
}

// Options configures a Resolver.
type Options struct {
	// Preferred primes each package's version queue with a favored
	// version — e.g. one already locked by a prior resolution — tried
	// first but never added to what the provider actually offers.
	Preferred map[provider.ID]version.Version
	// Nogoods enables the conservative exact-signature conflict cache
	// (nogood.go). Off by default: it only ever saves work, never
	// changes the result.
	Nogoods bool
	// Delegate observes the search. Nil means NopDelegate.
	Delegate Delegate
}

// Resolver runs the backtracking search against a single
// provider.Provider. A Resolver holds no search state of its own, so
// the same Resolver can run concurrent, independent Resolve calls.
type Resolver struct {
	provider provider.Provider
	opts     Options
	delegate Delegate
}

// New builds a Resolver over p. Callers that want per-package
// concurrency-safe caching and call deduplication should wrap p in
// provider.NewCache first.
func New(p provider.Provider, opts Options) *Resolver {
	d := opts.Delegate
	if d == nil {
		d = NopDelegate{}
	}
	return &Resolver{provider: p, opts: opts, delegate: d}
}

var (
	errExcludedByRequirement = errors.New("version excluded by accumulated requirement")
	errNogoodSkip            = errors.New("version skipped: requirement previously proven conflicting")
)

// search is the mutable state of one Resolve call — never shared
// across calls, so Resolver itself stays reentrant.
type search struct {
	resolver   *Resolver
	assignment *Assignment
	queues     map[provider.ID]*versionQueue
	boundDeps  map[provider.ID][]provider.ID
	nogoods    *nogoodCache
	attempts   int
}

// Resolve runs the search to completion starting from roots — the
// caller's own top-level dependency constraints. It returns a non-nil
// error only for fatal conditions: an unknown package, a provider
// failure, a malformed version or version set surfacing from the
// provider, or cancellation. Everything else — satisfiable,
// unsatisfiable, or a cycle — comes back as an AssignmentResult (see
// AssignmentResult.Err for turning that outcome into an error too).
func (r *Resolver) Resolve(ctx context.Context, roots []versionset.Constraint) (*AssignmentResult, error) {
	s := &search{
		resolver:   r,
		assignment: newAssignment(),
		queues:     make(map[provider.ID]*versionQueue),
		boundDeps:  make(map[provider.ID][]provider.ID),
	}
	if r.opts.Nogoods {
		s.nogoods = newNogoodCache()
	}

	for _, c := range roots {
		s.assignment.ensure(c.Package)
		cur := s.assignment.Requirement(c.Package)
		s.assignment.requirements[c.Package] = versionset.Intersect(cur, c.Set)
	}

	var stack []*frame
	var nextID provider.ID
	haveNext := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, &Cancelled{Cause: err}
		}

		var id provider.ID
		if haveNext {
			id = nextID
			haveNext = false
		} else {
			sid, ok, err := s.selectNext(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return &AssignmentResult{
					Status:   Solved,
					Mapping:  s.assignment.Snapshot(),
					Attempts: s.attempts,
				}, nil
			}
			id = sid
		}

		q, err := s.ensureQueue(ctx, id)
		if err != nil {
			return nil, err
		}

		r.delegate.WillResolve(id)
		f, conflict, err := s.findValidVersion(ctx, id, q)
		if err != nil {
			return nil, err
		}
		s.attempts++

		if conflict == nil {
			stack = append(stack, f)
			s.boundDeps[id] = f.deps
			r.delegate.DidResolve(id, f.version)
			if path, cyclic := hasCycleFrom(s.boundDeps, id); cyclic {
				return &AssignmentResult{
					Status:    CycleDetectedStatus,
					CyclePath: path,
					Attempts:  s.attempts,
				}, nil
			}
			continue
		}

		if len(stack) == 0 {
			return &AssignmentResult{
				Status:   Unsatisfiable,
				Witness:  conflict,
				Attempts: s.attempts,
			}, nil
		}

		last := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r.delegate.WillBacktrack(last.id)
		s.assignment.undo(last)
		delete(s.boundDeps, last.id)
		// Every other package left unbound is decided afresh under the
		// changed assignment, so its queue restarts from the top.
		for qid, pq := range s.queues {
			if _, bound := s.assignment.Bound(qid); !bound && qid != last.id {
				pq.cursor, pq.fails = 0, nil
			}
		}
		s.queues[last.id].advance(conflict)
		nextID = last.id
		haveNext = true
	}
}

// ensureQueue builds and caches the versionQueue for id on first use,
// priming it with any configured preferred version.
func (s *search) ensureQueue(ctx context.Context, id provider.ID) (*versionQueue, error) {
	if q, ok := s.queues[id]; ok {
		return q, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &Cancelled{Cause: err}
	}
	container, err := s.resolver.provider.GetContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	var preferred *version.Version
	if v, ok := s.resolver.opts.Preferred[id]; ok {
		preferred = &v
	}
	q := newVersionQueue(id, container.Versions(), preferred)
	q.container = container
	s.queues[id] = q
	return q, nil
}

// selectNext implements the most-constrained-variable heuristic: of
// the packages mentioned but not yet bound, pick the one with the
// fewest versions still admissible under its current requirement,
// breaking ties by first-introduction order so the search is
// deterministic.
func (s *search) selectNext(ctx context.Context) (provider.ID, bool, error) {
	pending := s.assignment.Pending()
	if len(pending) == 0 {
		return "", false, nil
	}

	var best provider.ID
	bestCount := -1
	bestIntro := -1
	for _, id := range pending {
		q, err := s.ensureQueue(ctx, id)
		if err != nil {
			return "", false, err
		}
		req := s.assignment.Requirement(id)
		count := 0
		for i := q.cursor; i < len(q.versions); i++ {
			if req.Contains(q.versions[i]) {
				count++
			}
		}
		intro := s.assignment.IntroductionOrder(id)
		if bestCount == -1 || count < bestCount || (count == bestCount && intro < bestIntro) {
			best, bestCount, bestIntro = id, count, intro
		}
	}
	return best, true, nil
}

// findValidVersion walks q from its current cursor until it finds a
// version whose dependencies are consistent with the current
// assignment, or exhausts the queue.
func (s *search) findValidVersion(ctx context.Context, id provider.ID, q *versionQueue) (*frame, *Conflict, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, &Cancelled{Cause: err}
		}

		v, ok := q.current()
		if !ok {
			return nil, &Conflict{
				Kind:    NoVersionAvailable,
				Package: id,
				Fails:   append([]failedVersion(nil), q.fails...),
			}, nil
		}

		req := s.assignment.Requirement(id)
		if !req.Contains(v) {
			q.advance(errExcludedByRequirement)
			continue
		}

		var sig string
		if s.nogoods != nil {
			sig = signature(id, req, s.assignment) + "@" + v.String()
			if s.nogoods.knownBad(sig) {
				q.advance(errNogoodSkip)
				continue
			}
		}

		deps, err := q.container.Dependencies(v)
		if err != nil {
			return nil, nil, wrapProviderFailure(id, err)
		}

		f, conflict := s.tryCandidate(id, v, deps)
		if conflict != nil {
			s.resolver.delegate.Conflict(versionset.Constraint{Package: id, Set: req}, conflict.Error())
			if s.nogoods != nil {
				s.nogoods.record(sig)
			}
			q.advance(conflict)
			continue
		}
		return f, nil, nil
	}
}

// tryCandidate checks v's dependencies against the current assignment
// and, only if every one is consistent, commits them into a new frame.
// It never partially commits: either every dependency narrows cleanly
// or the assignment is left untouched.
func (s *search) tryCandidate(id provider.ID, v version.Version, deps []versionset.Constraint) (*frame, *Conflict) {
	for _, c := range deps {
		if bound, isBound := s.assignment.Bound(c.Package); isBound {
			if !c.Set.Contains(bound) {
				return nil, &Conflict{
					Kind:    VersionNotAllowed,
					Package: c.Package,
					Constraints: []versionset.Constraint{
						c,
						{Package: c.Package, Set: versionset.Exact(bound)},
					},
				}
			}
			continue
		}
		cur := s.assignment.Requirement(c.Package)
		if versionset.Intersect(cur, c.Set).IsEmpty() {
			return nil, &Conflict{
				Kind:    DisjointConstraint,
				Package: c.Package,
				Constraints: []versionset.Constraint{
					c,
					{Package: c.Package, Set: cur},
				},
			}
		}
	}

	f := newFrame(id, v)
	s.assignment.bind(f)
	deps2 := make([]provider.ID, 0, len(deps))
	for _, c := range deps {
		cur := s.assignment.Requirement(c.Package)
		s.assignment.narrow(f, c.Package, versionset.Intersect(cur, c.Set))
		deps2 = append(deps2, c.Package)
	}
	f.deps = deps2
	return f, nil
}

// hasCycleFrom reports whether start reaches itself over boundDeps —
// the only cycle a new bind can have created, since every edge that
// existed before this bind was already acyclic.
func hasCycleFrom(boundDeps map[provider.ID][]provider.ID, start provider.ID) ([]provider.ID, bool) {
	var path []provider.ID
	visiting := make(map[provider.ID]bool)

	var dfs func(id provider.ID) bool
	dfs = func(id provider.ID) bool {
		if id == start && len(path) > 0 {
			path = append(path, id)
			return true
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		path = append(path, id)
		for _, next := range boundDeps[id] {
			if dfs(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		visiting[id] = false
		return false
	}

	if dfs(start) {
		return path, true
	}
	return nil, false
}
