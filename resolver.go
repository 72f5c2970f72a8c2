// resolver.go: dependency graph resolution with topological ordering
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package pluginhost

// ResolveDependencies orders manifests so that every dependency appears
// before every dependent, or fails with a structured diagnostic:
//
//   - ErrCodeCircularDependency when the graph contains a cycle; the error
//     carries the full cycle as an ordered id sequence with the first id
//     repeated at the end ([A B A], a self-dependency yields [A A])
//   - ErrCodeDependencyNotFound when a declared dependency is absent from
//     the input set, at any depth
//   - ErrCodeVersionMismatch when a dependency's concrete version does not
//     satisfy a requester's declared range
//
// The returned slice is a permutation of the input; descriptors are never
// mutated. Resolution is stateless: each call builds its own id index and is
// independent of prior calls.
//
// Traversal is depth-first, rooted at each input manifest in input order,
// which makes both the output order and the first-reported diagnostic
// deterministic for a fixed input order. When several requesters declare
// ranges over the same dependency, the first requester discovered by the
// traversal wins; a later conflicting requester fails with a version-mismatch
// diagnostic attributed to itself, even though the dependency was already
// fully resolved.
func ResolveDependencies(manifests []*Manifest) ([]*Manifest, error) {
	r := &depResolver{
		byID:       make(map[string]*Manifest, len(manifests)),
		inProgress: make(map[string]bool),
		done:       make(map[string]bool),
		order:      make([]*Manifest, 0, len(manifests)),
	}
	for _, m := range manifests {
		if _, exists := r.byID[m.ID]; !exists {
			r.byID[m.ID] = m
		}
	}

	for _, m := range manifests {
		if err := r.visit(m.ID, "", nil); err != nil {
			return nil, err
		}
	}

	return r.order, nil
}

// depResolver holds the per-call traversal state. Each id is in exactly one
// of three states: unvisited, in-progress (on the current DFS stack), or done
// (fully processed and appended to order).
type depResolver struct {
	byID       map[string]*Manifest
	inProgress map[string]bool
	done       map[string]bool
	order      []*Manifest
}

// visit processes id, requested with requiredRange by the last element of
// path (path is the id sequence from a traversal root to the immediate
// requester; it is empty for root visits, which carry no range).
func (r *depResolver) visit(id, requiredRange string, path []string) error {
	if r.done[id] {
		// Already resolved in this run, but a later requester may impose a
		// stricter range than the one that got the node here.
		return r.checkRange(id, requiredRange, path)
	}

	if r.inProgress[id] {
		return NewCircularDependencyError(cycleFrom(path, id))
	}

	m, exists := r.byID[id]
	if !exists {
		return NewDependencyNotFoundError(id, requesterOf(path))
	}

	if err := r.checkRange(id, requiredRange, path); err != nil {
		return err
	}

	r.inProgress[id] = true
	for _, dep := range m.Dependencies {
		if err := r.visit(dep.ID, dep.VersionRange, append(path, id)); err != nil {
			return err
		}
	}
	delete(r.inProgress, id)

	r.done[id] = true
	r.order = append(r.order, m)
	return nil
}

// checkRange validates id's declared version against requiredRange. An empty
// range means the requester accepts any version. Malformed versions or ranges
// are owned here, not by the matcher, and surface as a version mismatch.
func (r *depResolver) checkRange(id, requiredRange string, path []string) error {
	if requiredRange == "" {
		return nil
	}
	m := r.byID[id]
	ok, err := checkVersion(m.Version, requiredRange)
	if err != nil || !ok {
		return NewVersionMismatchError(id, m.Version, requiredRange, requesterOf(path))
	}
	return nil
}

// cycleFrom extracts the cycle as the sub-sequence of path starting at id's
// first occurrence, closed by repeating id.
func cycleFrom(path []string, id string) []string {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	return append(cycle, id)
}

// requesterOf returns the immediate requester recorded in path, or "" for
// root-level visits.
func requesterOf(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
