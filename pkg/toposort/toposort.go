package toposort

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrCircularDependency is returned when the input contains a dependency cycle.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrMissingDependency is returned when a required dependency is not found.
	ErrMissingDependency = errors.New("dependency not found")

	// ErrDuplicateNode is returned when two items share an ID.
	ErrDuplicateNode = errors.New("duplicate node")
)

// TopoSortable is a node in a dependency graph.
type TopoSortable interface {
	TPID() string
	DependencyTPIDs() []string
}

// CycleError describes one cycle found in the input. Path starts and ends
// with the same ID.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCircularDependency, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}

// Sort performs a topological sort of the provided items using Kahn's algorithm.
//
// Dependencies come before their dependents. Among items that are ready at
// the same time, the one that appears earlier in items goes first, so the
// output is deterministic and follows declaration order where it can.
//
// If a cycle is detected the function returns a *CycleError, which wraps
// ErrCircularDependency.
//
// If ignoreMissingDeps is true, dependencies that are not present in the provided
// items slice are ignored instead of causing an error.
func Sort[T TopoSortable](items []T, ignoreMissingDeps bool) ([]T, error) {
	n := len(items)
	if n == 0 {
		return nil, nil
	}

	pos := make(map[string]int, n)
	for i, it := range items {
		id := it.TPID()
		if _, dup := pos[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, id)
		}
		pos[id] = i
	}

	// adjacency list by position: dep -> nodes that depend on it
	adj := make([][]int, n)
	indeg := make([]int, n)

	for i, it := range items {
		id := it.TPID()
		for _, dep := range it.DependencyTPIDs() {
			if dep == id {
				return nil, &CycleError{Path: []string{id, id}}
			}
			depPos, ok := pos[dep]
			if !ok {
				if ignoreMissingDeps {
					continue
				}
				return nil, fmt.Errorf("dependency %q of %q not found: %w", dep, id, ErrMissingDependency)
			}
			adj[depPos] = append(adj[depPos], i)
			indeg[i]++
		}
	}

	ready := make([]int, 0, n)
	for i := range items {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	result := make([]T, 0, n)
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		result = append(result, items[next])
		for _, dependent := range adj[next] {
			indeg[dependent]--
			if indeg[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		slices.Sort(ready)
	}

	if len(result) != n {
		return nil, &CycleError{Path: findCycle(items, pos, indeg, ignoreMissingDeps)}
	}

	return result, nil
}

// findCycle walks unresolved nodes until one repeats. Every node left with a
// positive indegree has at least one unresolved dependency, so the walk
// always closes a loop.
func findCycle[T TopoSortable](items []T, pos map[string]int, indeg []int, ignoreMissingDeps bool) []string {
	start := slices.IndexFunc(indeg, func(d int) bool { return d > 0 })
	if start < 0 {
		return nil
	}

	seenAt := make(map[int]int)
	var path []string
	cur := start
	for {
		if at, seen := seenAt[cur]; seen {
			return append(path[at:], items[cur].TPID())
		}
		seenAt[cur] = len(path)
		path = append(path, items[cur].TPID())

		next := -1
		for _, dep := range items[cur].DependencyTPIDs() {
			depPos, ok := pos[dep]
			if !ok && ignoreMissingDeps {
				continue
			}
			if ok && indeg[depPos] > 0 {
				next = depPos
				break
			}
		}
		if next < 0 {
			return path
		}
		cur = next
	}
}
