package bundle

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"martianoff/stjs/internal/emit"
	"martianoff/stjs/stjserr"
)

// CycleError names every unit taking part in a dependency cycle. Each
// cycle lists its units in first-seen order.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, " -> ")
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, "; "))
}

func (e *CycleError) Type() stjserr.ErrorType {
	return stjserr.TypeCycle
}

// depGraph is the dependency graph of a unit selection. Edges run from a
// dependency to its dependent, so a topological order is a load order.
type depGraph struct {
	g     graph.Graph[string, string]
	index map[string]int
}

// newDepGraph adds one vertex per unit in the given order. Dependencies on
// units outside the selection and on the unit itself are ignored.
func newDepGraph(units []*emit.Unit) (*depGraph, error) {
	d := &depGraph{
		g:     graph.New(graph.StringHash, graph.Directed()),
		index: make(map[string]int, len(units)),
	}
	for _, u := range units {
		if _, dup := d.index[u.ID]; dup {
			return nil, fmt.Errorf("unit %s selected twice", u.ID)
		}
		d.index[u.ID] = len(d.index)
		if err := d.g.AddVertex(u.ID); err != nil {
			return nil, err
		}
	}
	for _, u := range units {
		for _, dep := range u.Dependencies {
			if dep == u.ID {
				continue
			}
			if _, selected := d.index[dep]; !selected {
				continue
			}
			if err := d.g.AddEdge(dep, u.ID); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, err
			}
		}
	}
	return d, nil
}

func (d *depGraph) less(a, b string) bool {
	return d.index[a] < d.index[b]
}

// cycles returns the strongly connected components with more than one
// unit, ordered by their earliest unit.
func (d *depGraph) cycles() ([][]string, error) {
	comps, err := graph.StronglyConnectedComponents(d.g)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, c := range comps {
		if len(c) < 2 {
			continue
		}
		c = append([]string(nil), c...)
		sort.Slice(c, func(i, j int) bool { return d.less(c[i], c[j]) })
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return d.less(out[i][0], out[j][0]) })
	return out, nil
}

// order returns a load order: every unit after its dependencies, ties
// broken by first-seen order. A cyclic graph fails with *CycleError.
func (d *depGraph) order() ([]string, error) {
	cycles, err := d.cycles()
	if err != nil {
		return nil, err
	}
	if len(cycles) > 0 {
		return nil, &CycleError{Cycles: cycles}
	}
	return graph.StableTopologicalSort(d.g, d.less)
}

// Order returns the load order of units without bundling them.
func Order(units []*emit.Unit) ([]string, error) {
	d, err := newDepGraph(units)
	if err != nil {
		return nil, err
	}
	return d.order()
}
