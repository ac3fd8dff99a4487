package cpm

import (
	"container/heap"
	"fmt"
)

// Edge is a dependency from a predecessor to its successor.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UnresolvedRef is a predecessor name that matches no declared activity.
type UnresolvedRef struct {
	Activity    string `json:"activity"`
	Predecessor string `json:"predecessor"`
}

// Graph is the validated, acyclic dependency structure of a set of activities.
// Every list it returns follows registry order.
type Graph struct {
	activities []Activity
	position   map[string]int

	successors   [][]int // by position
	predecessors [][]int // by position, resolved only
	unresolved   []UnresolvedRef
	order        []int // topological
}

// BuildGraph adds an edge predecessor -> activity for every resolvable
// predecessor name. Unknown names contribute no edge and are reported by
// Unresolved. Duplicate activity names, empty names and any cycle, including
// an activity naming itself, are rejected.
func BuildGraph(activities []Activity) (*Graph, error) {
	g := &Graph{
		activities:   make([]Activity, len(activities)),
		position:     make(map[string]int, len(activities)),
		successors:   make([][]int, len(activities)),
		predecessors: make([][]int, len(activities)),
	}
	copy(g.activities, activities)

	for i, a := range g.activities {
		if a.Name == "" {
			return nil, &GraphError{Kind: ErrValidation, Msg: fmt.Sprintf("activity %d has no name", i+1)}
		}
		if _, exists := g.position[a.Name]; exists {
			return nil, &GraphError{Kind: ErrDuplicateActivity, Msg: fmt.Sprintf("%q", a.Name), Path: []string{a.Name}}
		}
		g.position[a.Name] = i
	}

	for i := range g.activities {
		a := &g.activities[i]
		if a.Predecessors == nil {
			a.Predecessors = ParsePredecessors(a.PredecessorText)
		}
		seen := make(map[int]struct{}, len(a.Predecessors))
		for _, name := range a.Predecessors {
			p, ok := g.position[name]
			if !ok {
				g.unresolved = append(g.unresolved, UnresolvedRef{Activity: a.Name, Predecessor: name})
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			g.predecessors[i] = append(g.predecessors[i], p)
		}
	}

	// Successor lists are filled in registry order of the successor.
	for i := range g.activities {
		for _, p := range g.predecessors[i] {
			g.successors[p] = append(g.successors[p], i)
		}
	}

	g.order = g.topoOrder()
	if len(g.order) != len(g.activities) {
		return nil, cycleError(g.findCycle())
	}
	return g, nil
}

// Len returns the number of activities in the graph.
func (g *Graph) Len() int { return len(g.activities) }

// Activities returns the graph's activities in registry order.
func (g *Graph) Activities() []Activity {
	out := make([]Activity, len(g.activities))
	copy(out, g.activities)
	return out
}

// Activity returns the activity named name.
func (g *Graph) Activity(name string) (Activity, bool) {
	i, ok := g.position[name]
	if !ok {
		return Activity{}, false
	}
	return g.activities[i], true
}

// Successors returns the names that depend directly on name.
func (g *Graph) Successors(name string) []string {
	i, ok := g.position[name]
	if !ok {
		return nil
	}
	return g.names(g.successors[i])
}

// Predecessors returns the resolved predecessor names of name.
func (g *Graph) Predecessors(name string) []string {
	i, ok := g.position[name]
	if !ok {
		return nil
	}
	return g.names(g.predecessors[i])
}

// Roots returns activities with no resolved predecessors.
func (g *Graph) Roots() []string {
	var out []string
	for i, preds := range g.predecessors {
		if len(preds) == 0 {
			out = append(out, g.activities[i].Name)
		}
	}
	return out
}

// Leaves returns activities with no successors.
func (g *Graph) Leaves() []string {
	var out []string
	for i, succ := range g.successors {
		if len(succ) == 0 {
			out = append(out, g.activities[i].Name)
		}
	}
	return out
}

// Edges returns every dependency edge, grouped by successor in registry order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for i, preds := range g.predecessors {
		for _, p := range preds {
			out = append(out, Edge{From: g.activities[p].Name, To: g.activities[i].Name})
		}
	}
	return out
}

// Unresolved returns the predecessor references that matched no activity.
func (g *Graph) Unresolved() []UnresolvedRef {
	out := make([]UnresolvedRef, len(g.unresolved))
	copy(out, g.unresolved)
	return out
}

// TopologicalOrder returns activity names such that every predecessor precedes
// its successors. Ties are broken by registry order.
func (g *Graph) TopologicalOrder() []string {
	return g.names(g.order)
}

// checkUnresolved applies policy to the graph's unresolved references and
// returns the ones the caller should surface.
func (g *Graph) checkUnresolved(policy UnresolvedPolicy) ([]UnresolvedRef, error) {
	if len(g.unresolved) == 0 {
		return nil, nil
	}
	switch policy {
	case UnresolvedIgnore:
		return nil, nil
	case UnresolvedReject:
		return nil, unresolvedError(g.unresolved)
	default:
		return g.Unresolved(), nil
	}
}

func (g *Graph) names(idx []int) []string {
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.activities[i].Name)
	}
	return out
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder runs Kahn's algorithm with a min-heap of registry positions as the
// ready queue. The result is shorter than the graph when a cycle exists.
func (g *Graph) topoOrder() []int {
	indeg := make([]int, len(g.activities))
	for i, preds := range g.predecessors {
		indeg[i] = len(preds)
	}

	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.successors[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// findCycle extracts one cycle as a name path whose first and last entries match.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.activities))
	parent := make([]int, len(g.activities))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.successors[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// Back edge u -> v closes v -> ... -> u -> v.
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.activities {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// cycle holds u, parent(u), ..., v; reverse it into edge direction.
	path := make([]string, 0, len(cycle)+1)
	for i := len(cycle) - 1; i >= 0; i-- {
		path = append(path, g.activities[cycle[i]].Name)
	}
	return append(path, path[0])
}
