package cpm

import "slices"

// Path is a root-to-leaf chain of activities and its total duration.
type Path struct {
	Activities []string `json:"path"`
	Duration   int      `json:"duration"`
}

// Analysis partitions every root-to-leaf path into critical and other.
type Analysis struct {
	MaxDuration   int    `json:"max_duration"`
	CriticalPaths []Path `json:"critical_paths"`
	OtherPaths    []Path `json:"other_paths"`

	critical map[string]struct{}
	order    []string
}

type frame struct {
	node        int
	accumulated int
	path        []int
}

// Analyze enumerates every root-to-leaf path of g with an explicit stack.
// Paths whose duration equals the maximum are critical; ties are all kept.
// Roots and successors are visited in registry order, so the result is
// deterministic. It returns nil, nil when g has no activities.
//
// Enumeration stops with a *LimitError once more than opts.MaxPaths paths are
// found or a path grows past opts.MaxDepth activities, and with a cycle error
// if a node reappears on its own path.
func Analyze(g *Graph, opts Options) (*Analysis, error) {
	if g == nil || g.Len() == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()

	var stack []frame
	for i := len(g.predecessors) - 1; i >= 0; i-- {
		if len(g.predecessors[i]) == 0 {
			stack = append(stack, frame{node: i})
		}
	}

	var paths []Path
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if slices.Contains(f.path, f.node) {
			return nil, cycleError(g.names(append(slices.Clip(f.path), f.node)))
		}
		if len(f.path) >= opts.MaxDepth {
			return nil, &LimitError{Limit: "depth", Max: opts.MaxDepth}
		}

		// Clip so siblings never share a backing array.
		path := append(slices.Clip(f.path), f.node)
		total := f.accumulated + g.activities[f.node].DurationDays

		succ := g.successors[f.node]
		if len(succ) == 0 {
			if len(paths) >= opts.MaxPaths {
				return nil, &LimitError{Limit: "paths", Max: opts.MaxPaths}
			}
			paths = append(paths, Path{Activities: g.names(path), Duration: total})
			continue
		}
		for i := len(succ) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: succ[i], accumulated: total, path: path})
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	a := &Analysis{critical: make(map[string]struct{})}
	for _, p := range paths {
		a.MaxDuration = max(a.MaxDuration, p.Duration)
	}
	for _, p := range paths {
		if p.Duration == a.MaxDuration {
			a.CriticalPaths = append(a.CriticalPaths, p)
			for _, name := range p.Activities {
				a.critical[name] = struct{}{}
			}
			continue
		}
		a.OtherPaths = append(a.OtherPaths, p)
	}
	for _, act := range g.activities {
		if _, ok := a.critical[act.Name]; ok {
			a.order = append(a.order, act.Name)
		}
	}
	return a, nil
}

// Paths returns every enumerated path, critical first.
func (a *Analysis) Paths() []Path {
	if a == nil {
		return nil
	}
	out := make([]Path, 0, len(a.CriticalPaths)+len(a.OtherPaths))
	out = append(out, a.CriticalPaths...)
	return append(out, a.OtherPaths...)
}

// IsCritical reports whether name lies on at least one critical path.
func (a *Analysis) IsCritical(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.critical[name]
	return ok
}

// CriticalActivities returns the names on any critical path in registry order.
func (a *Analysis) CriticalActivities() []string {
	if a == nil {
		return nil
	}
	return slices.Clone(a.order)
}
