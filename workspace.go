package cpm

import "fmt"

// Result is everything derived from a registry: dated activities, the
// critical path analysis and the unresolved references surfaced by policy.
type Result struct {
	Activities []ScheduledActivity `json:"activities"`
	Analysis   *Analysis           `json:"analysis,omitempty"`
	Unresolved []UnresolvedRef     `json:"unresolved,omitempty"`
	Finish     int                 `json:"finish_day"`
	MaxDays    int                 `json:"max_days"`
}

// Empty reports whether there is nothing to show.
func (r *Result) Empty() bool { return r == nil || len(r.Activities) == 0 }

// Compute builds the graph for activities and derives the schedule and
// path analysis from it.
func Compute(activities []Activity, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	g, err := BuildGraph(activities)
	if err != nil {
		return nil, err
	}
	unresolved, err := g.checkUnresolved(opts.Unresolved)
	if err != nil {
		return nil, err
	}
	analysis, err := Analyze(g, opts)
	if err != nil {
		return nil, err
	}

	s := BuildSchedule(g, opts)
	return &Result{
		Activities: s.Entries,
		Analysis:   analysis,
		Unresolved: unresolved,
		Finish:     s.Finish(),
		MaxDays:    s.MaxDays(),
	}, nil
}

// ParseInputs validates raw inputs in order as one registry would.
// The first invalid row aborts with its 1-based row number.
func ParseInputs(inputs []Input) ([]Activity, error) {
	r := NewRegistry()
	for i, in := range inputs {
		if _, err := r.AddInput(in); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return r.Activities(), nil
}

// Evaluate validates a batch of raw inputs and computes the result.
func Evaluate(inputs []Input, opts Options) (*Result, error) {
	activities, err := ParseInputs(inputs)
	if err != nil {
		return nil, err
	}
	return Compute(activities, opts)
}

// ValidateActivities checks that activities would form a valid registry with
// an acyclic dependency graph. Unresolved references are allowed.
func ValidateActivities(activities []Activity) error {
	r := NewRegistry()
	for i, a := range activities {
		if _, err := r.Add(a.Name, a.PredecessorText, a.DurationDays); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	_, err := BuildGraph(r.Activities())
	return err
}

// Workspace owns one registry and keeps its derived result current.
// Every Add recomputes the graph, schedule and analysis before returning, and
// an Add that cannot be analyzed leaves the registry untouched.
// It is not safe for concurrent use.
type Workspace struct {
	opts     Options
	registry *Registry
	result   *Result
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(opts Options) *Workspace {
	return &Workspace{
		opts:     opts.withDefaults(),
		registry: NewRegistry(),
		result:   &Result{MaxDays: MinChartDays},
	}
}

// LoadWorkspace rebuilds a workspace from previously stored activities.
// The activities are computed as one batch, so forward references resolve.
func LoadWorkspace(activities []Activity, opts Options) (*Workspace, error) {
	w := NewWorkspace(opts)
	for i, a := range activities {
		if _, err := w.registry.Add(a.Name, a.PredecessorText, a.DurationDays); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	result, err := Compute(w.registry.Activities(), w.opts)
	if err != nil {
		return nil, err
	}
	w.result = result
	return w, nil
}

// Add validates in, appends it and recomputes. Validation failures, cycles,
// rejected unresolved references and exceeded limits all leave the workspace
// as it was.
func (w *Workspace) Add(in Input) (Activity, error) {
	next := w.registry.clone()
	a, err := next.AddInput(in)
	if err != nil {
		return Activity{}, err
	}
	result, err := Compute(next.Activities(), w.opts)
	if err != nil {
		return Activity{}, err
	}
	w.registry = next
	w.result = result
	return a, nil
}

// Result returns the result computed by the last successful Add.
func (w *Workspace) Result() *Result { return w.result }

// Activities returns the registered activities in insertion order.
func (w *Workspace) Activities() []Activity { return w.registry.Activities() }

// Len returns the number of registered activities.
func (w *Workspace) Len() int { return w.registry.Len() }

// Options returns the options the workspace computes with.
func (w *Workspace) Options() Options { return w.opts }
