package cpm

import (
	"strconv"
	"strings"
)

// noneToken is the literal that means "no predecessors".
const noneToken = "none"

// Registry is the ordered collection of declared activities.
// Iteration order is insertion order. It is not safe for concurrent use.
type Registry struct {
	activities []Activity
	index      map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add validates and appends an activity.
// Names are trimmed; an empty name, a non-positive duration or a name that is
// already registered is rejected with a *ValidationError.
func (r *Registry) Add(name, predecessorText string, durationDays int) (Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Activity{}, &ValidationError{Field: "activity", Value: name, Message: "name is required"}
	}
	if durationDays <= 0 {
		return Activity{}, &ValidationError{Field: "et", Value: durationDays, Message: "duration must be a positive number of days"}
	}
	if _, exists := r.index[name]; exists {
		return Activity{}, &ValidationError{Field: "activity", Value: name, Message: "name is already declared", Kind: ErrDuplicateActivity}
	}

	a := Activity{
		Name:            name,
		DurationDays:    durationDays,
		PredecessorText: predecessorText,
		Predecessors:    ParsePredecessors(predecessorText),
	}
	r.index[name] = len(r.activities)
	r.activities = append(r.activities, a)
	return a, nil
}

// AddInput parses the raw elapsed-time string and adds the activity.
func (r *Registry) AddInput(in Input) (Activity, error) {
	if strings.TrimSpace(in.Activity) == "" {
		return Activity{}, &ValidationError{Field: "activity", Value: in.Activity, Message: "name is required"}
	}
	days, err := ParseDuration(in.ET)
	if err != nil {
		return Activity{}, err
	}
	return r.Add(in.Activity, in.Predecessor, days)
}

// Activities returns a copy of the registered activities in insertion order.
func (r *Registry) Activities() []Activity {
	out := make([]Activity, len(r.activities))
	copy(out, r.activities)
	return out
}

// Lookup returns the activity registered under name.
func (r *Registry) Lookup(name string) (Activity, bool) {
	i, ok := r.index[name]
	if !ok {
		return Activity{}, false
	}
	return r.activities[i], true
}

// Len returns the number of registered activities.
func (r *Registry) Len() int { return len(r.activities) }

func (r *Registry) clone() *Registry {
	c := &Registry{
		activities: make([]Activity, len(r.activities), len(r.activities)+1),
		index:      make(map[string]int, len(r.index)+1),
	}
	copy(c.activities, r.activities)
	for k, v := range r.index {
		c.index[k] = v
	}
	return c
}

// ParseDuration parses an elapsed-time string as a positive whole number of days.
func ParseDuration(et string) (int, error) {
	trimmed := strings.TrimSpace(et)
	if trimmed == "" {
		return 0, &ValidationError{Field: "et", Value: et, Message: "duration is required"}
	}
	days, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &ValidationError{Field: "et", Value: et, Message: "duration must be a whole number of days"}
	}
	if days <= 0 {
		return 0, &ValidationError{Field: "et", Value: et, Message: "duration must be a positive number of days"}
	}
	return days, nil
}

// ParsePredecessors normalizes free predecessor text into a list of names.
// The text is split on commas and each entry trimmed. Empty entries and the
// token "none" (any case) are dropped; repeated names keep their first position.
// It returns nil when no names remain.
func ParsePredecessors(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, noneToken) {
		return nil
	}

	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, noneToken) {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
