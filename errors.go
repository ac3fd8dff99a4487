package cpm

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a rejected activity. The registry is left unchanged.
type ValidationError struct {
	Field   string
	Value   any
	Message string
	// Kind is a more specific sentinel such as ErrDuplicateActivity, or nil.
	Kind error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cpm: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// Is reports ErrValidation for every validation failure.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Kind }

// GraphError wraps dependency graph failures such as cycles.
type GraphError struct {
	Kind error
	Msg  string
	// Path is the cycle witness or the offending reference.
	Path []string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func cycleError(path []string) error {
	msg := "cycle"
	if len(path) > 0 {
		msg = "cycle: " + strings.Join(path, " -> ")
	}
	return &GraphError{Kind: ErrCycleDetected, Msg: msg, Path: path}
}

func unresolvedError(refs []UnresolvedRef) error {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		parts = append(parts, fmt.Sprintf("%q needs %q", r.Activity, r.Predecessor))
	}
	path := make([]string, 0, len(refs))
	for _, r := range refs {
		path = append(path, r.Predecessor)
	}
	return &GraphError{Kind: ErrUnresolvedPredecessor, Msg: strings.Join(parts, ", "), Path: path}
}

// LimitError is returned when path enumeration exceeds a configured bound.
type LimitError struct {
	Limit string // "paths" or "depth"
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: more than %d %s", ErrPathLimit.Error(), e.Max, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrPathLimit }

// IsCycle reports whether err was caused by a dependency cycle.
func IsCycle(err error) bool { return errors.Is(err, ErrCycleDetected) }
