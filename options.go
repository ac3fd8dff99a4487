package cpm

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleMode selects the order in which activities are dated.
type ScheduleMode string

const (
	// ModeTopological dates every activity after all of its predecessors.
	ModeTopological ScheduleMode = "topological"
	// ModeInsertion dates activities in registry order; a predecessor declared
	// later than its dependent does not move the dependent's start.
	ModeInsertion ScheduleMode = "insertion"
)

// UnresolvedPolicy decides what happens to predecessor names that match no activity.
type UnresolvedPolicy string

const (
	UnresolvedIgnore UnresolvedPolicy = "ignore"
	UnresolvedWarn   UnresolvedPolicy = "warn"
	UnresolvedReject UnresolvedPolicy = "reject"
)

const (
	DefaultMaxPaths = 10000
	DefaultMaxDepth = 1000
	// MinChartDays is the smallest chart width reported by Schedule.MaxDays.
	MinChartDays = 20
)

// DefaultEpoch is day 0 of every schedule unless Options.Epoch is set.
var DefaultEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options tunes scheduling and analysis. The zero value is usable.
type Options struct {
	Mode       ScheduleMode
	Unresolved UnresolvedPolicy
	Epoch      time.Time
	MaxPaths   int
	MaxDepth   int
}

// DefaultOptions returns topological scheduling, warn-on-unresolved and the default limits.
func DefaultOptions() Options {
	return Options{
		Mode:       ModeTopological,
		Unresolved: UnresolvedWarn,
		Epoch:      DefaultEpoch,
		MaxPaths:   DefaultMaxPaths,
		MaxDepth:   DefaultMaxDepth,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Mode == "" {
		o.Mode = d.Mode
	}
	if o.Unresolved == "" {
		o.Unresolved = d.Unresolved
	}
	if o.Epoch.IsZero() {
		o.Epoch = d.Epoch
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = d.MaxPaths
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	return o
}

// ParseScheduleMode parses "topological" or "insertion", case-insensitively.
func ParseScheduleMode(s string) (ScheduleMode, error) {
	switch m := ScheduleMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTopological, ModeInsertion:
		return m, nil
	case "":
		return ModeTopological, nil
	default:
		return "", fmt.Errorf("cpm: unknown schedule mode %q", s)
	}
}

// ParseUnresolvedPolicy parses "ignore", "warn" or "reject", case-insensitively.
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch p := UnresolvedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case UnresolvedIgnore, UnresolvedWarn, UnresolvedReject:
		return p, nil
	case "":
		return UnresolvedWarn, nil
	default:
		return "", fmt.Errorf("cpm: unknown unresolved predecessor policy %q", s)
	}
}
