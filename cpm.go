// Package cpm computes project schedules from activities declared with a
// duration and a free-text predecessor list, and finds the critical
// (longest) chains of work through the resulting dependency graph.
package cpm

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Activity is a named unit of work. Name is the natural key.
// Predecessors is the normalized form of PredecessorText.
type Activity struct {
	Name            string   `json:"name"`
	DurationDays    int      `json:"duration_days"`
	PredecessorText string   `json:"predecessor_text,omitempty"`
	Predecessors    []string `json:"predecessors,omitempty"`
}

// Input is the raw triple submitted for one activity.
// ET is the elapsed time in days as typed by the user.
type Input struct {
	Activity    string `json:"activity" yaml:"activity"`
	Predecessor string `json:"predecessor" yaml:"predecessor"`
	ET          string `json:"et" yaml:"et"`
}

// UnmarshalJSON accepts et as either a JSON string or a JSON number.
func (in *Input) UnmarshalJSON(b []byte) error {
	var raw struct {
		Activity    string          `json:"activity"`
		Predecessor string          `json:"predecessor"`
		ET          json.RawMessage `json:"et"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	in.Activity = raw.Activity
	in.Predecessor = raw.Predecessor
	in.ET = ""

	et := bytes.TrimSpace(raw.ET)
	switch {
	case len(et) == 0 || bytes.Equal(et, []byte("null")):
	case et[0] == '"':
		if err := json.Unmarshal(et, &in.ET); err != nil {
			return err
		}
	default:
		in.ET = string(et)
	}
	return nil
}

// Project is a persisted, named registry of activities.
// Activities are kept in insertion order.
type Project struct {
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}

// Inputs converts the project's activities back into raw input triples.
func (p *Project) Inputs() []Input {
	out := make([]Input, 0, len(p.Activities))
	for _, a := range p.Activities {
		out = append(out, Input{
			Activity:    a.Name,
			Predecessor: a.PredecessorText,
			ET:          strconv.Itoa(a.DurationDays),
		})
	}
	return out
}
