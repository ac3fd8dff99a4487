package cpm

import "time"

// ScheduledActivity is an activity with its derived dates.
// Start and End are day offsets from the epoch; End = Start + DurationDays.
type ScheduledActivity struct {
	Activity
	Start     int       `json:"start_day"`
	End       int       `json:"end_day"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Schedule holds the dated activities of a graph in registry order.
type Schedule struct {
	Epoch   time.Time           `json:"epoch"`
	Mode    ScheduleMode        `json:"mode"`
	Entries []ScheduledActivity `json:"activities"`

	index map[string]int
}

// BuildSchedule dates every activity in g. An activity with no resolved
// predecessors starts at the epoch; any other starts at the latest end among
// its predecessors, with no gap.
//
// In ModeTopological predecessors are always dated first. In ModeInsertion
// activities are dated in registry order and a predecessor that has not been
// dated yet contributes nothing.
func BuildSchedule(g *Graph, opts Options) *Schedule {
	opts = opts.withDefaults()

	s := &Schedule{
		Epoch:   opts.Epoch,
		Mode:    opts.Mode,
		Entries: make([]ScheduledActivity, len(g.activities)),
		index:   make(map[string]int, len(g.activities)),
	}

	order := g.order
	if opts.Mode == ModeInsertion {
		order = make([]int, len(g.activities))
		for i := range order {
			order[i] = i
		}
	}

	done := make([]bool, len(g.activities))
	for _, i := range order {
		start := 0
		for _, p := range g.predecessors[i] {
			if done[p] && s.Entries[p].End > start {
				start = s.Entries[p].End
			}
		}
		a := g.activities[i]
		end := start + a.DurationDays
		s.Entries[i] = ScheduledActivity{
			Activity:  a,
			Start:     start,
			End:       end,
			StartDate: opts.Epoch.AddDate(0, 0, start),
			EndDate:   opts.Epoch.AddDate(0, 0, end),
		}
		done[i] = true
	}

	for i, e := range s.Entries {
		s.index[e.Name] = i
	}
	return s
}

// Get returns the scheduled entry for name.
func (s *Schedule) Get(name string) (ScheduledActivity, bool) {
	i, ok := s.index[name]
	if !ok {
		return ScheduledActivity{}, false
	}
	return s.Entries[i], true
}

// Finish returns the latest end day, or 0 for an empty schedule.
func (s *Schedule) Finish() int {
	finish := 0
	for _, e := range s.Entries {
		if e.End > finish {
			finish = e.End
		}
	}
	return finish
}

// MaxDays returns the chart width in days: the finish day, but never less than MinChartDays.
func (s *Schedule) MaxDays() int {
	return max(MinChartDays, s.Finish())
}
