package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/meikuraledutech/cpm"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	barFull  = "█"
	barEmpty = "·"
)

// renderText writes a schedule table with a day chart and the path listing.
// Critical activities are highlighted.
func renderText(w io.Writer, name string, r *cpm.Result) {
	fmt.Fprintln(w, titleStyle.Render(name))
	if r.Empty() {
		fmt.Fprintln(w, mutedStyle.Render("no activities"))
		return
	}

	nameWidth := len("ACTIVITY")
	for _, a := range r.Activities {
		nameWidth = max(nameWidth, len(a.Name))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %4s %5s %5s  %s",
		nameWidth, "ACTIVITY", "ET", "START", "END", "CHART")))
	for _, a := range r.Activities {
		label := fmt.Sprintf("%-*s", nameWidth, a.Name)
		bar := barStyle
		if r.Analysis.IsCritical(a.Name) {
			label = criticalStyle.Render(label)
			bar = criticalStyle
		}
		fmt.Fprintf(w, "%s %4d %5d %5d  %s\n", label, a.DurationDays, a.Start, a.End, chart(a, r.MaxDays, bar))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Finish: day %d (%s)\n", r.Finish, finishDate(r).Format("2006-01-02"))
	if r.Analysis != nil {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("CRITICAL PATHS (%d days)", r.Analysis.MaxDuration)))
		for _, p := range r.Analysis.CriticalPaths {
			fmt.Fprintln(w, "  "+criticalStyle.Render(strings.Join(p.Activities, " -> ")))
		}
		if len(r.Analysis.OtherPaths) > 0 {
			fmt.Fprintln(w, headerStyle.Render("OTHER PATHS"))
			for _, p := range r.Analysis.OtherPaths {
				fmt.Fprintf(w, "  %s %s\n", strings.Join(p.Activities, " -> "), mutedStyle.Render(fmt.Sprintf("(%d days)", p.Duration)))
			}
		}
	}

	for _, u := range r.Unresolved {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("warning: %s depends on unknown activity %q", u.Activity, u.Predecessor)))
	}
}

// chart draws one cell per day from day 0 to days.
func chart(a cpm.ScheduledActivity, days int, style lipgloss.Style) string {
	var b strings.Builder
	for d := 0; d < days; d++ {
		if d >= a.Start && d < a.End {
			b.WriteString(style.Render(barFull))
			continue
		}
		b.WriteString(barEmpty)
	}
	return b.String()
}

func finishDate(r *cpm.Result) time.Time {
	var last cpm.ScheduledActivity
	for _, a := range r.Activities {
		if a.End >= last.End {
			last = a
		}
	}
	return last.EndDate
}
