// Package observability exposes prometheus collectors for schedule analyses.
package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meikuraledutech/cpm"
)

// Analysis outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeCycle      = "cycle"
	OutcomeUnresolved = "unresolved"
	OutcomeLimit      = "limit"
	OutcomeError      = "error"
)

var (
	analysisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cpm",
		Subsystem: "analysis",
		Name:      "total",
		Help:      "Schedule and critical path computations by outcome.",
	}, []string{"outcome"})
	analysisPaths = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cpm",
		Subsystem: "analysis",
		Name:      "paths",
		Help:      "Number of root-to-leaf paths enumerated per analysis.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
	analysisMaxDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cpm",
		Subsystem: "analysis",
		Name:      "max_duration_days",
		Help:      "Critical path duration of the most recent successful analysis.",
	})
	unresolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cpm",
		Subsystem: "analysis",
		Name:      "unresolved_predecessors_total",
		Help:      "Predecessor references that matched no activity and were surfaced as warnings.",
	})
)

func init() {
	prometheus.MustRegister(analysisTotal, analysisPaths, analysisMaxDuration, unresolvedTotal)
}

// Outcome classifies an analysis error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, cpm.ErrCycleDetected):
		return OutcomeCycle
	case errors.Is(err, cpm.ErrUnresolvedPredecessor):
		return OutcomeUnresolved
	case errors.Is(err, cpm.ErrPathLimit):
		return OutcomeLimit
	case errors.Is(err, cpm.ErrValidation), errors.Is(err, cpm.ErrDuplicateActivity):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// RecordAnalysis counts one computation and, on success, its path statistics.
func RecordAnalysis(r *cpm.Result, err error) {
	analysisTotal.WithLabelValues(Outcome(err)).Inc()
	if err != nil || r == nil {
		return
	}
	unresolvedTotal.Add(float64(len(r.Unresolved)))
	if r.Analysis == nil {
		return
	}
	analysisPaths.Observe(float64(len(r.Analysis.CriticalPaths) + len(r.Analysis.OtherPaths)))
	analysisMaxDuration.Set(float64(r.Analysis.MaxDuration))
}
