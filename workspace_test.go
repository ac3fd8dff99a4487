package cpm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceRecomputesOnAdd(t *testing.T) {
	w := NewWorkspace(Options{})
	assert.True(t, w.Result().Empty())
	assert.Equal(t, MinChartDays, w.Result().MaxDays)

	_, err := w.Add(in("A", "none", "4"))
	require.NoError(t, err)
	_, err = w.Add(in("B", "none", "3"))
	require.NoError(t, err)
	_, err = w.Add(in("C", "A,B", "2"))
	require.NoError(t, err)

	r := w.Result()
	require.Len(t, r.Activities, 3)
	assert.Equal(t, 4, r.Activities[2].Start)
	assert.Equal(t, 6, r.Finish)
	require.NotNil(t, r.Analysis)
	assert.Equal(t, 6, r.Analysis.MaxDuration)
}

func TestWorkspaceRejectsInvalidAndKeepsState(t *testing.T) {
	w := NewWorkspace(Options{})
	_, err := w.Add(in("A", "", "2"))
	require.NoError(t, err)
	before := w.Result()

	_, err = w.Add(in("", "A", "2"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = w.Add(in("B", "A", "x"))
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, 1, w.Len())
	assert.Same(t, before, w.Result())
}

func TestWorkspaceRejectsSelfCycle(t *testing.T) {
	w := NewWorkspace(Options{})
	_, err := w.Add(in("A", "A", "2"))
	assert.True(t, IsCycle(err))
	assert.Equal(t, 0, w.Len())
}

func TestWorkspaceUnresolvedPolicies(t *testing.T) {
	t.Run("ignore", func(t *testing.T) {
		w := NewWorkspace(Options{Unresolved: UnresolvedIgnore})
		_, err := w.Add(in("A", "Z", "3"))
		require.NoError(t, err)
		assert.Empty(t, w.Result().Unresolved)
		assert.Equal(t, 0, w.Result().Activities[0].Start)
	})

	t.Run("warn", func(t *testing.T) {
		w := NewWorkspace(Options{Unresolved: UnresolvedWarn})
		_, err := w.Add(in("A", "Z", "3"))
		require.NoError(t, err)
		assert.Equal(t, []UnresolvedRef{{Activity: "A", Predecessor: "Z"}}, w.Result().Unresolved)
		assert.Equal(t, 0, w.Result().Activities[0].Start)
	})

	t.Run("reject", func(t *testing.T) {
		w := NewWorkspace(Options{Unresolved: UnresolvedReject})
		_, err := w.Add(in("A", "Z", "3"))
		assert.ErrorIs(t, err, ErrUnresolvedPredecessor)
		assert.Equal(t, 0, w.Len())
	})
}

func TestEvaluateReportsCycle(t *testing.T) {
	_, err := Evaluate([]Input{in("A", "B", "1"), in("B", "A", "1")}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestEvaluateReportsRow(t *testing.T) {
	_, err := Evaluate([]Input{in("A", "", "1"), in("B", "", "0")}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "row 2")
}

func TestEvaluateForwardReference(t *testing.T) {
	inputs := []Input{in("B", "A", "2"), in("A", "", "5")}

	r, err := Evaluate(inputs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Activities[0].Start)
	assert.Equal(t, 7, r.Finish)

	r, err = Evaluate(inputs, Options{Mode: ModeInsertion})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Activities[0].Start)
	assert.Equal(t, 5, r.Finish)
}

func TestEvaluateEmpty(t *testing.T) {
	r, err := Evaluate(nil, Options{})
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Nil(t, r.Analysis)
	assert.Equal(t, MinChartDays, r.MaxDays)
}

func TestLoadWorkspaceResolvesForwardReferences(t *testing.T) {
	acts := []Activity{
		{Name: "B", DurationDays: 2, PredecessorText: "A"},
		{Name: "A", DurationDays: 5},
	}
	w, err := LoadWorkspace(acts, Options{Unresolved: UnresolvedReject})
	require.NoError(t, err)
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 7, w.Result().Finish)
}

func TestValidateActivities(t *testing.T) {
	assert.NoError(t, ValidateActivities([]Activity{{Name: "A", DurationDays: 1, PredecessorText: "Z"}}))
	assert.ErrorIs(t, ValidateActivities([]Activity{{Name: "A", DurationDays: 0}}), ErrValidation)
	assert.ErrorIs(t, ValidateActivities([]Activity{
		{Name: "A", DurationDays: 1, PredecessorText: "B"},
		{Name: "B", DurationDays: 1, PredecessorText: "A"},
	}), ErrCycleDetected)
}

func TestInputUnmarshalAcceptsNumberOrString(t *testing.T) {
	var got []Input
	err := json.Unmarshal([]byte(`[
		{"activity":"A","predecessor":"none","et":5},
		{"activity":"B","predecessor":"A","et":"3"},
		{"activity":"C","et":null}
	]`), &got)
	require.NoError(t, err)
	assert.Equal(t, []Input{
		{Activity: "A", Predecessor: "none", ET: "5"},
		{Activity: "B", Predecessor: "A", ET: "3"},
		{Activity: "C"},
	}, got)
}

func TestProjectInputs(t *testing.T) {
	p := &Project{Activities: []Activity{{Name: "A", DurationDays: 4, PredecessorText: "none"}}}
	assert.Equal(t, []Input{{Activity: "A", Predecessor: "none", ET: "4"}}, p.Inputs())
}
