package cpm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func in(name, pred string, et string) Input {
	return Input{Activity: name, Predecessor: pred, ET: et}
}

func registryOf(t *testing.T, inputs ...Input) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, i := range inputs {
		_, err := r.AddInput(i)
		require.NoError(t, err)
	}
	return r
}

func graphOf(t *testing.T, inputs ...Input) *Graph {
	t.Helper()
	g, err := BuildGraph(registryOf(t, inputs...).Activities())
	require.NoError(t, err)
	return g
}
