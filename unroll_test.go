package ktbn_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/ktbn"
	"github.com/soundprediction/ktbn/pkg/types"
)

// steadyStateTemplate is a k=3 template over two binary variables with
// arcs A0->A1, B0->B1, A1->B2, B1->B2. The last two arcs form the
// transition pattern for B.
func steadyStateTemplate(t *testing.T) *ktbn.Network {
	t.Helper()
	net, err := ktbn.New(3)
	require.NoError(t, err)
	require.NoError(t, net.AddVariableFast("A"))
	require.NoError(t, net.AddVariableFast("B"))
	require.NoError(t, net.AddArc(types.Key("A", 0), types.Key("A", 1)))
	require.NoError(t, net.AddArc(types.Key("B", 0), types.Key("B", 1)))
	require.NoError(t, net.AddArc(types.Key("A", 1), types.Key("B", 2)))
	require.NoError(t, net.AddArc(types.Key("B", 1), types.Key("B", 2)))
	return net
}

func TestUnrollRejectsShortTarget(t *testing.T) {
	net := steadyStateTemplate(t)
	_, err := net.Unroll(2)
	require.Error(t, err)
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUnrollToHorizonIsStructurallyIdentical(t *testing.T) {
	net := steadyStateTemplate(t)
	flat, err := net.Unroll(3)
	require.NoError(t, err)

	assert.Equal(t, net.Engine().Size(), flat.Size())
	assert.ElementsMatch(t, net.Engine().Names(), flat.Names())
	assert.Equal(t, net.Engine().Arcs(), flat.Arcs())
}

func TestUnrollIsIndependentOfTheTemplate(t *testing.T) {
	net := steadyStateTemplate(t)
	tensor, err := net.CPT(types.Key("B", 0))
	require.NoError(t, err)
	require.NoError(t, tensor.Fill(0.5))

	flat, err := net.Unroll(4)
	require.NoError(t, err)

	// Writes on the unrolled net never reach the template.
	cpt, err := flat.CPT("B#0")
	require.NoError(t, err)
	require.NoError(t, cpt.Fill(0.0))

	vals, err := tensor.Read(types.Evidence{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vals)
}

func TestUnrollExtendsTransitionArcs(t *testing.T) {
	net := steadyStateTemplate(t)
	flat, err := net.Unroll(5)
	require.NoError(t, err)

	// 2 variables x 5 slices.
	assert.Equal(t, 10, flat.Size())

	arcStrings := make(map[string]struct{})
	for _, a := range flat.Arcs() {
		tail, err := flat.Variable(a.Tail)
		require.NoError(t, err)
		head, err := flat.Variable(a.Head)
		require.NoError(t, err)
		arcStrings[tail.Name+">"+head.Name] = struct{}{}
	}

	// Template arcs survive, the B pattern repeats at t=3 and t=4.
	for _, want := range []string{
		"A#0>A#1", "B#0>B#1", "A#1>B#2", "B#1>B#2",
		"A#2>B#3", "B#2>B#3",
		"A#3>B#4", "B#3>B#4",
	} {
		assert.Contains(t, arcStrings, want)
	}
	assert.Len(t, arcStrings, 8)

	// A0->A1 has its head in slice 1, not k-1, so it never recurs. A's
	// later replicas stay disconnected.
	assert.NotContains(t, arcStrings, "A#1>A#2")
}

func TestUnrollSteadyStateReproduction(t *testing.T) {
	net := steadyStateTemplate(t)
	tensor, err := net.CPT(types.Key("B", 2))
	require.NoError(t, err)
	template := []float64{0.3333, 0.7777, 0.6, 0.4, 0.5, 0.5, 0.2, 0.8}
	require.NoError(t, tensor.FillValues(template))

	flat, err := net.Unroll(5)
	require.NoError(t, err)

	// Every extrapolated slice carries the same conditional distribution,
	// shifted evidence included.
	for _, slice := range []int{3, 4} {
		cpt, err := flat.CPT(fmt.Sprintf("B#%d", slice))
		require.NoError(t, err)
		vals, err := cpt.Get(map[string]int{})
		require.NoError(t, err)
		assert.Equal(t, template, vals, "slice %d", slice)
	}

	b4, err := flat.CPT("B#4")
	require.NoError(t, err)
	b2, err := flat.CPT("B#2")
	require.NoError(t, err)
	shifted, err := b4.Get(map[string]int{"B#3": 1})
	require.NoError(t, err)
	original, err := b2.Get(map[string]int{"B#1": 1})
	require.NoError(t, err)
	assert.Equal(t, original, shifted)
}

func TestUnrollIsDeterministic(t *testing.T) {
	net := steadyStateTemplate(t)
	require.NoError(t, net.RandomizeCPTs())

	first, err := net.Unroll(6)
	require.NoError(t, err)
	second, err := net.Unroll(6)
	require.NoError(t, err)

	assert.Equal(t, first.Names(), second.Names())
	assert.Equal(t, first.Arcs(), second.Arcs())
	for _, name := range first.Names() {
		a, err := first.CPT(name)
		require.NoError(t, err)
		b, err := second.CPT(name)
		require.NoError(t, err)
		av, err := a.Get(map[string]int{})
		require.NoError(t, err)
		bv, err := b.Get(map[string]int{})
		require.NoError(t, err)
		assert.Equal(t, av, bv, "cpt of %s", name)
	}
}

func TestUnrollSingleSliceTemplate(t *testing.T) {
	// With k=1 every transition arc has offset 0: the pattern recurs
	// inside each new slice.
	net, err := ktbn.New(1)
	require.NoError(t, err)
	require.NoError(t, net.AddVariableFast("A"))
	require.NoError(t, net.AddVariableFast("B"))
	require.NoError(t, net.AddArc(types.Key("A", 0), types.Key("B", 0)))

	tensor, err := net.CPT(types.Key("B", 0))
	require.NoError(t, err)
	template := []float64{0.3, 0.7, 0.6, 0.4}
	require.NoError(t, tensor.FillValues(template))

	flat, err := net.Unroll(3)
	require.NoError(t, err)
	assert.Equal(t, 6, flat.Size())

	arcStrings := make(map[string]struct{})
	for _, a := range flat.Arcs() {
		tail, err := flat.Variable(a.Tail)
		require.NoError(t, err)
		head, err := flat.Variable(a.Head)
		require.NoError(t, err)
		arcStrings[tail.Name+">"+head.Name] = struct{}{}
	}
	assert.Equal(t, map[string]struct{}{
		"A#0>B#0": {},
		"A#1>B#1": {},
		"A#2>B#2": {},
	}, arcStrings)

	for _, slice := range []int{1, 2} {
		cpt, err := flat.CPT(fmt.Sprintf("B#%d", slice))
		require.NoError(t, err)
		vals, err := cpt.Get(map[string]int{})
		require.NoError(t, err)
		assert.Equal(t, template, vals, "slice %d", slice)
	}
}

func TestUnrollTwoSliceTemplate(t *testing.T) {
	net, err := ktbn.New(2)
	require.NoError(t, err)
	require.NoError(t, net.AddVariableFast("A"))
	require.NoError(t, net.AddVariableFast("B"))
	require.NoError(t, net.AddArc(types.Key("A", 0), types.Key("B", 1)))
	require.NoError(t, net.AddArc(types.Key("B", 0), types.Key("B", 1)))

	flat, err := net.Unroll(4)
	require.NoError(t, err)
	assert.Len(t, flat.Arcs(), 6)
}
