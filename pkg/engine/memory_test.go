package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func binary(name string) Variable {
	return NewLabelizedVariable(name, name, 2)
}

func TestMemoryNetAddAndLookup(t *testing.T) {
	m := NewMemoryNet()
	require.Equal(t, ProviderMemory, m.Provider())

	id, err := m.Add(binary("A"))
	require.NoError(t, err)
	assert.True(t, m.Exists("A"))
	assert.Equal(t, 1, m.Size())

	got, err := m.IDFromName("A")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	v, err := m.Variable(id)
	require.NoError(t, err)
	assert.Equal(t, "A", v.Name)
	assert.Equal(t, 2, v.DomainSize())

	_, err = m.Add(binary("A"))
	assert.ErrorIs(t, err, ErrNodeExists)

	_, err = m.Add(Variable{Name: "empty"})
	assert.ErrorIs(t, err, ErrEmptyDomain)

	_, err = m.IDFromName("missing")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemoryNetArcRules(t *testing.T) {
	m := NewMemoryNet()
	a, _ := m.Add(binary("A"))
	b, _ := m.Add(binary("B"))
	c, _ := m.Add(binary("C"))

	require.NoError(t, m.AddArc(a, b))
	require.NoError(t, m.AddArc(b, c))

	assert.ErrorIs(t, m.AddArc(a, a), ErrSelfArc)
	assert.ErrorIs(t, m.AddArc(a, b), ErrDuplicateArc)
	assert.ErrorIs(t, m.AddArc(c, a), ErrCycle)
	assert.ErrorIs(t, m.AddArc(a, NodeID(99)), ErrNodeNotFound)

	parents, err := m.Parents(b)
	require.NoError(t, err)
	assert.Equal(t, []NodeID{a}, parents)
}

func TestMemoryNetArcReshapesCPT(t *testing.T) {
	m := NewMemoryNet()
	a, _ := m.Add(binary("A"))
	b, _ := m.Add(binary("B"))

	cpt, err := m.CPT("B")
	require.NoError(t, err)
	assert.Equal(t, 2, cpt.DomainSize())

	require.NoError(t, m.AddArc(a, b))
	cpt, err = m.CPT("B")
	require.NoError(t, err)
	assert.Equal(t, 4, cpt.DomainSize())
	vars := cpt.Variables()
	require.Len(t, vars, 2)
	assert.Equal(t, "B", vars[0].Name, "head comes first")
	assert.Equal(t, "A", vars[1].Name)

	// Structure changes reset the table.
	require.NoError(t, cpt.Fill(0.5))
	require.NoError(t, m.EraseArc(a, b))
	cpt, err = m.CPT("B")
	require.NoError(t, err)
	assert.Equal(t, 2, cpt.DomainSize())
	got, err := cpt.Get(map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, got)
}

func TestMemoryNetEraseArcAbsentIsNoop(t *testing.T) {
	m := NewMemoryNet()
	a, _ := m.Add(binary("A"))
	b, _ := m.Add(binary("B"))
	assert.NoError(t, m.EraseArc(a, b))
}

func TestMemoryNetEraseCascades(t *testing.T) {
	m := NewMemoryNet()
	a, _ := m.Add(binary("A"))
	b, _ := m.Add(binary("B"))
	c, _ := m.Add(binary("C"))
	require.NoError(t, m.AddArc(a, b))
	require.NoError(t, m.AddArc(a, c))
	require.NoError(t, m.AddArc(b, c))

	require.NoError(t, m.Erase("A"))
	assert.False(t, m.Exists("A"))
	assert.Equal(t, []Arc{{Tail: b, Head: c}}, m.Arcs())

	// C lost parent A, so its table shrinks to C x B.
	cpt, err := m.CPT("C")
	require.NoError(t, err)
	assert.Equal(t, 4, cpt.DomainSize())

	assert.ErrorIs(t, m.Erase("A"), ErrNodeNotFound)
}

func TestMemoryNetNamesInsertionOrder(t *testing.T) {
	m := NewMemoryNet()
	m.Add(binary("C"))
	m.Add(binary("A"))
	m.Add(binary("B"))
	assert.Equal(t, []string{"C", "A", "B"}, m.Names())

	require.NoError(t, m.Erase("A"))
	assert.Equal(t, []string{"C", "B"}, m.Names())
}

func TestMemoryNetCloneIsIndependent(t *testing.T) {
	m := NewMemoryNet()
	a, _ := m.Add(binary("A"))
	b, _ := m.Add(binary("B"))
	require.NoError(t, m.AddArc(a, b))
	cpt, _ := m.CPT("B")
	require.NoError(t, cpt.FillValues([]float64{0.1, 0.9, 0.7, 0.3}))

	clone := m.Clone()
	require.Equal(t, m.Size(), clone.Size())

	// Mutating the clone leaves the original untouched.
	cloneCPT, err := clone.CPT("B")
	require.NoError(t, err)
	require.NoError(t, cloneCPT.Fill(0))
	_, err = clone.Add(binary("C"))
	require.NoError(t, err)

	assert.Equal(t, 2, m.Size())
	got, err := cpt.Get(map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9, 0.7, 0.3}, got)
}
