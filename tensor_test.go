package ktbn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/ktbn"
	"github.com/soundprediction/ktbn/pkg/types"
)

// twoVarTemplate builds a k=2 template where B1 depends on A0 and B0.
func twoVarTemplate(t *testing.T) *ktbn.Network {
	t.Helper()
	net, err := ktbn.New(2)
	require.NoError(t, err)
	require.NoError(t, net.AddVariableFast("A"))
	require.NoError(t, net.AddVariableFast("B"))
	require.NoError(t, net.AddArc(types.Key("A", 0), types.Key("B", 1)))
	require.NoError(t, net.AddArc(types.Key("B", 0), types.Key("B", 1)))
	return net
}

func TestTensorReadWrite(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 1))
	require.NoError(t, err)
	require.Equal(t, 8, tensor.DomainSize())

	require.NoError(t, tensor.FillValues([]float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6}))

	// Full evidence reads a single cell.
	val, err := tensor.Value(types.Evidence{
		types.Key("B", 1): 1,
		types.Key("A", 0): 0,
		types.Key("B", 0): 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.9, val)

	// Partial evidence reads a sub-array in ascending flat order.
	sub, err := tensor.Read(types.Evidence{types.Key("A", 0): 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.8, 0.4, 0.6}, sub)

	// Value over more than one cell is refused.
	_, err = tensor.Value(types.Evidence{types.Key("A", 0): 1})
	require.Error(t, err)
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestTensorWriteBroadcasts(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 1))
	require.NoError(t, err)

	require.NoError(t, tensor.Write(types.Evidence{types.Key("B", 1): 0}, 0.25))
	all, err := tensor.Read(types.Evidence{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0, 0.25, 0, 0.25, 0, 0.25, 0}, all)
}

func TestTensorWritesReachTheEngine(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 0))
	require.NoError(t, err)
	require.NoError(t, tensor.Fill(0.5))

	// A fresh view over the same replica sees the write.
	again, err := net.CPT(types.Key("B", 0))
	require.NoError(t, err)
	vals, err := again.Read(types.Evidence{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vals)
}

func TestTensorKeys(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 1))
	require.NoError(t, err)

	keys, err := tensor.Keys()
	require.NoError(t, err)
	assert.Equal(t, []types.UserKey{
		types.Key("B", 1),
		types.Key("A", 0),
		types.Key("B", 0),
	}, keys)
}

func TestTensorRejectsUnknownEvidence(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 1))
	require.NoError(t, err)

	_, err = tensor.Read(types.Evidence{types.Key("A", 1): 0})
	assert.Error(t, err, "A1 is not an axis of B1's table")
}

func TestTensorStringUsesUserKeys(t *testing.T) {
	net := twoVarTemplate(t)
	tensor, err := net.CPT(types.Key("B", 1))
	require.NoError(t, err)
	require.NoError(t, tensor.FillValues([]float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6}))

	s := tensor.String()
	assert.Contains(t, s, "('B', 1)")
	assert.Contains(t, s, "('A', 0)")
	assert.Contains(t, s, "('B', 0)")
	assert.NotContains(t, s, "B#1")

	// Rendering must not disturb the underlying table.
	all, err := tensor.Read(types.Evidence{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6}, all)
}
