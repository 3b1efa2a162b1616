package ktbn

import (
	"fmt"

	"github.com/soundprediction/ktbn/pkg/engine"
	"github.com/soundprediction/ktbn/pkg/naming"
	"github.com/soundprediction/ktbn/pkg/types"
)

// Tensor is a view over one engine CPT that accepts (name, slice) keyed
// evidence instead of flat names. It holds a live reference: writes go
// straight to the engine table.
type Tensor struct {
	cpt   engine.CPT
	codec naming.Codec
}

// NewTensor wraps an engine CPT with a codec. Most callers get tensors from
// Network.CPT instead.
func NewTensor(cpt engine.CPT, codec naming.Codec) *Tensor {
	return &Tensor{cpt: cpt, codec: codec}
}

// Raw exposes the wrapped engine CPT.
func (t *Tensor) Raw() engine.CPT {
	return t.cpt
}

// DomainSize is the total number of cells.
func (t *Tensor) DomainSize() int {
	return t.cpt.DomainSize()
}

// Variables returns the table's variable sequence in engine terms, head
// first.
func (t *Tensor) Variables() []engine.Variable {
	return t.cpt.Variables()
}

// Keys returns the table's variable sequence decoded to UserKeys.
func (t *Tensor) Keys() ([]types.UserKey, error) {
	vars := t.cpt.Variables()
	out := make([]types.UserKey, len(vars))
	for i, v := range vars {
		key, err := t.codec.Decode(v.Name)
		if err != nil {
			return nil, err
		}
		out[i] = key
	}
	return out, nil
}

// Read returns the cells matching the evidence: a sub-array for partial
// evidence, a single element for full evidence.
func (t *Tensor) Read(evidence types.Evidence) ([]float64, error) {
	flat, err := t.translate(evidence)
	if err != nil {
		return nil, err
	}
	return t.cpt.Get(flat)
}

// Value reads a single cell; the evidence must cover every variable of the
// table.
func (t *Tensor) Value(evidence types.Evidence) (float64, error) {
	vals, err := t.Read(evidence)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, types.Validationf("evidence selects %d cells, want exactly 1", len(vals))
	}
	return vals[0], nil
}

// Write sets every cell matching the evidence to value.
func (t *Tensor) Write(evidence types.Evidence, value float64) error {
	flat, err := t.translate(evidence)
	if err != nil {
		return err
	}
	return t.cpt.Set(flat, value)
}

// Fill sets every cell to a constant. No name translation happens here; this
// is the positional escape hatch straight to the engine.
func (t *Tensor) Fill(value float64) error {
	return t.cpt.Fill(value)
}

// FillValues copies a flat sequence positionally over the table's existing
// variable ordering, like Fill without translation.
func (t *Tensor) FillValues(values []float64) error {
	return t.cpt.FillValues(values)
}

func (t *Tensor) translate(evidence types.Evidence) (map[string]int, error) {
	out := make(map[string]int, len(evidence))
	for key, state := range evidence {
		flat, err := t.codec.EncodeKey(key)
		if err != nil {
			return nil, err
		}
		out[flat] = state
	}
	return out, nil
}

// String renders the table with every axis relabeled to ('name', slice)
// form. The rendering is computed on a relabeled copy; the wrapped CPT is
// never touched.
func (t *Tensor) String() string {
	vars := t.cpt.Variables()
	userVars := make([]engine.Variable, len(vars))
	rename := make(map[string]string, len(vars))
	for i, v := range vars {
		label := v.Name
		if key, err := t.codec.Decode(v.Name); err == nil {
			label = key.String()
		}
		uv := v.Clone()
		uv.Name = label
		userVars[i] = uv
		rename[label] = v.Name
	}
	relabeled, err := engine.NewCPT(userVars...)
	if err != nil {
		return fmt.Sprintf("<unrenderable cpt: %v>", err)
	}
	if err := relabeled.FillFrom(t.cpt, rename); err != nil {
		return fmt.Sprintf("<unrenderable cpt: %v>", err)
	}
	return fmt.Sprint(relabeled)
}
