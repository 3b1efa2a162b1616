package ktbn

import (
	"math/rand"

	"github.com/soundprediction/ktbn/pkg/types"
)

// RandomizeCPTs fills every table in the template with random conditional
// distributions, normalized over the head axis per parent configuration.
// Handy for exercising a structure before real numbers exist.
func (n *Network) RandomizeCPTs() error {
	for _, name := range n.Variables() {
		for t := 0; t < n.k; t++ {
			tensor, err := n.CPT(types.Key(name, t))
			if err != nil {
				return err
			}
			vars := tensor.Variables()
			headDim := vars[0].DomainSize()
			total := tensor.DomainSize()
			values := make([]float64, total)
			for config := 0; config < total/headDim; config++ {
				sum := 0.0
				row := values[config*headDim : (config+1)*headDim]
				for i := range row {
					row[i] = rand.Float64() + 1e-9
					sum += row[i]
				}
				for i := range row {
					row[i] /= sum
				}
			}
			if err := tensor.FillValues(values); err != nil {
				return err
			}
		}
	}
	return nil
}
