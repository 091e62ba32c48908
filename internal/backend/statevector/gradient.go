package statevector

import (
	"fmt"
	"math"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/parallel"
)

// shift is the parameter-shift offset. For circuits built from rotation
// gates the rule is exact: ∂f/∂θ = (f(θ+π/2) − f(θ−π/2)) / 2.
const shift = math.Pi / 2

// Gradient computes d(loss)/d(parameters) for the given inputs.
//
// upstream carries d(loss)/d(outputs), one row per input in the same order
// Execute returns outputs. The device evaluates two shifted circuits per
// parameter and contracts the resulting Jacobian with upstream.
func (d *Device) Gradient(arch *circuit.Architecture, params []float64, inputs [][]float64, upstream [][]float64) ([]float64, error) {
	if len(upstream) != len(inputs) {
		return nil, fmt.Errorf("statevector: upstream has %d rows for %d inputs", len(upstream), len(inputs))
	}
	numOutputs := arch.NumOutputs()
	for i, row := range upstream {
		if len(row) != numOutputs {
			return nil, fmt.Errorf("statevector: upstream row %d has %d entries, architecture produces %d outputs",
				i, len(row), numOutputs)
		}
	}

	// Parallelism lives at the parameter level; the nested Executes run
	// sequentially on a zero-value device.
	seq := &Device{}
	grad := make([]float64, len(params))
	err := parallel.ForErr(len(params), func(j int) error {
		shifted := append([]float64(nil), params...)

		shifted[j] = params[j] + shift
		plus, err := seq.Execute(arch, shifted, inputs)
		if err != nil {
			return err
		}

		shifted[j] = params[j] - shift
		minus, err := seq.Execute(arch, shifted, inputs)
		if err != nil {
			return err
		}

		sum := 0.0
		for i := range inputs {
			for k := 0; k < numOutputs; k++ {
				sum += upstream[i][k] * (plus[i][k] - minus[i][k]) / 2
			}
		}
		grad[j] = sum
		return nil
	}, d.par)
	if err != nil {
		return nil, err
	}
	return grad, nil
}
