package statevector

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/parallel"
)

// Device is an exact simulator implementing circuit.Device. A single Device
// is safe for concurrent use: every Execute call owns its own statevector.
type Device struct {
	par parallel.Config
}

// New returns a statevector device that spreads independent circuit
// evaluations across CPU cores.
func New() *Device {
	return &Device{par: parallel.DefaultConfig()}
}

// NewSequential returns a single-threaded device, useful for deterministic
// profiling.
func NewSequential() *Device {
	return &Device{par: parallel.Sequential()}
}

// Execute runs the architecture for every input row and returns one output
// row (PauliZ expectations) per input, in order. Rows are simulated in
// parallel.
func (d *Device) Execute(arch *circuit.Architecture, params []float64, inputs [][]float64) ([][]float64, error) {
	if got, want := len(params), arch.ParamCount(); got != want {
		return nil, fmt.Errorf("statevector: parameter vector has %d entries, architecture expects %d", got, want)
	}
	outputs := make([][]float64, len(inputs))
	err := parallel.ForErr(len(inputs), func(i int) error {
		out, err := d.run(arch, params, inputs[i])
		if err != nil {
			return fmt.Errorf("statevector: input %d: %w", i, err)
		}
		outputs[i] = out
		return nil
	}, d.par)
	if err != nil {
		return nil, err
	}
	return outputs, nil
}

// run simulates one circuit evaluation.
func (d *Device) run(arch *circuit.Architecture, params, features []float64) ([]float64, error) {
	manifest := arch.Manifest()
	state := make([]complex128, 1<<manifest.NumWires)
	state[0] = 1

	offset := 0
	var outputs []float64
	for _, layer := range manifest.Layers {
		switch layer.Kind {
		case circuit.KindEncoding:
			if err := encode(state, layer, features); err != nil {
				return nil, err
			}
		case circuit.KindVariational:
			applyVariational(state, layer, params[offset:offset+layer.Shape.Size()])
			offset += layer.Shape.Size()
		case circuit.KindMeasurement:
			outputs = measure(state, layer.Config.Observables)
		default:
			return nil, fmt.Errorf("unrecognized layer kind %q", layer.Kind)
		}
	}
	if outputs == nil {
		return nil, fmt.Errorf("manifest has no measurement layer")
	}
	return outputs, nil
}

// encode prepares the initial state from the input features.
func encode(state []complex128, layer circuit.Layer, features []float64) error {
	dim := layer.Config.FeatureDim
	if len(features) != dim {
		return fmt.Errorf("encoding expects %d features, got %d", dim, len(features))
	}

	switch layer.Config.Scheme {
	case circuit.SchemeAngle:
		for w, x := range features {
			applyRX(state, w, x)
		}
	case circuit.SchemeAmplitude:
		norm := 0.0
		for _, x := range features {
			norm += x * x
		}
		if norm == 0 {
			return fmt.Errorf("amplitude encoding requires a non-zero feature vector")
		}
		inv := 1 / math.Sqrt(norm)
		for i := range state {
			state[i] = 0
		}
		for i, x := range features {
			state[i] = complex(x*inv, 0)
		}
	case circuit.SchemeBasis:
		for w, x := range features {
			if x > 0.5 {
				applyX(state, w)
			}
		}
	default:
		return fmt.Errorf("unrecognized encoding scheme %q", layer.Config.Scheme)
	}
	return nil
}

// applyVariational applies one rotation sub-layer followed by the entangling
// sub-layer. Angles are consumed wire-major, axis-minor, matching the layer's
// {numWires, numAxes} parameter shape.
func applyVariational(state []complex128, layer circuit.Layer, angles []float64) {
	numWires := len(layer.Wires)
	axes := layer.Config.Axes

	k := 0
	for _, w := range layer.Wires {
		for _, axis := range axes {
			theta := angles[k]
			k++
			switch axis {
			case circuit.AxisX:
				applyRX(state, w, theta)
			case circuit.AxisY:
				applyRY(state, w, theta)
			case circuit.AxisZ:
				applyRZ(state, w, theta)
			}
		}
	}

	switch layer.Config.Pattern {
	case circuit.EntangleLinear:
		for w := 0; w < numWires-1; w++ {
			applyCNOT(state, w, w+1)
		}
	case circuit.EntangleRing:
		for w := 0; w < numWires-1; w++ {
			applyCNOT(state, w, w+1)
		}
		if numWires > 2 {
			applyCNOT(state, numWires-1, 0)
		}
	case circuit.EntangleAllToAll:
		for c := 0; c < numWires-1; c++ {
			for t := c + 1; t < numWires; t++ {
				applyCNOT(state, c, t)
			}
		}
	}
}

// measure returns the PauliZ expectation of each observable wire:
// ⟨Z_w⟩ = Σ |amp_i|² · (+1 if bit w of i is 0, else −1).
func measure(state []complex128, observables []int) []float64 {
	out := make([]float64, len(observables))
	for k, w := range observables {
		mask := 1 << w
		exp := 0.0
		for i, amp := range state {
			p := real(amp)*real(amp) + imag(amp)*imag(amp)
			if i&mask == 0 {
				exp += p
			} else {
				exp -= p
			}
		}
		out[k] = exp
	}
	return out
}

// Single-qubit gate application iterates the index pairs differing only in
// bit w and mixes each pair with the gate's 2×2 matrix.

func applyRX(state []complex128, w int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	forPairs(state, w, func(i, j int) {
		a, b := state[i], state[j]
		state[i] = c*a + s*b
		state[j] = s*a + c*b
	})
}

func applyRY(state []complex128, w int, theta float64) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	forPairs(state, w, func(i, j int) {
		a, b := state[i], state[j]
		state[i] = c*a - s*b
		state[j] = s*a + c*b
	})
}

func applyRZ(state []complex128, w int, theta float64) {
	p0 := cmplx.Exp(complex(0, -theta/2))
	p1 := cmplx.Exp(complex(0, theta/2))
	forPairs(state, w, func(i, j int) {
		state[i] *= p0
		state[j] *= p1
	})
}

func applyX(state []complex128, w int) {
	forPairs(state, w, func(i, j int) {
		state[i], state[j] = state[j], state[i]
	})
}

func applyCNOT(state []complex128, control, target int) {
	cMask := 1 << control
	tMask := 1 << target
	for i := range state {
		if i&cMask != 0 && i&tMask == 0 {
			j := i | tMask
			state[i], state[j] = state[j], state[i]
		}
	}
}

// forPairs visits every index pair (i, j) with bit w clear in i and set in j.
func forPairs(state []complex128, w int, f func(i, j int)) {
	mask := 1 << w
	for i := range state {
		if i&mask == 0 {
			f(i, i|mask)
		}
	}
}
