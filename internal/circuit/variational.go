package circuit

import "fmt"

// VariationalLayer is one trainable block: a rotation sub-layer with one
// angle per wire per configured axis, followed by a fixed entangling
// sub-layer. Stacking depth blocks gives the full variational stack.
type VariationalLayer struct {
	NumWires int
	Pattern  Entangling
	Axes     []Axis
}

// DefaultAxes is the rotation axis set used when none is configured.
// An RX/RZ pair per wire gives expressive single-qubit rotations while
// keeping the parameter count at two per wire per block.
var DefaultAxes = []Axis{AxisX, AxisZ}

// BuildVariational produces depth stacked variational blocks.
//
// Each block trains numWires × len(axes) angles; the full stack therefore
// drives a parameter vector of length depth × numWires × len(axes).
// Entanglement requires at least two wires and at least one block.
func BuildVariational(numWires, depth int, pattern Entangling, axes []Axis) ([]VariationalLayer, error) {
	if numWires < 2 {
		return nil, &ConfigurationError{
			Field:  "num_wires",
			Reason: fmt.Sprintf("entanglement requires at least 2 wires, got %d", numWires),
		}
	}
	if depth < 1 {
		return nil, &ConfigurationError{
			Field:  "depth",
			Reason: fmt.Sprintf("must be at least 1, got %d", depth),
		}
	}
	switch pattern {
	case EntangleLinear, EntangleRing, EntangleAllToAll:
	default:
		return nil, &ConfigurationError{
			Field:  "entangling_pattern",
			Reason: fmt.Sprintf("unrecognized pattern %q", pattern),
		}
	}
	if len(axes) == 0 {
		axes = DefaultAxes
	}
	for _, ax := range axes {
		switch ax {
		case AxisX, AxisY, AxisZ:
		default:
			return nil, &ConfigurationError{
				Field:  "rotation_axes",
				Reason: fmt.Sprintf("unrecognized axis %q", ax),
			}
		}
	}

	layers := make([]VariationalLayer, depth)
	for i := range layers {
		layers[i] = VariationalLayer{
			NumWires: numWires,
			Pattern:  pattern,
			Axes:     append([]Axis(nil), axes...),
		}
	}
	return layers, nil
}

// Layer returns the manifest descriptor for one variational block.
//
// The parameter shape is {numWires, len(axes)}: the flat parameter vector
// holds angles wire-major, axis-minor within the block.
func (v VariationalLayer) Layer() Layer {
	return Layer{
		Kind:  KindVariational,
		Shape: ParamShape{v.NumWires, len(v.Axes)},
		Wires: wireSpan(v.NumWires),
		Config: LayerConfig{
			Pattern: v.Pattern,
			Axes:    append([]Axis(nil), v.Axes...),
		},
	}
}
