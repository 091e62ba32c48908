// Package circuit implements the layered data model for parametrized quantum
// circuits in the Ansatz ML framework.
//
// This package provides the building blocks for assembling trainable circuits:
//   - EncodingLayer: Non-trainable data embedding (angle, amplitude, basis)
//   - VariationalLayer: Trainable rotation + entangling block
//   - MeasurementSpec: PauliZ expectation readout
//   - Architecture: Immutable composition of the above with a parameter manifest
//   - Device: Contract for the execution substrate that runs architectures
//
// An Architecture is pure data. It never executes anything itself; a Device
// implementation interprets the manifest against whatever substrate it wraps
// (statevector simulation, hardware, a remote service). This keeps the data
// model decoupled from any one backend.
//
// Design inspired by PennyLane's qnode/template split but adapted for Go
// with explicit manifests instead of tracing.
package circuit

// Scheme selects how classical features are embedded into the circuit.
type Scheme string

// Supported encoding schemes.
const (
	SchemeAngle     Scheme = "angle"     // One rotation angle per wire per feature
	SchemeAmplitude Scheme = "amplitude" // Features become normalized state amplitudes
	SchemeBasis     Scheme = "basis"     // Thresholded bits prepared as basis states
)

// Entangling selects the fixed two-qubit topology of a variational block.
type Entangling string

// Supported entangling patterns.
const (
	EntangleLinear   Entangling = "linear"     // CNOT chain 0→1→...→n-1
	EntangleRing     Entangling = "ring"       // Linear chain closed with CNOT(n-1, 0)
	EntangleAllToAll Entangling = "all_to_all" // CNOT(i, j) for every pair i < j
)

// Axis identifies a rotation axis for trainable single-qubit gates.
type Axis string

// Supported rotation axes.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// LayerKind discriminates the three stages of an assembled circuit.
type LayerKind string

// Layer kinds, in assembly order.
const (
	KindEncoding    LayerKind = "encoding"
	KindVariational LayerKind = "variational"
	KindMeasurement LayerKind = "measurement"
)

// ParamShape describes the dimensions of a layer's trainable parameter block.
// An empty shape means the layer has no trainable parameters.
type ParamShape []int

// Size returns the total number of parameters described by the shape.
func (s ParamShape) Size() int {
	if len(s) == 0 {
		return 0
	}
	size := 1
	for _, d := range s {
		size *= d
	}
	return size
}

// Equal reports whether two shapes have identical dimensions.
func (s ParamShape) Equal(other ParamShape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, d := range s {
		if d != other[i] {
			return false
		}
	}
	return true
}

// LayerConfig holds the recognized options of a layer descriptor.
// Only the fields relevant to the layer's kind are populated.
type LayerConfig struct {
	// Encoding options.
	Scheme     Scheme `json:"scheme,omitempty"`
	FeatureDim int    `json:"feature_dim,omitempty"`

	// Variational options.
	Pattern Entangling `json:"pattern,omitempty"`
	Axes    []Axis     `json:"axes,omitempty"`

	// Measurement options: wires read out as PauliZ expectations,
	// one output per observable, in order.
	Observables []int `json:"observables,omitempty"`
}

// Layer is one descriptor in an Architecture manifest.
//
// A Layer is simultaneously a static architecture description and the unit a
// Device interprets at execution time. Wires lists the qubit span in
// ascending order; Shape sizes the layer's slice of the flat parameter
// vector (empty for encoding and measurement layers).
type Layer struct {
	Kind   LayerKind   `json:"kind"`
	Shape  ParamShape  `json:"shape,omitempty"`
	Wires  []int       `json:"wires"`
	Config LayerConfig `json:"config"`
}

// Manifest is the ordered sequence of layer descriptors of an assembled
// circuit, together with the declared wire count. Manifests are immutable
// once produced by Assemble; build a new Architecture instead of mutating.
type Manifest struct {
	NumWires int     `json:"num_wires"`
	Layers   []Layer `json:"layers"`
}

// ParamCount returns the total trainable parameter count across all layers.
// This is the required length of the flat parameter vector.
func (m Manifest) ParamCount() int {
	total := 0
	for _, l := range m.Layers {
		total += l.Shape.Size()
	}
	return total
}

// NumOutputs returns the number of classical outputs produced per example,
// i.e. the observable count of the measurement layer.
func (m Manifest) NumOutputs() int {
	for _, l := range m.Layers {
		if l.Kind == KindMeasurement {
			return len(l.Config.Observables)
		}
	}
	return 0
}

// Equal reports structural equality of two manifests: same wire count and
// the same ordered layer descriptors.
func (m Manifest) Equal(other Manifest) bool {
	if m.NumWires != other.NumWires || len(m.Layers) != len(other.Layers) {
		return false
	}
	for i, l := range m.Layers {
		if !layerEqual(l, other.Layers[i]) {
			return false
		}
	}
	return true
}

func layerEqual(a, b Layer) bool {
	if a.Kind != b.Kind || !a.Shape.Equal(b.Shape) {
		return false
	}
	if len(a.Wires) != len(b.Wires) {
		return false
	}
	for i, w := range a.Wires {
		if w != b.Wires[i] {
			return false
		}
	}
	return configEqual(a.Config, b.Config)
}

func configEqual(a, b LayerConfig) bool {
	if a.Scheme != b.Scheme || a.FeatureDim != b.FeatureDim || a.Pattern != b.Pattern {
		return false
	}
	if len(a.Axes) != len(b.Axes) || len(a.Observables) != len(b.Observables) {
		return false
	}
	for i, ax := range a.Axes {
		if ax != b.Axes[i] {
			return false
		}
	}
	for i, o := range a.Observables {
		if o != b.Observables[i] {
			return false
		}
	}
	return true
}

// Device is the execution substrate contract consumed by the training core.
//
// Execute runs the architecture once per input row and returns one output row
// per input, in submission order. Gradient returns d(loss)/d(parameters)
// given the upstream d(loss)/d(outputs) for the same inputs. Implementations
// may batch or parallelize internally as long as output ordering is
// preserved; the core never inspects the substrate's representation.
type Device interface {
	Execute(arch *Architecture, params []float64, inputs [][]float64) ([][]float64, error)
	Gradient(arch *Architecture, params []float64, inputs [][]float64, upstream [][]float64) ([]float64, error)
}
