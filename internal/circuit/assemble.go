package circuit

import (
	"fmt"
	"math/rand"
)

// InitKind selects the parameter initialization policy of an architecture.
type InitKind string

// Supported initialization policies.
const (
	InitUniform InitKind = "uniform" // Independent draws from U(-Range, Range)
	InitZeros   InitKind = "zeros"
)

// InitPolicy configures how the flat parameter vector is initialized.
type InitPolicy struct {
	Kind  InitKind `json:"kind"`
	Range float64  `json:"range,omitempty"` // Half-width of the uniform draw
}

// DefaultInitRange is the half-width used for uniform initialization when no
// range is configured. Small symmetric angles keep early circuit outputs
// away from expectation plateaus.
const DefaultInitRange = 0.1

// Architecture is the assembled, immutable composition of encoding layer,
// variational stack, and measurement stage. Retraining with a different
// depth or topology requires assembling a new Architecture.
type Architecture struct {
	manifest Manifest
	init     InitPolicy
	params   int
}

// Assemble concatenates the layers in fixed order — encoding, variational
// stack, measurement — validating wire-count consistency across all of them.
//
// The returned Architecture owns a copy of every descriptor; the inputs can
// be reused to assemble further architectures and equal inputs assemble to
// structurally equal manifests.
func Assemble(enc *EncodingLayer, vars []VariationalLayer, meas *MeasurementSpec, init InitPolicy) (*Architecture, error) {
	if enc == nil {
		return nil, &ArchitectureError{Layer: "encoding", Reason: "missing"}
	}
	if len(vars) == 0 {
		return nil, &ArchitectureError{Layer: "variational", Reason: "empty stack"}
	}
	if meas == nil {
		return nil, &ArchitectureError{Layer: "measurement", Reason: "missing"}
	}

	numWires := enc.NumWires
	for i, v := range vars {
		if v.NumWires != numWires {
			return nil, &ArchitectureError{
				Layer: fmt.Sprintf("variational[%d]", i),
				Reason: fmt.Sprintf("spans %d wires, encoding declared %d",
					v.NumWires, numWires),
			}
		}
	}
	if meas.NumWires != numWires {
		return nil, &ArchitectureError{
			Layer: "measurement",
			Reason: fmt.Sprintf("spans %d wires, encoding declared %d",
				meas.NumWires, numWires),
		}
	}

	switch init.Kind {
	case "":
		init.Kind = InitUniform
	case InitUniform, InitZeros:
	default:
		return nil, &ConfigurationError{
			Field:  "init_policy",
			Reason: fmt.Sprintf("unrecognized policy %q", init.Kind),
		}
	}
	if init.Kind == InitUniform && init.Range == 0 {
		init.Range = DefaultInitRange
	}
	if init.Range < 0 {
		return nil, &ConfigurationError{
			Field:  "init_range",
			Reason: fmt.Sprintf("must be non-negative, got %v", init.Range),
		}
	}

	layers := make([]Layer, 0, len(vars)+2)
	layers = append(layers, enc.Layer())
	for _, v := range vars {
		layers = append(layers, v.Layer())
	}
	layers = append(layers, meas.Layer())

	manifest := Manifest{NumWires: numWires, Layers: layers}
	if err := validateManifest(manifest); err != nil {
		return nil, err
	}

	return &Architecture{
		manifest: manifest,
		init:     init,
		params:   manifest.ParamCount(),
	}, nil
}

// FromManifest reconstructs an architecture from a previously produced
// manifest, e.g. one loaded from a model snapshot.
func FromManifest(manifest Manifest, init InitPolicy) (*Architecture, error) {
	if err := validateManifest(manifest); err != nil {
		return nil, err
	}
	if init.Kind == "" {
		init.Kind = InitUniform
	}
	if init.Kind == InitUniform && init.Range == 0 {
		init.Range = DefaultInitRange
	}
	manifest.Layers = append([]Layer(nil), manifest.Layers...)
	return &Architecture{
		manifest: manifest,
		init:     init,
		params:   manifest.ParamCount(),
	}, nil
}

// validateManifest enforces the manifest invariants: every layer span inside
// the declared wire count and non-negative, kind-consistent shapes.
func validateManifest(m Manifest) error {
	if m.NumWires < 1 {
		return &ArchitectureError{Reason: fmt.Sprintf("declared wire count %d", m.NumWires)}
	}
	for i, l := range m.Layers {
		for _, w := range l.Wires {
			if w < 0 || w >= m.NumWires {
				return &ArchitectureError{
					Layer:  fmt.Sprintf("%s[%d]", l.Kind, i),
					Reason: fmt.Sprintf("wire %d outside declared span [0, %d)", w, m.NumWires),
				}
			}
		}
		for _, d := range l.Shape {
			if d < 0 {
				return &ArchitectureError{
					Layer:  fmt.Sprintf("%s[%d]", l.Kind, i),
					Reason: fmt.Sprintf("negative parameter shape %v", l.Shape),
				}
			}
		}
		if l.Kind != KindVariational && l.Shape.Size() != 0 {
			return &ArchitectureError{
				Layer:  fmt.Sprintf("%s[%d]", l.Kind, i),
				Reason: "only variational layers carry trainable parameters",
			}
		}
	}
	return nil
}

// Manifest returns the architecture's layer manifest. Callers must treat the
// returned value as read-only.
func (a *Architecture) Manifest() Manifest {
	return a.manifest
}

// NumWires returns the declared wire count.
func (a *Architecture) NumWires() int {
	return a.manifest.NumWires
}

// ParamCount returns the length of the flat parameter vector the
// architecture expects.
func (a *Architecture) ParamCount() int {
	return a.params
}

// NumOutputs returns the number of classical outputs per example.
func (a *Architecture) NumOutputs() int {
	return a.manifest.NumOutputs()
}

// Init returns the configured initialization policy.
func (a *Architecture) Init() InitPolicy {
	return a.init
}

// InitParams draws a fresh parameter vector according to the architecture's
// initialization policy. The RNG is supplied by the caller so one seeded
// source scopes all randomness of a training run.
func (a *Architecture) InitParams(rng *rand.Rand) []float64 {
	params := make([]float64, a.params)
	if a.init.Kind == InitZeros {
		return params
	}
	for i := range params {
		params[i] = (rng.Float64()*2 - 1) * a.init.Range
	}
	return params
}
