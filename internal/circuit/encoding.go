package circuit

import (
	"fmt"
	"math"
)

// EncodingLayer deterministically maps an input feature vector to a
// circuit-native representation. It has no trainable parameters and no side
// effects; the chosen scheme fixes how a Device prepares the initial state.
type EncodingLayer struct {
	Scheme     Scheme
	FeatureDim int
	NumWires   int
}

// BuildEncoding validates the feature dimensionality against the wire budget
// of the chosen scheme and returns the encoding layer.
//
// Wire budgets:
//   - angle: one feature per wire, featureDim ≤ numWires
//   - amplitude: features fill the 2^numWires amplitude vector,
//     numWires ≥ ceil(log2(featureDim))
//   - basis: one bit per wire, featureDim ≤ numWires
func BuildEncoding(featureDim int, scheme Scheme, numWires int) (*EncodingLayer, error) {
	if featureDim < 1 {
		return nil, &ConfigurationError{
			Field:  "feature_dim",
			Reason: fmt.Sprintf("must be positive, got %d", featureDim),
		}
	}
	if numWires < 1 {
		return nil, &ConfigurationError{
			Field:  "num_wires",
			Reason: fmt.Sprintf("must be positive, got %d", numWires),
		}
	}

	switch scheme {
	case SchemeAngle, SchemeBasis:
		if featureDim > numWires {
			return nil, &ConfigurationError{
				Field: "feature_dim",
				Reason: fmt.Sprintf("%s encoding fits one feature per wire: %d features exceed %d wires",
					scheme, featureDim, numWires),
			}
		}
	case SchemeAmplitude:
		if need := wiresForAmplitude(featureDim); numWires < need {
			return nil, &ConfigurationError{
				Field: "num_wires",
				Reason: fmt.Sprintf("amplitude encoding of %d features needs at least %d wires, got %d",
					featureDim, need, numWires),
			}
		}
	default:
		return nil, &ConfigurationError{
			Field:  "encoding_scheme",
			Reason: fmt.Sprintf("unrecognized scheme %q", scheme),
		}
	}

	return &EncodingLayer{
		Scheme:     scheme,
		FeatureDim: featureDim,
		NumWires:   numWires,
	}, nil
}

// Layer returns the manifest descriptor for the encoding layer.
func (e *EncodingLayer) Layer() Layer {
	return Layer{
		Kind:  KindEncoding,
		Wires: wireSpan(e.NumWires),
		Config: LayerConfig{
			Scheme:     e.Scheme,
			FeatureDim: e.FeatureDim,
		},
	}
}

// wiresForAmplitude returns ceil(log2(dim)), the minimum wire count whose
// amplitude vector can hold dim features.
func wiresForAmplitude(dim int) int {
	if dim <= 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(dim))))
}

func wireSpan(numWires int) []int {
	wires := make([]int, numWires)
	for i := range wires {
		wires[i] = i
	}
	return wires
}
