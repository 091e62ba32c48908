package circuit

import "fmt"

// MeasurementSpec fixes the classical readout of the circuit: a PauliZ
// expectation per listed observable wire, one output per observable, in
// order. The expectation values are the model's predictions.
type MeasurementSpec struct {
	NumWires    int
	Observables []int
}

// BuildMeasurement returns a measurement spec reading the given wires.
// A nil or empty observables list defaults to wire 0, the single-output
// readout used by regression and binary classification.
func BuildMeasurement(numWires int, observables []int) (*MeasurementSpec, error) {
	if numWires < 1 {
		return nil, &ConfigurationError{
			Field:  "num_wires",
			Reason: fmt.Sprintf("must be positive, got %d", numWires),
		}
	}
	if len(observables) == 0 {
		observables = []int{0}
	}
	for _, w := range observables {
		if w < 0 || w >= numWires {
			return nil, &ConfigurationError{
				Field:  "observables",
				Reason: fmt.Sprintf("wire %d outside range [0, %d)", w, numWires),
			}
		}
	}
	return &MeasurementSpec{
		NumWires:    numWires,
		Observables: append([]int(nil), observables...),
	}, nil
}

// Layer returns the manifest descriptor for the measurement stage.
func (m *MeasurementSpec) Layer() Layer {
	return Layer{
		Kind:  KindMeasurement,
		Wires: append([]int(nil), m.Observables...),
		Config: LayerConfig{
			Observables: append([]int(nil), m.Observables...),
		},
	}
}
