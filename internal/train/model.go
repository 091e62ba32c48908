package train

import (
	"fmt"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/snapshot"
)

// Model is a trained architecture bound to parameters and a device,
// ready for prediction.
type Model struct {
	Arch   *circuit.Architecture
	Device circuit.Device
	Params []float64
	Task   cost.Task
}

// FromSnapshot rebuilds a model from a saved snapshot, reconstructing the
// architecture from its manifest.
func FromSnapshot(s *snapshot.Snapshot, device circuit.Device) (*Model, error) {
	arch, err := circuit.FromManifest(s.Manifest, s.Init)
	if err != nil {
		return nil, err
	}
	if got, want := len(s.Params), arch.ParamCount(); got != want {
		return nil, &circuit.ArchitectureError{
			Reason: fmt.Sprintf("snapshot carries %d parameters, manifest requires %d", got, want),
		}
	}
	task, err := cost.ParseTask(string(s.Config.Task))
	if err != nil {
		return nil, err
	}
	return &Model{
		Arch:   arch,
		Device: device,
		Params: append([]float64(nil), s.Params...),
		Task:   task,
	}, nil
}

// Predict runs the circuit on each feature row and post-processes per task:
// raw expectations for regression and reinforcement; for classification, a
// single output thresholds at 0 into {0, 1} and multiple outputs reduce to
// the argmax class index.
func (m *Model) Predict(features [][]float64) ([][]float64, error) {
	outputs, err := m.Device.Execute(m.Arch, m.Params, features)
	if err != nil {
		return nil, err
	}

	switch m.Task {
	case cost.TaskRegression, cost.TaskReinforcement:
		return outputs, nil
	case cost.TaskClassification:
		preds := make([][]float64, len(outputs))
		for i, out := range outputs {
			if len(out) == 1 {
				label := 0.0
				if out[0] > 0 {
					label = 1.0
				}
				preds[i] = []float64{label}
				continue
			}
			preds[i] = []float64{float64(argmax(cost.Softmax(out)))}
		}
		return preds, nil
	default:
		return nil, fmt.Errorf("train: unrecognized task %q", m.Task)
	}
}

// PredictProba returns class probabilities: p = (1+out)/2 for a single
// output, softmax over multiple outputs. Probabilities are undefined for
// regression and reinforcement tasks.
func (m *Model) PredictProba(features [][]float64) ([][]float64, error) {
	if m.Task != cost.TaskClassification {
		return nil, fmt.Errorf("train: probabilities are only defined for classification, task is %q", m.Task)
	}
	outputs, err := m.Device.Execute(m.Arch, m.Params, features)
	if err != nil {
		return nil, err
	}
	probs := make([][]float64, len(outputs))
	for i, out := range outputs {
		if len(out) == 1 {
			probs[i] = []float64{(1 + out[0]) / 2}
			continue
		}
		probs[i] = cost.Softmax(out)
	}
	return probs, nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
