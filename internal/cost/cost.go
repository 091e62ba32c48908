// Package cost implements the task-polymorphic training objective consumed
// by the orchestrator.
//
// The task kind is a closed enum — regression, classification,
// reinforcement — handled exhaustively, so adding a task is a compile-time
// change, not an open dispatch surface. Evaluate is a pure function of
// circuit outputs and targets: it returns both the scalar loss and
// d(loss)/d(outputs), the upstream gradient the execution substrate needs
// for external differentiation. No mutable state is captured anywhere.
package cost

import (
	"fmt"
	"math"

	"github.com/ansatz-ml/ansatz/internal/circuit"
)

// Task identifies the training objective.
type Task string

// Supported task kinds.
const (
	TaskRegression     Task = "regression"
	TaskClassification Task = "classification"
	TaskReinforcement  Task = "reinforcement"
)

// ParseTask validates a task name from configuration.
func ParseTask(s string) (Task, error) {
	switch t := Task(s); t {
	case TaskRegression, TaskClassification, TaskReinforcement:
		return t, nil
	default:
		return "", &circuit.ConfigurationError{
			Field:  "task_type",
			Reason: fmt.Sprintf("unrecognized task %q", s),
		}
	}
}

// DefaultClampEps bounds probabilities away from 0 and 1 before the log in
// cross-entropy, keeping the loss finite when circuit expectations saturate
// at ±1. Tunable per Cost, not a hard-coded global.
const DefaultClampEps = 1e-12

// Cost evaluates the objective for one task kind.
type Cost struct {
	task     Task
	clampEps float64
}

// New returns a cost for the given task.
func New(task Task) (*Cost, error) {
	if _, err := ParseTask(string(task)); err != nil {
		return nil, err
	}
	return &Cost{task: task, clampEps: DefaultClampEps}, nil
}

// Task returns the task kind the cost was built for.
func (c *Cost) Task() Task {
	return c.task
}

// SetClampEps overrides the probability clamping bound.
func (c *Cost) SetClampEps(eps float64) {
	if eps > 0 {
		c.clampEps = eps
	}
}

// Evaluate computes the scalar loss over the batch and the per-example
// upstream gradient d(loss)/d(outputs).
//
// Target conventions per task:
//   - regression: targets mirror the output rows; loss is mean squared error
//     over every output coordinate.
//   - classification, single output: target in {0, 1}; the expectation in
//     [−1, 1] maps to a probability p = (1+out)/2 and the loss is binary
//     cross-entropy. Multiple outputs: targets are a probability vector
//     (one-hot for class indices) and the loss is softmax cross-entropy.
//   - reinforcement: targets are per-output rewards; the loss is the
//     negative expected reward over the episode batch.
func (c *Cost) Evaluate(outputs, targets [][]float64) (float64, [][]float64, error) {
	if len(outputs) == 0 {
		return 0, nil, fmt.Errorf("cost: empty batch")
	}
	if len(outputs) != len(targets) {
		return 0, nil, fmt.Errorf("cost: %d outputs for %d targets", len(outputs), len(targets))
	}

	switch c.task {
	case TaskRegression:
		return c.meanSquared(outputs, targets)
	case TaskClassification:
		if len(outputs[0]) == 1 {
			return c.binaryCrossEntropy(outputs, targets)
		}
		return c.softmaxCrossEntropy(outputs, targets)
	case TaskReinforcement:
		return c.negativeReward(outputs, targets)
	default:
		return 0, nil, fmt.Errorf("cost: unrecognized task %q", c.task)
	}
}

func (c *Cost) meanSquared(outputs, targets [][]float64) (float64, [][]float64, error) {
	n := 0
	for i := range outputs {
		if len(outputs[i]) != len(targets[i]) {
			return 0, nil, fmt.Errorf("cost: example %d has %d outputs and %d targets",
				i, len(outputs[i]), len(targets[i]))
		}
		n += len(outputs[i])
	}

	loss := 0.0
	upstream := make([][]float64, len(outputs))
	for i := range outputs {
		upstream[i] = make([]float64, len(outputs[i]))
		for k, out := range outputs[i] {
			diff := out - targets[i][k]
			loss += diff * diff
			upstream[i][k] = 2 * diff / float64(n)
		}
	}
	return loss / float64(n), upstream, nil
}

// binaryCrossEntropy treats the single expectation output as a probability
// p = (1+out)/2, clamped before the log.
func (c *Cost) binaryCrossEntropy(outputs, targets [][]float64) (float64, [][]float64, error) {
	n := float64(len(outputs))
	loss := 0.0
	upstream := make([][]float64, len(outputs))
	for i := range outputs {
		if len(targets[i]) != 1 {
			return 0, nil, fmt.Errorf("cost: example %d: binary classification expects one target, got %d",
				i, len(targets[i]))
		}
		y := targets[i][0]
		p := clamp((1+outputs[i][0])/2, c.clampEps, 1-c.clampEps)
		loss += -(y*math.Log(p) + (1-y)*math.Log(1-p))

		// dL/dout = dL/dp · dp/dout with dp/dout = 1/2.
		upstream[i] = []float64{(p - y) / (p * (1 - p)) / 2 / n}
	}
	return loss / n, upstream, nil
}

func (c *Cost) softmaxCrossEntropy(outputs, targets [][]float64) (float64, [][]float64, error) {
	n := float64(len(outputs))
	loss := 0.0
	upstream := make([][]float64, len(outputs))
	for i := range outputs {
		if len(targets[i]) != len(outputs[i]) {
			return 0, nil, fmt.Errorf("cost: example %d has %d outputs and %d targets",
				i, len(outputs[i]), len(targets[i]))
		}
		probs := Softmax(outputs[i])
		upstream[i] = make([]float64, len(probs))
		for k, p := range probs {
			y := targets[i][k]
			loss += -y * math.Log(clamp(p, c.clampEps, 1))

			// Softmax cross-entropy gradient: p − y.
			upstream[i][k] = (p - y) / n
		}
	}
	return loss / n, upstream, nil
}

// negativeReward scores an episode batch: maximizing expected reward is
// minimizing −(1/N) Σᵢ rewardᵢ · outputᵢ.
func (c *Cost) negativeReward(outputs, targets [][]float64) (float64, [][]float64, error) {
	n := float64(len(outputs))
	loss := 0.0
	upstream := make([][]float64, len(outputs))
	for i := range outputs {
		if len(targets[i]) != len(outputs[i]) {
			return 0, nil, fmt.Errorf("cost: example %d has %d outputs and %d rewards",
				i, len(outputs[i]), len(targets[i]))
		}
		upstream[i] = make([]float64, len(outputs[i]))
		for k, out := range outputs[i] {
			loss -= targets[i][k] * out
			upstream[i][k] = -targets[i][k] / n
		}
	}
	return loss / n, upstream, nil
}

// Softmax computes a numerically stable softmax using the max-subtraction
// trick, shared with prediction code.
func Softmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}
	sum := 0.0
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
