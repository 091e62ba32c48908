// Package optim implements the classical parameter-update rules used to
// train Ansatz circuits.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Gradient descent with optional momentum
//   - Adam: Adaptive moment estimation
//
// Optimizers own the flat parameter vector during training: Step mutates it
// in place from the gradient supplied by the execution substrate. Every rule
// checks the update for non-finite coordinates before committing — on
// divergence, both the parameters and the optimizer's moment state are left
// untouched and a DivergenceError is returned for the orchestrator to handle.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.01})
//	for step := range steps {
//	    loss, upstream, _ := cost.Evaluate(outputs, targets)
//	    grad, _ := device.Gradient(arch, params, inputs, upstream)
//	    if err := opt.Step(params, grad); err != nil {
//	        // rollback / surface divergence
//	    }
//	}
package optim

import (
	"fmt"
	"math"

	"github.com/ansatz-ml/ansatz/internal/circuit"
)

// Algorithm names an update rule.
type Algorithm string

// Supported update rules.
const (
	AlgoSGD      Algorithm = "sgd"
	AlgoMomentum Algorithm = "momentum"
	AlgoAdam     Algorithm = "adam"
)

// Optimizer is the base interface for all update rules.
type Optimizer interface {
	// Step applies one update to params in place using grad.
	// params and grad must have equal length. On divergence the call
	// returns a *DivergenceError and commits nothing.
	Step(params, grad []float64) error

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate, e.g. when the orchestrator halves
	// it after a divergence rollback.
	SetLR(lr float64)

	// StateDict exports the optimizer's moment state for checkpointing.
	StateDict() map[string][]float64

	// LoadStateDict restores previously exported moment state.
	LoadStateDict(state map[string][]float64) error
}

// Config selects and parameterizes an update rule from the declarative
// configuration surface.
type Config struct {
	Algorithm Algorithm
	LR        float64
	Momentum  float64    // momentum only
	Betas     [2]float64 // adam only
	Eps       float64    // adam only
}

// New builds the optimizer named by the config.
func New(cfg Config) (Optimizer, error) {
	switch cfg.Algorithm {
	case AlgoSGD:
		return NewSGD(SGDConfig{LR: cfg.LR}), nil
	case AlgoMomentum:
		momentum := cfg.Momentum
		if momentum == 0 {
			momentum = 0.9
		}
		return NewSGD(SGDConfig{LR: cfg.LR, Momentum: momentum}), nil
	case AlgoAdam:
		return NewAdam(AdamConfig{LR: cfg.LR, Betas: cfg.Betas, Eps: cfg.Eps}), nil
	default:
		return nil, &circuit.ConfigurationError{
			Field:  "optimizer",
			Reason: fmt.Sprintf("unrecognized algorithm %q", cfg.Algorithm),
		}
	}
}

// DivergenceError reports a non-finite value encountered during a step:
// either in the incoming gradient or in the parameters the update would
// have produced. The optimizer state is unchanged when it is returned.
type DivergenceError struct {
	Index int     // Offending parameter coordinate
	Value float64 // The non-finite value
	In    string  // "gradient" or "update"
}

// Error implements the error interface.
func (e *DivergenceError) Error() string {
	return fmt.Sprintf("numerical divergence: non-finite %s at parameter %d (%v)", e.In, e.Index, e.Value)
}

// checkGradient rejects gradients carrying NaN or Inf before any state is
// touched.
func checkGradient(params, grad []float64) error {
	if len(grad) != len(params) {
		return fmt.Errorf("optim: gradient has %d entries for %d parameters", len(grad), len(params))
	}
	for i, g := range grad {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return &DivergenceError{Index: i, Value: g, In: "gradient"}
		}
	}
	return nil
}
