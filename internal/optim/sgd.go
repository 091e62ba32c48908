package optim

import (
	"fmt"
	"math"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Momentum accelerates descent along consistent gradient directions and
// dampens oscillation across them.
type SGD struct {
	lr       float64
	momentum float64
	velocity []float64 // lazily sized to the parameter vector
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer, filling unset fields with defaults.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:       config.LR,
		momentum: config.Momentum,
	}
}

// Step applies one descent update to params in place.
//
// The candidate update is computed against scratch buffers first; only when
// every coordinate is finite are the parameters and the velocity committed.
func (s *SGD) Step(params, grad []float64) error {
	if err := checkGradient(params, grad); err != nil {
		return err
	}

	if s.momentum == 0 {
		for i, g := range grad {
			next := params[i] - s.lr*g
			if math.IsNaN(next) || math.IsInf(next, 0) {
				return &DivergenceError{Index: i, Value: next, In: "update"}
			}
			params[i] = next
		}
		return nil
	}

	if s.velocity == nil {
		s.velocity = make([]float64, len(params))
	} else if len(s.velocity) != len(params) {
		return fmt.Errorf("optim: velocity sized for %d parameters, got %d", len(s.velocity), len(params))
	}

	nextVelocity := make([]float64, len(params))
	nextParams := make([]float64, len(params))
	for i, g := range grad {
		nextVelocity[i] = s.momentum*s.velocity[i] + g
		nextParams[i] = params[i] - s.lr*nextVelocity[i]
		if math.IsNaN(nextParams[i]) || math.IsInf(nextParams[i], 0) {
			return &DivergenceError{Index: i, Value: nextParams[i], In: "update"}
		}
	}
	copy(s.velocity, nextVelocity)
	copy(params, nextParams)
	return nil
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict exports the velocity buffer. Without momentum the state is empty.
func (s *SGD) StateDict() map[string][]float64 {
	state := make(map[string][]float64)
	if s.momentum != 0 && s.velocity != nil {
		state["velocity"] = append([]float64(nil), s.velocity...)
	}
	return state
}

// LoadStateDict restores the velocity buffer.
func (s *SGD) LoadStateDict(state map[string][]float64) error {
	if s.momentum == 0 {
		return nil
	}
	velocity, ok := state["velocity"]
	if !ok {
		// Fresh velocity will be initialized on the next step.
		s.velocity = nil
		return nil
	}
	s.velocity = append([]float64(nil), velocity...)
	return nil
}
