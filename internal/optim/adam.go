package optim

import (
	"fmt"
	"math"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Adam copes well with the noisy, unevenly scaled gradients that
// parameter-shift estimation produces across circuit layers.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int // Timestep for bias correction
	m     []float64
	v     []float64
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Running average coefficients (default: [0.9, 0.999])
	Eps   float64    // Numerical stability term (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, filling unset fields with defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
	}
}

// Step applies one Adam update to params in place.
//
// Moments, bias corrections, and the candidate parameters are computed into
// scratch buffers; nothing — not the timestep, not the moments — is
// committed unless every updated coordinate is finite.
func (a *Adam) Step(params, grad []float64) error {
	if err := checkGradient(params, grad); err != nil {
		return err
	}

	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	} else if len(a.m) != len(params) {
		return fmt.Errorf("optim: moments sized for %d parameters, got %d", len(a.m), len(params))
	}

	t := a.t + 1
	biasCorrection1 := 1 - math.Pow(a.beta1, float64(t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(t))

	nextM := make([]float64, len(params))
	nextV := make([]float64, len(params))
	nextParams := make([]float64, len(params))
	for i, g := range grad {
		nextM[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		nextV[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := nextM[i] / biasCorrection1
		vHat := nextV[i] / biasCorrection2

		nextParams[i] = params[i] - a.lr*mHat/(math.Sqrt(vHat)+a.eps)
		if math.IsNaN(nextParams[i]) || math.IsInf(nextParams[i], 0) {
			return &DivergenceError{Index: i, Value: nextParams[i], In: "update"}
		}
	}

	a.t = t
	copy(a.m, nextM)
	copy(a.v, nextV)
	copy(params, nextParams)
	return nil
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the number of committed steps.
func (a *Adam) Timestep() int {
	return a.t
}

// StateDict exports the moment buffers and timestep.
func (a *Adam) StateDict() map[string][]float64 {
	state := make(map[string][]float64)
	if a.m != nil {
		state["m"] = append([]float64(nil), a.m...)
		state["v"] = append([]float64(nil), a.v...)
		state["t"] = []float64{float64(a.t)}
	}
	return state
}

// LoadStateDict restores the moment buffers and timestep.
func (a *Adam) LoadStateDict(state map[string][]float64) error {
	m, okM := state["m"]
	v, okV := state["v"]
	if !okM || !okV {
		a.m, a.v, a.t = nil, nil, 0
		return nil
	}
	if len(m) != len(v) {
		return fmt.Errorf("optim: moment buffers have mismatched lengths %d and %d", len(m), len(v))
	}
	a.m = append([]float64(nil), m...)
	a.v = append([]float64(nil), v...)
	a.t = 0
	if ts, ok := state["t"]; ok && len(ts) == 1 {
		a.t = int(ts[0])
	}
	return nil
}
