// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for the classical optimizers that
// train Ansatz circuit parameters.
//
// Example:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.01})
//	if err := opt.Step(params, grad); err != nil {
//	    var div *optim.DivergenceError
//	    if errors.As(err, &div) {
//	        // roll back / reduce learning rate
//	    }
//	}
package optim

import (
	"github.com/ansatz-ml/ansatz/internal/optim"
)

// Optimizer is the common interface of all update rules.
type Optimizer = optim.Optimizer

// Algorithm names an update rule.
type Algorithm = optim.Algorithm

// Supported update rules.
const (
	AlgoSGD      = optim.AlgoSGD
	AlgoMomentum = optim.AlgoMomentum
	AlgoAdam     = optim.AlgoAdam
)

// Config selects and parameterizes an update rule.
type Config = optim.Config

// DivergenceError reports a non-finite value encountered during a step.
type DivergenceError = optim.DivergenceError

// SGD implements gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// Adam implements adaptive moment estimation.
type Adam = optim.Adam

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// New builds the optimizer named by the config.
func New(cfg Config) (Optimizer, error) {
	return optim.New(cfg)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}
