// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the public API for orchestrating Ansatz training
// runs: the epoch/batch loop, early stopping, checkpointing, and the run
// state machine.
//
// Example:
//
//	cfg, _ := config.Load("run.yaml")
//	trainer, _ := train.FromConfig(cfg, statevector.New())
//	result, err := trainer.Fit(ctx, trainLoader, valLoader)
//	if result.Status == train.StatusConverged {
//	    snapshot.Save(trainer.Snapshot(), "model.ansz")
//	}
package train

import (
	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/config"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/optim"
	"github.com/ansatz-ml/ansatz/internal/snapshot"
	"github.com/ansatz-ml/ansatz/internal/train"
)

// Status is the orchestrator state machine's position.
type Status = train.Status

// Run states.
const (
	StatusInitialized  = train.StatusInitialized
	StatusRunning      = train.StatusRunning
	StatusConverged    = train.StatusConverged
	StatusEarlyStopped = train.StatusEarlyStopped
	StatusDiverged     = train.StatusDiverged
	StatusExhausted    = train.StatusExhausted
)

// State is the mutable bookkeeping of one training run.
type State = train.State

// EpochMetrics records one epoch for the training history.
type EpochMetrics = train.EpochMetrics

// Config tunes the orchestrator.
type Config = train.Config

// Result is what a finished (or cancelled) run reports.
type Result = train.Result

// Trainer drives one training run over a fixed architecture.
type Trainer = train.Trainer

// Model is a trained architecture ready for prediction.
type Model = train.Model

// New builds a trainer over an assembled architecture.
func New(arch *circuit.Architecture, device circuit.Device, c *cost.Cost, opt optim.Optimizer, params []float64, cfg Config) (*Trainer, error) {
	return train.New(arch, device, c, opt, params, cfg)
}

// FromConfig assembles a complete trainer from a run configuration.
func FromConfig(cfg config.Config, device circuit.Device) (*Trainer, error) {
	return train.FromConfig(cfg, device)
}

// FromSnapshot rebuilds a model from a saved snapshot.
func FromSnapshot(s *snapshot.Snapshot, device circuit.Device) (*Model, error) {
	return train.FromSnapshot(s, device)
}
