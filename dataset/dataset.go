// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides the public API for batched training data.
//
// Example:
//
//	loader, err := dataset.NewInMemory(features, targets, 16, rng)
package dataset

import (
	"math/rand"

	"github.com/ansatz-ml/ansatz/internal/dataset"
)

// Batch pairs input features with their targets.
type Batch = dataset.Batch

// Loader yields the batches of one epoch.
type Loader = dataset.Loader

// InMemory is a Loader over rows held in memory.
type InMemory = dataset.InMemory

// NewInMemory builds a loader over the given rows.
func NewInMemory(features, targets [][]float64, batchSize int, rng *rand.Rand) (*InMemory, error) {
	return dataset.NewInMemory(features, targets, batchSize, rng)
}

// Split partitions rows into train and validation sets.
func Split(features, targets [][]float64, valFraction float64, rng *rand.Rand) (trainF, trainT, valF, valT [][]float64, err error) {
	return dataset.Split(features, targets, valFraction, rng)
}
