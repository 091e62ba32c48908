// Package dataset supplies batched training data to the orchestrator.
//
// A Loader is a finite, restartable sequence of Batch records that preserves
// feature/target pairing order. The in-memory implementation covers the
// datasets this framework trains on; anything that can page data lazily can
// replace it behind the same interface.
package dataset

import (
	"fmt"
	"math/rand"
)

// Batch pairs input features with their targets. Both slices have equal
// length and fixed row order; a batch is immutable once handed to the
// orchestrator for a step.
type Batch struct {
	Features [][]float64
	Targets  [][]float64
}

// Len returns the number of examples in the batch.
func (b Batch) Len() int {
	return len(b.Features)
}

// Loader yields the batches of one epoch. Next returns false once the
// sequence is exhausted; Reset restarts it for the next epoch.
type Loader interface {
	Next() (Batch, bool)
	Reset()
}

// InMemory is a Loader over feature/target slices held in memory, with
// optional reshuffling on every Reset.
type InMemory struct {
	features  [][]float64
	targets   [][]float64
	batchSize int
	rng       *rand.Rand // nil disables shuffling
	order     []int
	cursor    int
}

// NewInMemory builds a loader over the given rows. A nil rng keeps the
// original order; otherwise the row order is reshuffled on every Reset,
// keeping each feature row paired with its target.
func NewInMemory(features, targets [][]float64, batchSize int, rng *rand.Rand) (*InMemory, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("dataset: no examples")
	}
	if len(features) != len(targets) {
		return nil, fmt.Errorf("dataset: %d feature rows paired with %d target rows", len(features), len(targets))
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}

	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	l := &InMemory{
		features:  features,
		targets:   targets,
		batchSize: batchSize,
		rng:       rng,
		order:     order,
	}
	l.Reset()
	return l, nil
}

// Next returns the next batch of the epoch. The final batch may be short.
func (l *InMemory) Next() (Batch, bool) {
	if l.cursor >= len(l.order) {
		return Batch{}, false
	}
	end := l.cursor + l.batchSize
	if end > len(l.order) {
		end = len(l.order)
	}

	batch := Batch{
		Features: make([][]float64, 0, end-l.cursor),
		Targets:  make([][]float64, 0, end-l.cursor),
	}
	for _, idx := range l.order[l.cursor:end] {
		batch.Features = append(batch.Features, l.features[idx])
		batch.Targets = append(batch.Targets, l.targets[idx])
	}
	l.cursor = end
	return batch, true
}

// Reset restarts the sequence, reshuffling when an RNG was supplied.
func (l *InMemory) Reset() {
	l.cursor = 0
	if l.rng != nil {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
}

// NumExamples returns the dataset size.
func (l *InMemory) NumExamples() int {
	return len(l.features)
}

// Split partitions rows into train and validation sets, validation taking
// the given fraction. A nil rng splits in order; otherwise rows are drawn
// randomly while keeping pairing intact.
func Split(features, targets [][]float64, valFraction float64, rng *rand.Rand) (trainF, trainT, valF, valT [][]float64, err error) {
	if len(features) != len(targets) {
		return nil, nil, nil, nil, fmt.Errorf("dataset: %d feature rows paired with %d target rows", len(features), len(targets))
	}
	if valFraction < 0 || valFraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("dataset: validation fraction %v outside [0, 1)", valFraction)
	}

	order := make([]int, len(features))
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	numVal := int(float64(len(order)) * valFraction)
	for i, idx := range order {
		if i < len(order)-numVal {
			trainF = append(trainF, features[idx])
			trainT = append(trainT, targets[idx])
		} else {
			valF = append(valF, features[idx])
			valT = append(valT, targets[idx])
		}
	}
	return trainF, trainT, valF, valT, nil
}
