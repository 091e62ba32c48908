package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n int) ([][]float64, [][]float64) {
	features := make([][]float64, n)
	targets := make([][]float64, n)
	for i := range features {
		features[i] = []float64{float64(i), float64(i) * 10}
		targets[i] = []float64{float64(i)}
	}
	return features, targets
}

func TestInMemory_Batching(t *testing.T) {
	features, targets := rows(10)
	loader, err := NewInMemory(features, targets, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, loader.NumExamples())

	var sizes []int
	seen := 0
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}
		sizes = append(sizes, batch.Len())
		for i := range batch.Features {
			assert.Equal(t, targets[seen+i][0], batch.Targets[i][0])
		}
		seen += batch.Len()
	}
	assert.Equal(t, []int{4, 4, 2}, sizes, "final batch is short, never dropped")
	assert.Equal(t, 10, seen)

	_, ok := loader.Next()
	assert.False(t, ok, "exhausted loader stays exhausted until Reset")

	loader.Reset()
	batch, ok := loader.Next()
	require.True(t, ok)
	assert.Equal(t, 4, batch.Len())
}

func TestInMemory_ShufflePreservesPairing(t *testing.T) {
	features, targets := rows(16)
	loader, err := NewInMemory(features, targets, 5, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	for epoch := 0; epoch < 3; epoch++ {
		seenTargets := map[float64]bool{}
		for {
			batch, ok := loader.Next()
			if !ok {
				break
			}
			for i := range batch.Features {
				// The target row must still belong to its feature row.
				assert.Equal(t, batch.Features[i][0], batch.Targets[i][0])
				seenTargets[batch.Targets[i][0]] = true
			}
		}
		assert.Len(t, seenTargets, 16, "every example appears exactly once per epoch")
		loader.Reset()
	}
}

func TestInMemory_Invalid(t *testing.T) {
	features, targets := rows(4)

	_, err := NewInMemory(nil, nil, 2, nil)
	assert.Error(t, err)

	_, err = NewInMemory(features, targets[:2], 2, nil)
	assert.Error(t, err)

	_, err = NewInMemory(features, targets, 0, nil)
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	features, targets := rows(10)

	trainF, trainT, valF, valT, err := Split(features, targets, 0.2, nil)
	require.NoError(t, err)
	assert.Len(t, trainF, 8)
	assert.Len(t, trainT, 8)
	assert.Len(t, valF, 2)
	assert.Len(t, valT, 2)

	// In-order split keeps the last rows for validation.
	assert.Equal(t, 8.0, valF[0][0])
	assert.Equal(t, 9.0, valF[1][0])
}

func TestSplit_Shuffled(t *testing.T) {
	features, targets := rows(20)

	trainF, trainT, valF, valT, err := Split(features, targets, 0.25, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Len(t, trainF, 15)
	assert.Len(t, valF, 5)

	for i := range trainF {
		assert.Equal(t, trainF[i][0], trainT[i][0])
	}
	for i := range valF {
		assert.Equal(t, valF[i][0], valT[i][0])
	}
}

func TestSplit_Invalid(t *testing.T) {
	features, targets := rows(4)

	_, _, _, _, err := Split(features, targets, 1.0, nil)
	assert.Error(t, err)

	_, _, _, _, err = Split(features, targets[:3], 0.2, nil)
	assert.Error(t, err)
}
