package train

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansatz-ml/ansatz/internal/backend/statevector"
	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/config"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/dataset"
	"github.com/ansatz-ml/ansatz/internal/optim"
	"github.com/ansatz-ml/ansatz/internal/snapshot"
)

// stubDevice is a scriptable substrate for exercising the orchestrator's
// state machine without simulating circuits.
type stubDevice struct {
	output   float64            // constant expectation per input row
	gradient func(call int) float64
	calls    int
}

func (d *stubDevice) Execute(arch *circuit.Architecture, params []float64, inputs [][]float64) ([][]float64, error) {
	outputs := make([][]float64, len(inputs))
	for i := range outputs {
		outputs[i] = []float64{d.output}
	}
	return outputs, nil
}

func (d *stubDevice) Gradient(arch *circuit.Architecture, params []float64, inputs, upstream [][]float64) ([]float64, error) {
	d.calls++
	g := 0.0
	if d.gradient != nil {
		g = d.gradient(d.calls)
	}
	grad := make([]float64, arch.ParamCount())
	for i := range grad {
		grad[i] = g
	}
	return grad, nil
}

func smallArch(t *testing.T) *circuit.Architecture {
	t.Helper()
	enc, err := circuit.BuildEncoding(1, circuit.SchemeAngle, 2)
	require.NoError(t, err)
	vars, err := circuit.BuildVariational(2, 1, circuit.EntangleLinear, []circuit.Axis{circuit.AxisY})
	require.NoError(t, err)
	meas, err := circuit.BuildMeasurement(2, nil)
	require.NoError(t, err)
	arch, err := circuit.Assemble(enc, vars, meas, circuit.InitPolicy{})
	require.NoError(t, err)
	return arch
}

func constantLoader(t *testing.T, n int) dataset.Loader {
	t.Helper()
	features := make([][]float64, n)
	targets := make([][]float64, n)
	for i := range features {
		features[i] = []float64{float64(i)}
		targets[i] = []float64{1.0}
	}
	loader, err := dataset.NewInMemory(features, targets, n, nil)
	require.NoError(t, err)
	return loader
}

func newTrainer(t *testing.T, device circuit.Device, cfg Config) *Trainer {
	t.Helper()
	arch := smallArch(t)
	c, err := cost.New(cost.TaskRegression)
	require.NoError(t, err)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	params := make([]float64, arch.ParamCount())
	trainer, err := New(arch, device, c, opt, params, cfg)
	require.NoError(t, err)
	return trainer
}

func TestFit_EarlyStopsAfterPatienceEpochs(t *testing.T) {
	// A zero gradient freezes the loss; the first epoch registers the only
	// improvement, every later epoch burns patience.
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 100, MaxPatience: 3})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 8), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusEarlyStopped, result.Status)
	assert.Equal(t, 3, result.State.Epoch, "patience P stops the run at epoch P")
	assert.Equal(t, 3, result.State.Patience)
	assert.Len(t, result.History, 4)
	assert.Equal(t, 1.0, result.State.BestLoss)
}

func TestFit_PatienceZeroStillAllowsImprovement(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 5, MaxPatience: 0})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	// Epoch 0 improves on +Inf, epoch 1 does not and patience 0 stops there.
	assert.Equal(t, StatusEarlyStopped, result.Status)
	assert.Equal(t, 1, result.State.Epoch)
}

func TestFit_NegativePatienceDisablesEarlyStopping(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 7, MaxPatience: -1})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Len(t, result.History, 7)
}

func TestFit_ConvergesOnFlatWindow(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{
		MaxEpochs:   50,
		MaxPatience: -1,
		Tolerance:   1e-9,
		Window:      3,
	})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, result.Status)
	assert.Equal(t, 2, result.State.Epoch, "window of 3 flat epochs fills at epoch 2")
}

func TestFit_DivergenceRecoversOnceThenFails(t *testing.T) {
	// One clean epoch establishes a best checkpoint, then every gradient is
	// NaN. The first divergence rolls back and halves the learning rate; the
	// second is terminal.
	device := &stubDevice{
		output: 0,
		gradient: func(call int) float64 {
			if call == 1 {
				return 0.01
			}
			return math.NaN()
		},
	}
	trainer := newTrainer(t, device, Config{MaxEpochs: 100, MaxPatience: -1})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.Error(t, err)
	var divErr *optim.DivergenceError
	assert.True(t, errors.As(err, &divErr), "want DivergenceError, got %v", err)

	assert.Equal(t, StatusDiverged, result.Status)
	assert.Equal(t, StatusDiverged, trainer.Status())
	assert.NotNil(t, result.Params, "the best checkpoint survives divergence")
	assert.Equal(t, result.State.BestParams, result.Params)
}

func TestFit_DivergenceHalvesLearningRate(t *testing.T) {
	device := &stubDevice{
		output: 0,
		gradient: func(call int) float64 {
			if call == 2 {
				return math.NaN()
			}
			return 0.01
		},
	}
	arch := smallArch(t)
	c, err := cost.New(cost.TaskRegression)
	require.NoError(t, err)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	trainer, err := New(arch, device, c, opt, make([]float64, arch.ParamCount()), Config{MaxEpochs: 3, MaxPatience: -1})
	require.NoError(t, err)

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err, "a single divergence is absorbed by the rollback")
	assert.Equal(t, StatusExhausted, result.Status)
	assert.InDelta(t, 0.05, opt.LR(), 1e-12, "learning rate halves on recovery")
}

func TestFit_DivergenceWithoutCheckpointIsTerminal(t *testing.T) {
	device := &stubDevice{
		output:   0,
		gradient: func(int) float64 { return math.Inf(1) },
	}
	trainer := newTrainer(t, device, Config{MaxEpochs: 10, MaxPatience: -1})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.Error(t, err)
	assert.Equal(t, StatusDiverged, result.Status)
	assert.Empty(t, result.History, "the first epoch never completes")
}

func TestFit_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 100, MaxPatience: -1})
	result, err := trainer.Fit(ctx, constantLoader(t, 4), nil)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result, "cancellation still reports the last valid state")
	assert.False(t, result.Status.Terminal())
}

func TestFit_SingleUse(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 2, MaxPatience: -1})

	_, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	_, err = trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already ran")
}

func TestFit_ValidationLossMonitored(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 4, MaxPatience: -1})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 8), constantLoader(t, 4))
	require.NoError(t, err)

	for _, m := range result.History {
		assert.False(t, math.IsNaN(m.ValLoss), "validation loss recorded when a loader is supplied")
		assert.Equal(t, 1.0, m.ValLoss)
	}
	assert.Equal(t, 1.0, result.State.BestLoss, "improvement tracks the validation loss")
}

func TestFit_ResultParamsAreACopy(t *testing.T) {
	trainer := newTrainer(t, &stubDevice{output: 0}, Config{MaxEpochs: 2, MaxPatience: -1})

	result, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	snapBefore := trainer.Snapshot().Params
	result.Params[0] = 99
	assert.Equal(t, snapBefore, trainer.Snapshot().Params, "mutating the result must not reach the trainer")
}

func TestFit_PeriodicCheckpoints(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.FeatureDim = 1
	cfg.NumWires = 2
	cfg.Depth = 1

	trainer := newTrainer(t, &stubDevice{output: 0}, Config{
		MaxEpochs:    6,
		MaxPatience:  -1,
		SnapshotFreq: 2,
		SnapshotDir:  dir,
		RunID:        "run-checkpoints",
		RunConfig:    cfg,
	})

	_, err := trainer.Fit(context.Background(), constantLoader(t, 4), nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3, "every second epoch checkpoints")

	snap, err := snapshot.Load(filepath.Join(dir, "checkpoint_epoch_0001.ansz"))
	require.NoError(t, err)
	assert.Equal(t, "run-checkpoints", snap.Meta.RunID)
	assert.Equal(t, 1, snap.Meta.Epoch)
	assert.Equal(t, 1.0, snap.Meta.BestLoss)
}

func TestNew_Validation(t *testing.T) {
	arch := smallArch(t)
	c, err := cost.New(cost.TaskRegression)
	require.NoError(t, err)
	opt := optim.NewSGD(optim.SGDConfig{})

	_, err = New(arch, &stubDevice{}, c, opt, make([]float64, 1), Config{MaxEpochs: 10})
	var archErr *circuit.ArchitectureError
	require.ErrorAs(t, err, &archErr)

	_, err = New(arch, &stubDevice{}, c, opt, make([]float64, arch.ParamCount()), Config{MaxEpochs: 0})
	var cfgErr *circuit.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FeatureDim = 2
	cfg.NumWires = 2
	cfg.Depth = 1

	trainer, err := FromConfig(cfg, statevector.New())
	require.NoError(t, err)
	assert.Equal(t, StatusInitialized, trainer.Status())

	cfg.NumWires = 1
	_, err = FromConfig(cfg, statevector.New())
	require.Error(t, err)
}

func TestFit_EndToEndRegression(t *testing.T) {
	// A real statevector run: 4 features, 4 wires, depth 2, angle encoding,
	// linear entanglement, batch 8, learning rate 0.1, up to 50 epochs.
	enc, err := circuit.BuildEncoding(4, circuit.SchemeAngle, 4)
	require.NoError(t, err)
	vars, err := circuit.BuildVariational(4, 2, circuit.EntangleLinear, nil)
	require.NoError(t, err)
	meas, err := circuit.BuildMeasurement(4, nil)
	require.NoError(t, err)
	arch, err := circuit.Assemble(enc, vars, meas, circuit.InitPolicy{})
	require.NoError(t, err)

	c, err := cost.New(cost.TaskRegression)
	require.NoError(t, err)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	rng := rand.New(rand.NewSource(7))
	params := arch.InitParams(rng)

	dir := t.TempDir()
	cfg := config.Default()
	cfg.FeatureDim = 4
	cfg.NumWires = 4
	cfg.Depth = 2
	trainer, err := New(arch, statevector.New(), c, opt, params, Config{
		MaxEpochs:    50,
		MaxPatience:  -1,
		SnapshotFreq: 10,
		SnapshotDir:  dir,
		RunID:        "run-e2e",
		RunConfig:    cfg,
	})
	require.NoError(t, err)

	n := 32
	features := make([][]float64, n)
	targets := make([][]float64, n)
	for i := range features {
		row := make([]float64, 4)
		mean := 0.0
		for j := range row {
			row[j] = rng.Float64() * math.Pi
			mean += math.Cos(row[j])
		}
		features[i] = row
		targets[i] = []float64{0.5 * mean / 4}
	}
	loader, err := dataset.NewInMemory(features, targets, 8, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	result, err := trainer.Fit(context.Background(), loader, nil)
	require.NoError(t, err)

	require.Contains(t, []Status{StatusConverged, StatusExhausted}, result.Status)
	require.NotEmpty(t, result.History)
	assert.Less(t, result.State.BestLoss, result.History[0].Loss,
		"training must improve on the first epoch's loss")
	assert.Len(t, result.Params, arch.ParamCount())

	// Best loss recorded at each checkpoint never increases.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	prev := math.Inf(1)
	for _, entry := range entries {
		snap, err := snapshot.Load(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		assert.LessOrEqual(t, snap.Meta.BestLoss, prev, "checkpoint %s", entry.Name())
		prev = snap.Meta.BestLoss
	}
}
