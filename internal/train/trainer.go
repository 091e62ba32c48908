// Package train implements the training orchestrator: the top-level
// controller that drives batches through the assembled circuit, the cost
// module, and the optimizer loop, tracking metrics, checkpoints, and the
// run's terminal state.
//
// A Trainer owns its parameter vector for the duration of one run; nothing
// else mutates it while a step is outstanding. Concurrent hyperparameter
// searches each build their own Trainer over an independent Architecture.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/config"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/dataset"
	"github.com/ansatz-ml/ansatz/internal/optim"
	"github.com/ansatz-ml/ansatz/internal/snapshot"
)

// Status is the orchestrator state machine's position.
type Status string

// Run states. Initialized moves to Running on the first batch; the four
// terminal states are final. Converged, EarlyStopped, and Exhausted yield a
// usable model; Diverged surfaces failure (the best checkpoint, when one
// exists, is still reported).
const (
	StatusInitialized  Status = "initialized"
	StatusRunning      Status = "running"
	StatusConverged    Status = "converged"
	StatusEarlyStopped Status = "early_stopped"
	StatusDiverged     Status = "diverged"
	StatusExhausted    Status = "exhausted"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusConverged, StatusEarlyStopped, StatusDiverged, StatusExhausted:
		return true
	}
	return false
}

// State is the mutable bookkeeping of one training run. Only the Trainer
// mutates it; BestParams is always a copy, never an alias of the live
// parameter vector.
type State struct {
	Epoch      int
	Step       int
	BestLoss   float64
	BestParams []float64
	Patience   int // Consecutive epochs without improvement
}

// EpochMetrics records one epoch for the training history.
type EpochMetrics struct {
	Epoch    int
	Loss     float64 // Mean training loss over the epoch
	ValLoss  float64 // NaN when no validation loader was supplied
	GradNorm float64 // Mean gradient L2 norm over the epoch's steps
	LR       float64
}

// Config tunes the orchestrator.
type Config struct {
	MaxEpochs   int
	MaxPatience int     // Negative disables early stopping
	Tolerance   float64 // Convergence threshold; 0 disables detection
	Window      int     // Epochs the convergence check looks back over

	SnapshotFreq int    // Save a checkpoint every N epochs; 0 disables
	SnapshotDir  string // Required for checkpointing

	RunID     string
	RunConfig config.Config // Hyperparameters recorded in snapshots
}

// Result is what a finished (or cancelled) run reports.
type Result struct {
	Status  Status
	State   State
	Params  []float64 // Best parameters observed, or the initial vector
	History []EpochMetrics
}

// Trainer drives one training run over a fixed architecture.
type Trainer struct {
	arch   *circuit.Architecture
	device circuit.Device
	cost   *cost.Cost
	opt    optim.Optimizer

	cfg    Config
	params []float64
	state  State
	status Status

	history []EpochMetrics
	window  []float64
	retried bool // One automatic divergence recovery per run
}

// New builds a trainer. params becomes the live parameter vector the trainer
// owns; callers must not mutate it while the run is in flight.
func New(arch *circuit.Architecture, device circuit.Device, c *cost.Cost, opt optim.Optimizer, params []float64, cfg Config) (*Trainer, error) {
	if got, want := len(params), arch.ParamCount(); got != want {
		return nil, &circuit.ArchitectureError{
			Reason: fmt.Sprintf("parameter vector has %d entries, architecture expects %d", got, want),
		}
	}
	if cfg.MaxEpochs < 1 {
		return nil, &circuit.ConfigurationError{
			Field:  "max_epochs",
			Reason: fmt.Sprintf("must be positive, got %d", cfg.MaxEpochs),
		}
	}
	if cfg.Window < 2 {
		cfg.Window = 5
	}
	return &Trainer{
		arch:   arch,
		device: device,
		cost:   c,
		opt:    opt,
		cfg:    cfg,
		params: params,
		state:  State{BestLoss: math.Inf(1)},
		status: StatusInitialized,
	}, nil
}

// Status returns the current state-machine position.
func (t *Trainer) Status() Status {
	return t.status
}

// Fit runs the training loop until a terminal state is reached or ctx is
// cancelled. Cancellation is cooperative, checked at batch boundaries only,
// and returns the last valid state together with ctx's error.
//
// When val is non-nil, improvement and early stopping monitor the
// validation loss; otherwise the training loss. On divergence the trainer
// rolls back to the best checkpoint and halves the learning rate once
// before surfacing StatusDiverged with the causing error.
func (t *Trainer) Fit(ctx context.Context, train, val dataset.Loader) (*Result, error) {
	if t.status != StatusInitialized {
		return nil, fmt.Errorf("train: trainer already ran to %s; assemble a new run", t.status)
	}
	if train == nil {
		return nil, fmt.Errorf("train: no training loader")
	}
	t.status = StatusRunning

	for epoch := 0; epoch < t.cfg.MaxEpochs; epoch++ {
		t.state.Epoch = epoch

		epochLoss, gradNorm, err := t.runEpoch(ctx, train)
		if err != nil {
			var divErr *optim.DivergenceError
			if errors.As(err, &divErr) {
				t.status = StatusDiverged
				return t.result(), err
			}
			return t.result(), err
		}

		monitor := epochLoss
		valLoss := math.NaN()
		if val != nil {
			valLoss, err = t.evaluate(val)
			if err != nil {
				return t.result(), err
			}
			monitor = valLoss
		}

		t.history = append(t.history, EpochMetrics{
			Epoch:    epoch,
			Loss:     epochLoss,
			ValLoss:  valLoss,
			GradNorm: gradNorm,
			LR:       t.opt.LR(),
		})

		if monitor < t.state.BestLoss {
			t.state.BestLoss = monitor
			t.state.BestParams = append([]float64(nil), t.params...)
			t.state.Patience = 0
		} else {
			t.state.Patience++
		}

		if t.cfg.SnapshotFreq > 0 && t.cfg.SnapshotDir != "" && (epoch+1)%t.cfg.SnapshotFreq == 0 {
			path := filepath.Join(t.cfg.SnapshotDir, fmt.Sprintf("checkpoint_epoch_%04d.ansz", epoch))
			if err := snapshot.Save(t.Snapshot(), path); err != nil {
				return t.result(), err
			}
		}

		if t.converged(monitor) {
			t.status = StatusConverged
			return t.result(), nil
		}
		if t.cfg.MaxPatience >= 0 && t.state.Patience > 0 && t.state.Patience >= t.cfg.MaxPatience {
			t.status = StatusEarlyStopped
			return t.result(), nil
		}
	}

	t.status = StatusExhausted
	return t.result(), nil
}

// runEpoch drives one pass over the training loader, returning the mean
// loss and mean gradient norm.
func (t *Trainer) runEpoch(ctx context.Context, loader dataset.Loader) (float64, float64, error) {
	loader.Reset()

	totalLoss, totalNorm := 0.0, 0.0
	examples, steps := 0, 0
	for {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		default:
		}

		batch, ok := loader.Next()
		if !ok {
			break
		}

		loss, norm, err := t.step(batch)
		if err != nil {
			return 0, 0, err
		}
		totalLoss += loss * float64(batch.Len())
		totalNorm += norm
		examples += batch.Len()
		steps++
	}
	if examples == 0 {
		return 0, 0, fmt.Errorf("train: epoch %d: loader produced no batches", t.state.Epoch)
	}
	return totalLoss / float64(examples), totalNorm / float64(steps), nil
}

// step runs one batch: evaluate, differentiate, update. A divergence —
// whether a non-finite loss or a rejected optimizer update — triggers the
// one-shot rollback before being surfaced.
func (t *Trainer) step(batch dataset.Batch) (float64, float64, error) {
	outputs, err := t.device.Execute(t.arch, t.params, batch.Features)
	if err != nil {
		return 0, 0, fmt.Errorf("train: epoch %d step %d: %w", t.state.Epoch, t.state.Step, err)
	}

	loss, upstream, err := t.cost.Evaluate(outputs, batch.Targets)
	if err != nil {
		return 0, 0, fmt.Errorf("train: epoch %d step %d: %w", t.state.Epoch, t.state.Step, err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		if err := t.recover(&optim.DivergenceError{Value: loss, In: "loss"}); err != nil {
			return 0, 0, err
		}
		return t.state.BestLoss, 0, nil
	}

	grad, err := t.device.Gradient(t.arch, t.params, batch.Features, upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("train: epoch %d step %d: %w", t.state.Epoch, t.state.Step, err)
	}

	norm := 0.0
	for _, g := range grad {
		norm += g * g
	}
	norm = math.Sqrt(norm)

	if err := t.opt.Step(t.params, grad); err != nil {
		var divErr *optim.DivergenceError
		if !errors.As(err, &divErr) {
			return 0, 0, fmt.Errorf("train: epoch %d step %d: %w", t.state.Epoch, t.state.Step, err)
		}
		if err := t.recover(divErr); err != nil {
			return 0, 0, err
		}
		return loss, norm, nil
	}

	t.state.Step++
	return loss, norm, nil
}

// recover performs the single automatic divergence recovery: roll the live
// parameters back to the best checkpoint and halve the learning rate. A
// second divergence, or one before any checkpoint exists, is surfaced.
func (t *Trainer) recover(cause *optim.DivergenceError) error {
	if t.retried || t.state.BestParams == nil {
		return fmt.Errorf("train: epoch %d step %d: %w", t.state.Epoch, t.state.Step, cause)
	}
	t.retried = true
	copy(t.params, t.state.BestParams)
	t.opt.SetLR(t.opt.LR() / 2)
	return nil
}

// evaluate computes the loss over a loader without touching parameters.
func (t *Trainer) evaluate(loader dataset.Loader) (float64, error) {
	loader.Reset()
	total, examples := 0.0, 0
	for {
		batch, ok := loader.Next()
		if !ok {
			break
		}
		outputs, err := t.device.Execute(t.arch, t.params, batch.Features)
		if err != nil {
			return 0, fmt.Errorf("train: validation: %w", err)
		}
		loss, _, err := t.cost.Evaluate(outputs, batch.Targets)
		if err != nil {
			return 0, fmt.Errorf("train: validation: %w", err)
		}
		total += loss * float64(batch.Len())
		examples += batch.Len()
	}
	if examples == 0 {
		return 0, fmt.Errorf("train: validation loader produced no batches")
	}
	return total / float64(examples), nil
}

// converged reports whether the monitored loss has flattened: every loss in
// the lookback window within Tolerance of each other. Tolerance 0 disables
// the check.
func (t *Trainer) converged(monitor float64) bool {
	if t.cfg.Tolerance <= 0 {
		return false
	}
	t.window = append(t.window, monitor)
	if len(t.window) > t.cfg.Window {
		t.window = t.window[len(t.window)-t.cfg.Window:]
	}
	if len(t.window) < t.cfg.Window {
		return false
	}
	lo, hi := t.window[0], t.window[0]
	for _, v := range t.window[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi-lo <= t.cfg.Tolerance
}

// result snapshots the run outcome. Params prefers the best checkpoint.
func (t *Trainer) result() *Result {
	params := t.state.BestParams
	if params == nil {
		params = t.params
	}
	return &Result{
		Status:  t.status,
		State:   t.state,
		Params:  append([]float64(nil), params...),
		History: append([]EpochMetrics(nil), t.history...),
	}
}

// Snapshot builds the immutable model record for the current best state.
func (t *Trainer) Snapshot() *snapshot.Snapshot {
	params := t.state.BestParams
	if params == nil {
		params = t.params
	}
	return &snapshot.Snapshot{
		Manifest: t.arch.Manifest(),
		Init:     t.arch.Init(),
		Params:   append([]float64(nil), params...),
		Config:   t.cfg.RunConfig,
		Meta: snapshot.Meta{
			RunID:    t.cfg.RunID,
			Epoch:    t.state.Epoch,
			Step:     t.state.Step,
			BestLoss: t.state.BestLoss,
		},
	}
}
