package train

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/config"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/optim"
)

// FromConfig assembles a complete trainer from the declarative run
// configuration: encoding layer, variational stack, measurement, parameter
// initialization, cost, and optimizer. All randomness is drawn from one RNG
// seeded by the config, so runs are reproducible.
func FromConfig(cfg config.Config, device circuit.Device) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	enc, err := circuit.BuildEncoding(cfg.FeatureDim, cfg.Encoding, cfg.NumWires)
	if err != nil {
		return nil, err
	}
	vars, err := circuit.BuildVariational(cfg.NumWires, cfg.Depth, cfg.Entangling, cfg.Axes)
	if err != nil {
		return nil, err
	}
	meas, err := circuit.BuildMeasurement(cfg.NumWires, cfg.Observables)
	if err != nil {
		return nil, err
	}
	arch, err := circuit.Assemble(enc, vars, meas, circuit.InitPolicy{
		Kind:  cfg.InitPolicy,
		Range: cfg.InitRange,
	})
	if err != nil {
		return nil, err
	}

	c, err := cost.New(cfg.Task)
	if err != nil {
		return nil, err
	}
	opt, err := optim.New(optim.Config{
		Algorithm: cfg.Optimizer,
		LR:        cfg.LearningRate,
		Momentum:  cfg.Momentum,
	})
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // Seeded weight initialization.
	params := arch.InitParams(rng)

	return New(arch, device, c, opt, params, Config{
		MaxEpochs:    cfg.MaxEpochs,
		MaxPatience:  cfg.MaxPatience,
		Tolerance:    cfg.Tolerance,
		Window:       cfg.Window,
		SnapshotFreq: cfg.SnapshotFreq,
		SnapshotDir:  cfg.SnapshotDir,
		RunID:        uuid.NewString(),
		RunConfig:    cfg,
	})
}
