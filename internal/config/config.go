// Package config defines the declarative run configuration for Ansatz
// training and its validation.
//
// A Config is the single explicit home for everything that would otherwise
// be process-global state — the random seed, the default initialization
// policy, optimizer defaults — scoped to one training run and passed into
// the builders that need it. Validation fails fast with ConfigurationError
// before any circuit is assembled or step taken.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ansatz-ml/ansatz/internal/circuit"
	"github.com/ansatz-ml/ansatz/internal/cost"
	"github.com/ansatz-ml/ansatz/internal/optim"
)

// Config is the recognized configuration surface of one training run.
type Config struct {
	// Problem description.
	Task       cost.Task `yaml:"task_type" json:"task_type"`
	FeatureDim int       `yaml:"feature_dim" json:"feature_dim"`

	// Circuit topology.
	NumWires    int                `yaml:"num_wires" json:"num_wires"`
	Depth       int                `yaml:"depth" json:"depth"`
	Encoding    circuit.Scheme     `yaml:"encoding_scheme" json:"encoding_scheme"`
	Entangling  circuit.Entangling `yaml:"entangling_pattern" json:"entangling_pattern"`
	Axes        []circuit.Axis     `yaml:"rotation_axes,omitempty" json:"rotation_axes,omitempty"`
	Observables []int              `yaml:"observables,omitempty" json:"observables,omitempty"`

	// Parameter initialization.
	InitPolicy circuit.InitKind `yaml:"init_policy,omitempty" json:"init_policy,omitempty"`
	InitRange  float64          `yaml:"init_range,omitempty" json:"init_range,omitempty"`
	Seed       int64            `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Optimization.
	Optimizer    optim.Algorithm `yaml:"optimizer" json:"optimizer"`
	LearningRate float64         `yaml:"learning_rate" json:"learning_rate"`
	Momentum     float64         `yaml:"momentum,omitempty" json:"momentum,omitempty"`

	// Training loop.
	MaxEpochs    int     `yaml:"max_epochs" json:"max_epochs"`
	MaxPatience  int     `yaml:"max_patience" json:"max_patience"`
	BatchSize    int     `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	Tolerance    float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	Window       int     `yaml:"window,omitempty" json:"window,omitempty"`
	SnapshotFreq int     `yaml:"snapshot_frequency,omitempty" json:"snapshot_frequency,omitempty"`
	SnapshotDir  string  `yaml:"snapshot_dir,omitempty" json:"snapshot_dir,omitempty"`
}

// Default returns a configuration with sane defaults for everything the
// caller leaves unset. FeatureDim, NumWires, and Depth have no defaults —
// they describe the problem and must be supplied.
func Default() Config {
	return Config{
		Task:         cost.TaskRegression,
		Encoding:     circuit.SchemeAngle,
		Entangling:   circuit.EntangleLinear,
		InitPolicy:   circuit.InitUniform,
		InitRange:    circuit.DefaultInitRange,
		Seed:         1,
		Optimizer:    optim.AlgoAdam,
		LearningRate: 0.01,
		MaxEpochs:    100,
		MaxPatience:  10,
		BatchSize:    16,
		Window:       5,
	}
}

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // Config path comes from the caller.
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued optional fields after unmarshaling.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Task == "" {
		c.Task = def.Task
	}
	if c.Encoding == "" {
		c.Encoding = def.Encoding
	}
	if c.Entangling == "" {
		c.Entangling = def.Entangling
	}
	if c.InitPolicy == "" {
		c.InitPolicy = def.InitPolicy
	}
	if c.InitRange == 0 && c.InitPolicy == circuit.InitUniform {
		c.InitRange = def.InitRange
	}
	if c.Optimizer == "" {
		c.Optimizer = def.Optimizer
	}
	if c.LearningRate == 0 {
		c.LearningRate = def.LearningRate
	}
	if c.MaxEpochs == 0 {
		c.MaxEpochs = def.MaxEpochs
	}
	if c.BatchSize == 0 {
		c.BatchSize = def.BatchSize
	}
	if c.Window == 0 {
		c.Window = def.Window
	}
}

// Validate checks every recognized option, returning the first violation as
// a ConfigurationError naming the offending field.
func (c *Config) Validate() error {
	if _, err := cost.ParseTask(string(c.Task)); err != nil {
		return err
	}
	if c.FeatureDim < 1 {
		return &circuit.ConfigurationError{
			Field:  "feature_dim",
			Reason: fmt.Sprintf("must be positive, got %d", c.FeatureDim),
		}
	}
	if c.NumWires < 2 {
		return &circuit.ConfigurationError{
			Field:  "num_wires",
			Reason: fmt.Sprintf("must be at least 2, got %d", c.NumWires),
		}
	}
	if c.Depth < 1 {
		return &circuit.ConfigurationError{
			Field:  "depth",
			Reason: fmt.Sprintf("must be at least 1, got %d", c.Depth),
		}
	}
	switch c.Encoding {
	case circuit.SchemeAngle, circuit.SchemeAmplitude, circuit.SchemeBasis:
	default:
		return &circuit.ConfigurationError{
			Field:  "encoding_scheme",
			Reason: fmt.Sprintf("unrecognized scheme %q", c.Encoding),
		}
	}
	switch c.Entangling {
	case circuit.EntangleLinear, circuit.EntangleRing, circuit.EntangleAllToAll:
	default:
		return &circuit.ConfigurationError{
			Field:  "entangling_pattern",
			Reason: fmt.Sprintf("unrecognized pattern %q", c.Entangling),
		}
	}
	switch c.Optimizer {
	case optim.AlgoSGD, optim.AlgoMomentum, optim.AlgoAdam:
	default:
		return &circuit.ConfigurationError{
			Field:  "optimizer",
			Reason: fmt.Sprintf("unrecognized algorithm %q", c.Optimizer),
		}
	}
	if c.LearningRate <= 0 {
		return &circuit.ConfigurationError{
			Field:  "learning_rate",
			Reason: fmt.Sprintf("must be positive, got %v", c.LearningRate),
		}
	}
	if c.MaxEpochs < 1 {
		return &circuit.ConfigurationError{
			Field:  "max_epochs",
			Reason: fmt.Sprintf("must be positive, got %d", c.MaxEpochs),
		}
	}
	if c.MaxPatience < 0 {
		return &circuit.ConfigurationError{
			Field:  "max_patience",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.MaxPatience),
		}
	}
	if c.BatchSize < 1 {
		return &circuit.ConfigurationError{
			Field:  "batch_size",
			Reason: fmt.Sprintf("must be positive, got %d", c.BatchSize),
		}
	}
	if c.Tolerance < 0 {
		return &circuit.ConfigurationError{
			Field:  "tolerance",
			Reason: fmt.Sprintf("must be non-negative, got %v", c.Tolerance),
		}
	}
	if c.SnapshotFreq < 0 {
		return &circuit.ConfigurationError{
			Field:  "snapshot_frequency",
			Reason: fmt.Sprintf("must be non-negative, got %d", c.SnapshotFreq),
		}
	}
	return nil
}
