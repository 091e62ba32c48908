package circuit

import "fmt"

// ConfigurationError reports invalid or inconsistent hyperparameters detected
// before any training step. It is never retried: it indicates a caller
// mistake and aborts construction immediately.
type ConfigurationError struct {
	Field  string // Offending option name (e.g. "feature_dim", "depth")
	Reason string // Human-readable explanation
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ArchitectureError reports a layer composition inconsistency found while
// assembling a circuit, such as a wire-count mismatch between layers.
type ArchitectureError struct {
	Layer  string // Which layer the inconsistency was found in
	Reason string
}

// Error implements the error interface.
func (e *ArchitectureError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("invalid architecture: %s", e.Reason)
	}
	return fmt.Sprintf("invalid architecture: %s layer: %s", e.Layer, e.Reason)
}
