// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package circuit provides the public API for building parametrized quantum
// circuit architectures in the Ansatz ML framework.
//
// The package exposes the layered circuit data model:
//   - EncodingLayer: Non-trainable data embedding (angle, amplitude, basis)
//   - VariationalLayer: Trainable rotation + entangling block
//   - MeasurementSpec: PauliZ expectation readout
//   - Architecture: Immutable layer composition with a parameter manifest
//   - Device: Contract for pluggable execution substrates
//
// Example:
//
//	enc, _ := circuit.BuildEncoding(4, circuit.SchemeAngle, 4)
//	vars, _ := circuit.BuildVariational(4, 2, circuit.EntangleLinear, nil)
//	meas, _ := circuit.BuildMeasurement(4, nil)
//	arch, _ := circuit.Assemble(enc, vars, meas, circuit.InitPolicy{})
package circuit

import (
	"github.com/ansatz-ml/ansatz/internal/circuit"
)

// Core enums.

// Scheme selects how classical features are embedded into the circuit.
type Scheme = circuit.Scheme

// Supported encoding schemes.
const (
	SchemeAngle     = circuit.SchemeAngle
	SchemeAmplitude = circuit.SchemeAmplitude
	SchemeBasis     = circuit.SchemeBasis
)

// Entangling selects the two-qubit topology of a variational block.
type Entangling = circuit.Entangling

// Supported entangling patterns.
const (
	EntangleLinear   = circuit.EntangleLinear
	EntangleRing     = circuit.EntangleRing
	EntangleAllToAll = circuit.EntangleAllToAll
)

// Axis identifies a rotation axis for trainable single-qubit gates.
type Axis = circuit.Axis

// Supported rotation axes.
const (
	AxisX = circuit.AxisX
	AxisY = circuit.AxisY
	AxisZ = circuit.AxisZ
)

// LayerKind discriminates the three stages of an assembled circuit.
type LayerKind = circuit.LayerKind

// Layer kinds, in assembly order.
const (
	KindEncoding    = circuit.KindEncoding
	KindVariational = circuit.KindVariational
	KindMeasurement = circuit.KindMeasurement
)

// InitKind selects the parameter initialization policy.
type InitKind = circuit.InitKind

// Supported initialization policies.
const (
	InitUniform = circuit.InitUniform
	InitZeros   = circuit.InitZeros
)

// Data model types.

// ParamShape describes the dimensions of a layer's parameter block.
type ParamShape = circuit.ParamShape

// Layer is one descriptor in an architecture manifest.
type Layer = circuit.Layer

// LayerConfig holds the recognized options of a layer descriptor.
type LayerConfig = circuit.LayerConfig

// Manifest is the ordered layer-descriptor sequence of an assembled circuit.
type Manifest = circuit.Manifest

// EncodingLayer maps input features to a circuit-native representation.
type EncodingLayer = circuit.EncodingLayer

// VariationalLayer is one trainable rotation + entangling block.
type VariationalLayer = circuit.VariationalLayer

// MeasurementSpec fixes the classical readout of the circuit.
type MeasurementSpec = circuit.MeasurementSpec

// InitPolicy configures parameter initialization.
type InitPolicy = circuit.InitPolicy

// Architecture is the assembled, immutable circuit composition.
type Architecture = circuit.Architecture

// Device is the execution substrate contract consumed by the training core.
type Device = circuit.Device

// Errors.

// ConfigurationError reports invalid or inconsistent hyperparameters.
type ConfigurationError = circuit.ConfigurationError

// ArchitectureError reports a layer composition inconsistency.
type ArchitectureError = circuit.ArchitectureError

// Builders.

// BuildEncoding validates the feature dimensionality against the scheme's
// wire budget and returns the encoding layer.
func BuildEncoding(featureDim int, scheme Scheme, numWires int) (*EncodingLayer, error) {
	return circuit.BuildEncoding(featureDim, scheme, numWires)
}

// BuildVariational produces depth stacked variational blocks.
func BuildVariational(numWires, depth int, pattern Entangling, axes []Axis) ([]VariationalLayer, error) {
	return circuit.BuildVariational(numWires, depth, pattern, axes)
}

// BuildMeasurement returns a measurement spec reading the given wires.
func BuildMeasurement(numWires int, observables []int) (*MeasurementSpec, error) {
	return circuit.BuildMeasurement(numWires, observables)
}

// Assemble concatenates encoding, variational stack, and measurement into an
// immutable Architecture, validating wire-count consistency.
func Assemble(enc *EncodingLayer, vars []VariationalLayer, meas *MeasurementSpec, init InitPolicy) (*Architecture, error) {
	return circuit.Assemble(enc, vars, meas, init)
}

// FromManifest reconstructs an architecture from a saved manifest.
func FromManifest(manifest Manifest, init InitPolicy) (*Architecture, error) {
	return circuit.FromManifest(manifest, init)
}
