// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package statevector provides the public API for the exact statevector
// execution substrate.
//
// Example:
//
//	device := statevector.New()
//	outputs, err := device.Execute(arch, params, inputs)
package statevector

import (
	"github.com/ansatz-ml/ansatz/internal/backend/statevector"
)

// Device is an exact simulator implementing circuit.Device.
type Device = statevector.Device

// New returns a statevector device that spreads independent circuit
// evaluations across CPU cores.
func New() *Device {
	return statevector.New()
}

// NewSequential returns a single-threaded device.
func NewSequential() *Device {
	return statevector.NewSequential()
}
