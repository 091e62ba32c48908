// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package snapshot provides the public API for saving and loading trained
// Ansatz models in the native .ansz format.
//
// Example:
//
//	if err := snapshot.Save(trainer.Snapshot(), "model.ansz"); err != nil {
//	    log.Fatal(err)
//	}
//	s, err := snapshot.Load("model.ansz")
package snapshot

import (
	"github.com/ansatz-ml/ansatz/internal/snapshot"
)

// Format constants.
const (
	MagicBytes    = snapshot.MagicBytes
	FormatVersion = snapshot.FormatVersion
)

// Snapshot is an immutable trained-model record.
type Snapshot = snapshot.Snapshot

// Meta records where in a training run the snapshot was taken.
type Meta = snapshot.Meta

// SerializationError reports a snapshot that cannot be decoded.
type SerializationError = snapshot.SerializationError

// Sentinel errors for snapshot decoding.
var (
	ErrInvalidMagic       = snapshot.ErrInvalidMagic
	ErrUnsupportedVersion = snapshot.ErrUnsupportedVersion
)

// Save writes the snapshot to path.
func Save(s *Snapshot, path string) error {
	return snapshot.Save(s, path)
}

// Load reads a snapshot from path.
func Load(path string) (*Snapshot, error) {
	return snapshot.Load(path)
}
