// Package snapshot provides the native .ansz format for saving and loading
// trained Ansatz models.
//
// A model snapshot is the immutable record of an architecture manifest, its
// trained parameter vector, the task type, and the training
// hyperparameters. Snapshots are created at checkpoints and at run
// completion and are never edited in place — saving writes a whole new file.
//
//	Format structure:
//	  [4 bytes: Magic "ANSZ"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata — manifest, task, hyperparameters, run info]
//	  [Padding to 64-byte alignment]
//	  [Parameter vector: float64 LE]
//
// Loading verifies magic, version, and parameter count; a mismatch surfaces
// as a SerializationError rather than a partially decoded model. The
// round trip preserves the manifest structurally and the parameters
// bit-for-bit.
package snapshot
