package snapshot

import (
	"errors"
	"fmt"
)

// Sentinel errors for snapshot decoding.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// SerializationError reports a snapshot that cannot be decoded against the
// current schema.
type SerializationError struct {
	Path   string
	Reason string
	Err    error // Underlying sentinel, if any
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("snapshot: %s", e.Reason)
	}
	return fmt.Sprintf("snapshot %s: %s", e.Path, e.Reason)
}

// Unwrap exposes the underlying sentinel for errors.Is.
func (e *SerializationError) Unwrap() error {
	return e.Err
}
