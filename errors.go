package vox

import "errors"

var (
	// ErrNotFound is returned when a chunk scan ends without a match.
	ErrNotFound = errors.New("vox: chunk not found")

	// ErrCorrupt reports a chunk, string or record that runs past the end
	// of its buffer or disagrees with its declared size.
	ErrCorrupt = errors.New("vox: corrupt file")

	// ErrEncoding reports string bytes that are not valid UTF-8.
	ErrEncoding = errors.New("vox: invalid string encoding")

	// ErrOutOfBounds reports a voxel position or size outside a model.
	ErrOutOfBounds = errors.New("vox: out of bounds")

	// ErrInvalidArgument reports a value the caller should never pass,
	// such as palette index 0 for a voxel.
	ErrInvalidArgument = errors.New("vox: invalid argument")
)
