package superres

import "errors"

var (
	// ErrUnknownAlgo is returned for an algorithm name or value that is not supported.
	ErrUnknownAlgo = errors.New("superres: unknown algorithm")

	// ErrInvalidScale is returned when the algorithm has no model for the scale.
	ErrInvalidScale = errors.New("superres: unsupported scale")

	// ErrModelsDirNotFound is returned when the models directory is missing.
	ErrModelsDirNotFound = errors.New("superres: models directory not found")

	// ErrModelNotFound is returned when the model file is missing.
	ErrModelNotFound = errors.New("superres: model file not found")

	// ErrSizeMismatch is returned when the destination is not src scaled by the engine factor.
	ErrSizeMismatch = errors.New("superres: destination size mismatch")
)
