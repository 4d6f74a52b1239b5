package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a required setting is missing or invalid.
	// Nothing has been opened or started when it is returned.
	ErrConfiguration = errors.New("pipeline: invalid configuration")

	// ErrResource is returned when the source or sink cannot be opened.
	// No goroutines have been started when it is returned.
	ErrResource = errors.New("pipeline: resource unavailable")

	// ErrTransform is returned when the per-item transform fails.
	ErrTransform = errors.New("pipeline: transform failed")

	// ErrSource is returned when the source fails for a reason other than exhaustion.
	ErrSource = errors.New("pipeline: source read failed")

	// ErrSink is returned when writing to the sink fails.
	ErrSink = errors.New("pipeline: sink write failed")

	// ErrAlreadyStarted is returned when Run is called more than once.
	ErrAlreadyStarted = errors.New("pipeline: already started")
)

// ConfigError formats a message into an error matching ErrConfiguration.
func ConfigError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// WrapConfig wraps err so that it matches both err and ErrConfiguration.
func WrapConfig(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

// ResourceError wraps err so that it matches ErrResource.
func ResourceError(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResource, what, err)
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsResource reports whether err is a resource error.
func IsResource(err error) bool {
	return errors.Is(err, ErrResource)
}

// TransformError describes a failed compute unit.
type TransformError struct {
	Index int // sequence index of the item
	Slot  int // slot the unit was bound to
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("pipeline: transform failed for item %d (slot %d): %v", e.Index, e.Slot, e.Err)
}

// Unwrap returns the underlying transform error.
func (e *TransformError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTransform) match.
func (e *TransformError) Is(target error) bool { return target == ErrTransform }

// SinkError describes a failed sink write.
type SinkError struct {
	Index int
	Err   error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("pipeline: sink write failed for item %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying sink error.
func (e *SinkError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSink) match.
func (e *SinkError) Is(target error) bool { return target == ErrSink }
