package rdw

import (
	"errors"

	"github.com/san-kum/rdwsim/internal/stats"
)

var (
	// ErrInvalidConfig indicates a manager configuration that cannot run.
	ErrInvalidConfig = errors.New("rdw: invalid configuration")

	// ErrInvalidTrackingArea indicates a tracking area with no usable space
	// once the buffer is removed.
	ErrInvalidTrackingArea = errors.New("rdw: tracking area too small for buffer")

	// ErrUnsupported is returned for reorientation gain accounting, which
	// has no defined semantics yet.
	ErrUnsupported = stats.ErrUnsupported
)
