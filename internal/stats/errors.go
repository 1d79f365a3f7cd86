package stats

import "errors"

var (
	// ErrUnsupported is returned by the reorientation gain events, which
	// have no defined accounting.
	ErrUnsupported = errors.New("stats: reorientation gain accounting is not supported")
)
