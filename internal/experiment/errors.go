package experiment

import (
	"errors"
	"fmt"

	"github.com/san-kum/rdwsim/internal/stats"
)

var (
	ErrUnknownRedirector = errors.New("experiment: unknown redirector")
	ErrUnknownResetter   = errors.New("experiment: unknown resetter")
	ErrUnknownExperiment = errors.New("experiment: unknown experiment type")
	ErrUnknownPath       = errors.New("experiment: unknown path seed")
	ErrEmptyPlan         = errors.New("experiment: plan has no setups")
)

// ExperimentError ties a failure to the setup that produced it.
type ExperimentError struct {
	Index      int
	Descriptor []stats.Field
	Wrapped    error
}

func (e *ExperimentError) Error() string {
	return fmt.Sprintf("experiment %d %s: %v", e.Index, descriptorString(e.Descriptor), e.Wrapped)
}

func (e *ExperimentError) Unwrap() error { return e.Wrapped }
