package pinscroll

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTarget reports that a required node was absent at setup.
	ErrMissingTarget = errors.New("pinscroll: missing target")
	// ErrInvalidStep reports a malformed timeline window or property list.
	ErrInvalidStep = errors.New("pinscroll: invalid step")
	// ErrUnresolvedTarget reports that a deferred value could not be computed
	// from current geometry. It is transient: the owning Sequence holds its
	// last good state and retries.
	ErrUnresolvedTarget = errors.New("pinscroll: unresolved target")
	// ErrInvalidRegion reports a trigger region whose end does not lie after
	// its start.
	ErrInvalidRegion = errors.New("pinscroll: invalid trigger region")
)

// StepError identifies the offending step of a rejected timeline.
// errors.Is matches ErrInvalidStep and, when set, Err.
type StepError struct {
	Index  int
	Name   string
	Reason string
	Err    error
}

func (e *StepError) Error() string {
	label := fmt.Sprintf("step %d", e.Index)
	if e.Name != "" {
		label = fmt.Sprintf("step %d (%s)", e.Index, e.Name)
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %s: %v", ErrInvalidStep, label, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s: %s", ErrInvalidStep, label, e.Reason)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *StepError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidStep, e.Err}
	}
	return []error{ErrInvalidStep}
}

func stepErr(i int, s *Step, reason string, cause error) *StepError {
	return &StepError{Index: i, Name: s.Name, Reason: reason, Err: cause}
}
