package saga

import (
	"context"
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// ConfigError represents a saga that was assembled incorrectly. It is
// raised by Build, before any step could run.
type ConfigError struct {
	error
}

// MissingLoggerError indicates that Build was called without a logging
// sink attached.
func MissingLoggerError() error {
	return &ConfigError{errors.New("no logging sink attached before Build")}
}

// MissingRegistryError indicates that AddRegistered was used without a
// registry attached.
func MissingRegistryError(name StepName) error {
	return &ConfigError{fmt.Errorf("cannot add registered step %q: no registry attached", name)}
}

// BuildError records a problem noticed while accumulating steps. The
// first one wins and is returned by Build.
type BuildError struct {
	error
}

// DuplicateStepError indicates two steps were added under the same name.
func DuplicateStepError(name StepName) error {
	return &BuildError{fmt.Errorf("step with name %q already added", name)}
}

// MissingRunError indicates a step was added without a run function.
func MissingRunError(name StepName) error {
	return &BuildError{fmt.Errorf("step %q has no run function", name)}
}

// RegistryError represents an error returned from Registry operations.
type RegistryError struct {
	error
}

// NotFoundError indicates that no step with the given name is registered.
func NotFoundError(name StepName) error {
	return &RegistryError{fmt.Errorf("step %q not registered", name)}
}

// AlreadyRegisteredError indicates a name collision in the registry.
func AlreadyRegisteredError(name StepName) error {
	return &RegistryError{fmt.Errorf("step %q already registered", name)}
}

// CompensationError aggregates every error raised while a run unwound.
// It is what the caller receives when at least one compensation failed;
// the step error that triggered the unwinding stays available through
// Cause but is not counted among the inner errors.
type CompensationError struct {
	// Cause is the step error that triggered the compensation pass. It
	// is nil for manually requested unwinding.
	Cause error

	errs *multierror.Error
}

func newCompensationError(cause error, errs *multierror.Error) *CompensationError {
	return &CompensationError{Cause: cause, errs: errs}
}

func (e *CompensationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("compensation finished with %d error(s)", len(e.errs.Errors))
	}
	return fmt.Sprintf("compensation finished with %d error(s) after step failure: %v", len(e.errs.Errors), e.Cause)
}

// Errors returns the collected compensation failures in the order the
// steps were compensated, most recently executed first.
func (e *CompensationError) Errors() []error {
	return e.errs.Errors
}

// Unwrap exposes the compensation failures to errors.Is and errors.As.
func (e *CompensationError) Unwrap() []error {
	return e.errs.Errors
}

// IsCanceled reports whether err means a run stopped because its context
// was canceled or its deadline expired.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
