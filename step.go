package saga

import (
	"context"
	"fmt"
)

// StepName identifies a step within one saga.
type StepName string

// String returns the string representation of the StepName.
func (n StepName) String() string {
	return string(n)
}

// Unit is the zero-size output of steps that produce no meaningful
// result. It lets such steps share the same uniform Step contract as
// steps that do produce one.
type Unit struct{}

// RunFunc performs the work of a step and yields its typed result.
type RunFunc[R any] func(ctx context.Context, sc *Context) (R, error)

// ActionFunc is the run function of a step without a meaningful output.
type ActionFunc func(ctx context.Context, sc *Context) error

// CompensateFunc undoes the work a step performed.
type CompensateFunc func(ctx context.Context, sc *Context) error

// Predicate decides, against the run context, whether a conditional step
// runs at all.
type Predicate func(sc *Context) bool

// Step is the uniform contract the executor drives. Concrete steps are
// generic over their result type; this interface erases that type so a
// single saga can mix steps with arbitrary outputs.
//
// TryRun reports whether the step actually ran. A skipped step returns
// (false, nil) and must not touch the context. A failed step returns
// (true, err): it still counts as run, because its own compensation must
// be attempted when the saga unwinds.
type Step interface {
	Name() StepName
	TryRun(ctx context.Context, sc *Context) (bool, error)
	Compensate(ctx context.Context, sc *Context) error
}

// funcStep adapts a pair of ordinary functions to the Step contract,
// closing over its result type R.
type funcStep[R any] struct {
	name       StepName
	run        RunFunc[R]
	compensate CompensateFunc
	predicate  Predicate
	outputKey  string
}

// NewStep builds a step whose result is stored in the run context under
// outputKey. Pass an empty outputKey to discard the result, and a nil
// compensate for steps with nothing to undo.
func NewStep[R any](name StepName, outputKey string, run RunFunc[R], compensate CompensateFunc) Step {
	return &funcStep[R]{
		name:       name,
		run:        run,
		compensate: compensate,
		outputKey:  outputKey,
	}
}

// NewStepIf is NewStep guarded by a predicate that is evaluated against
// the run context just before the step would run.
func NewStepIf[R any](pred Predicate, name StepName, outputKey string, run RunFunc[R], compensate CompensateFunc) Step {
	return &funcStep[R]{
		name:       name,
		run:        run,
		compensate: compensate,
		predicate:  pred,
		outputKey:  outputKey,
	}
}

// NewAction builds a step with no meaningful output.
func NewAction(name StepName, run ActionFunc, compensate CompensateFunc) Step {
	return NewStep[Unit](name, "", liftAction(run), compensate)
}

// NewActionIf builds a predicate-guarded step with no meaningful output.
func NewActionIf(pred Predicate, name StepName, run ActionFunc, compensate CompensateFunc) Step {
	return NewStepIf[Unit](pred, name, "", liftAction(run), compensate)
}

func liftAction(run ActionFunc) RunFunc[Unit] {
	return func(ctx context.Context, sc *Context) (Unit, error) {
		return Unit{}, run(ctx, sc)
	}
}

// Name returns the step name. Predicate-guarded steps are tagged with a
// leading "~" so conditional work stays visible in logs and traces.
func (s *funcStep[R]) Name() StepName {
	if s.predicate != nil {
		return "~" + s.name
	}
	return s.name
}

// TryRun implements the Step contract for funcStep.
func (s *funcStep[R]) TryRun(ctx context.Context, sc *Context) (bool, error) {
	if s.predicate != nil && !s.predicate(sc) {
		return false, nil
	}

	out, err := s.run(ctx, sc)
	if err != nil {
		return true, err
	}

	if s.outputKey != "" {
		sc.Set(s.outputKey, out)
	}
	return true, nil
}

// Compensate implements the Step contract for funcStep. It is a no-op
// when no compensation function was supplied.
func (s *funcStep[R]) Compensate(ctx context.Context, sc *Context) error {
	if s.compensate == nil {
		return nil
	}
	return s.compensate(ctx, sc)
}

// String implements fmt.Stringer for funcStep.
func (s *funcStep[R]) String() string {
	return fmt.Sprintf("step %s", s.Name())
}
