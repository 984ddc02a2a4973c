package saga

import (
	"github.com/relaypoint/saga/plan"
	"github.com/relaypoint/saga/set"
)

// Builder accumulates an ordered list of steps and the logging sink,
// then freezes them into an executable Saga.
//
// Add calls are chainable. Problems noticed while recording steps
// (duplicate names, missing run functions) are deferred and surface at
// Build, so a misconfigured saga always fails before any step runs. A
// Builder may be reused after Build; each Build yields an independent
// Saga.
type Builder struct {
	name     SagaName
	steps    []Step
	logger   Logger
	registry *Registry
	names    *set.Set[StepName]
	err      error
}

// NewBuilder creates a Builder for a saga with the given name.
func NewBuilder(name SagaName) *Builder {
	return &Builder{
		name:  name,
		steps: []Step{},
		names: set.New[StepName](),
	}
}

// WithLogger attaches the logging sink. Build refuses to produce a Saga
// without one.
func (b *Builder) WithLogger(logger Logger) *Builder {
	b.logger = logger
	return b
}

// WithRegistry attaches a step registry. Steps appended afterwards are
// auto-registered when absent, and AddRegistered pulls steps from it.
func (b *Builder) WithRegistry(registry *Registry) *Builder {
	b.registry = registry
	return b
}

// Append adds a pre-built step to the end of the saga.
func (b *Builder) Append(step Step) *Builder {
	if b.err != nil {
		return b
	}

	name := step.Name()
	if b.names.Contains(name) {
		return b.fail(DuplicateStepError(name))
	}
	b.names.Insert(name)

	if b.registry != nil {
		if _, err := b.registry.Get(name); err != nil {
			if regErr := b.registry.Register(step); regErr != nil {
				return b.fail(regErr)
			}
		}
	}

	b.steps = append(b.steps, step)
	return b
}

// AddAction appends a step with no meaningful output. compensate may be
// nil for steps with nothing to undo.
func (b *Builder) AddAction(name StepName, run ActionFunc, compensate CompensateFunc) *Builder {
	if run == nil {
		return b.fail(MissingRunError(name))
	}
	return b.Append(NewAction(name, run, compensate))
}

// AddActionIf appends a predicate-guarded action. When the predicate
// evaluates false at run time the step is skipped entirely: its work
// never runs and it is never compensated.
func (b *Builder) AddActionIf(pred Predicate, name StepName, run ActionFunc, compensate CompensateFunc) *Builder {
	if run == nil {
		return b.fail(MissingRunError(name))
	}
	return b.Append(NewActionIf(pred, name, run, compensate))
}

// AddRegistered appends a step from the attached registry by name.
func (b *Builder) AddRegistered(name StepName) *Builder {
	if b.err != nil {
		return b
	}
	if b.registry == nil {
		return b.fail(MissingRegistryError(name))
	}

	step, err := b.registry.Get(name)
	if err != nil {
		return b.fail(err)
	}
	return b.Append(step)
}

// AddStep appends a step whose typed result is stored in the run context
// under outputKey. It is a package-level function because Go methods
// cannot introduce type parameters.
func AddStep[R any](b *Builder, name StepName, outputKey string, run RunFunc[R], compensate CompensateFunc) *Builder {
	if run == nil {
		return b.fail(MissingRunError(name))
	}
	return b.Append(NewStep[R](name, outputKey, run, compensate))
}

// AddStepIf appends a predicate-guarded step with a typed result.
func AddStepIf[R any](b *Builder, pred Predicate, name StepName, outputKey string, run RunFunc[R], compensate CompensateFunc) *Builder {
	if run == nil {
		return b.fail(MissingRunError(name))
	}
	return b.Append(NewStepIf[R](pred, name, outputKey, run, compensate))
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Build freezes the accumulated steps into an immutable Saga. It fails
// with a configuration error when no logging sink is attached, and with
// the first deferred recording error otherwise.
func (b *Builder) Build() (*Saga, error) {
	if b.logger == nil {
		return nil, MissingLoggerError()
	}
	if b.err != nil {
		return nil, b.err
	}

	graph := plan.New()
	steps := make(map[int64]Step, len(b.steps))
	for _, step := range b.steps {
		id := graph.Append(string(step.Name()))
		steps[id] = step
	}

	return &Saga{
		name:   b.name,
		steps:  steps,
		graph:  graph,
		logger: b.logger,
	}, nil
}
