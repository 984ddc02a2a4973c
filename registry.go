package saga

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry holds reusable named steps shared across sagas.
//
// Steps are identified by their StepName. An application registers a
// step once and attaches the registry to any number of builders, which
// can then pull steps out by name instead of re-declaring them. Safe for
// concurrent use.
type Registry struct {
	steps *xsync.MapOf[StepName, Step]
}

// NewRegistry creates a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{steps: xsync.NewMapOf[StepName, Step]()}
}

// Register adds a step to the registry, refusing name collisions.
func (r *Registry) Register(step Step) error {
	if _, loaded := r.steps.LoadOrStore(step.Name(), step); loaded {
		return AlreadyRegisteredError(step.Name())
	}
	return nil
}

// Get retrieves a step from the registry by its name.
func (r *Registry) Get(name StepName) (Step, error) {
	step, ok := r.steps.Load(name)
	if !ok {
		return nil, NotFoundError(name)
	}
	return step, nil
}
