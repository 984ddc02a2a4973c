package saga

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	multierror "github.com/hashicorp/go-multierror"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/relaypoint/saga/plan"
)

// SagaName is a human-readable name for a particular saga.
type SagaName string

// String returns the string representation of the SagaName.
func (s SagaName) String() string {
	return string(s)
}

// Status describes where a run ended up.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusFailedDuringCompensation
	StatusCanceled
)

// String returns the string representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusFailedDuringCompensation:
		return "failed_during_compensation"
	case StatusCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Unknown Status: %d", int(s))
	}
}

// Outcome is what happened to a single step during the forward pass.
type Outcome int

const (
	OutcomeRan Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRan:
		return "ran"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Unknown Outcome: %d", int(o))
	}
}

// StepRecord captures the execution of a single step.
type StepRecord struct {
	Step    StepName
	Start   time.Time
	End     time.Time
	Outcome Outcome
	Err     error
}

// Saga is an immutable, ordered sequence of steps plus one logging sink.
// A Saga is produced by a Builder and may be executed repeatedly and
// concurrently: all mutable state lives in the per-run Result, and the
// step list, plan and sink are read-only after construction.
type Saga struct {
	name   SagaName
	steps  map[int64]Step
	graph  *plan.Graph
	logger Logger
}

// Name returns the saga's name.
func (s *Saga) Name() SagaName {
	return s.name
}

// Len returns the number of declared steps.
func (s *Saga) Len() int {
	return len(s.steps)
}

// Dot renders the execution plan in Graphviz DOT format.
func (s *Saga) Dot() (string, error) {
	return s.graph.Dot()
}

// Result captures everything about one Execute call: the final status,
// the error (if any), the run context holding step outputs, the event
// log, and the per-step trace.
type Result struct {
	RunID   uuid.UUID
	Status  Status
	Err     error
	Context *Context
	Log     *RunLog

	saga     *Saga
	trace    []StepRecord
	executed []Step
}

// Trace returns a copy of the per-step records in execution order.
func (r *Result) Trace() []StepRecord {
	trace := make([]StepRecord, len(r.trace))
	copy(trace, r.trace)
	return trace
}

// Order returns the names of the steps that actually ran (including a
// failing one), in execution order. Skipped steps are omitted.
func (r *Result) Order() []StepName {
	order := make([]StepName, 0, len(r.trace))
	for _, record := range r.trace {
		if record.Outcome == OutcomeSkipped {
			continue
		}
		order = append(order, record.Step)
	}
	return order
}

// Compensate manually unwinds whatever the run executed, most recent
// step first. Useful to tear resources back down after a successful run,
// or to unwind a canceled one. Each executed step is compensated at most
// once across the lifetime of the Result.
func (r *Result) Compensate(ctx context.Context) error {
	if r.saga == nil || len(r.executed) == 0 {
		return fmt.Errorf("run %s has no executed steps to compensate", r.RunID)
	}
	_, err := r.saga.unwind(ctx, r, nil)
	return err
}

func (r *Result) record(event Event) {
	if err := r.Log.Record(event); err != nil {
		// The executor drives every transition itself, so a refusal here
		// is a bug worth surfacing in the logs.
		logf(r.saga.logger, LevelWarn, err, "run log rejected event for step %s", event.Step)
	}
}

// Execute runs the saga's steps in declared order against sc, allocating
// a fresh Context when sc is nil. On the first step failure the run
// unwinds: every step that ran is compensated in reverse order, and the
// caller receives either the triggering error (clean unwinding) or a
// CompensationError aggregating the compensation failures.
//
// Cancellation is cooperative and observed between steps only. A run
// that stops on cancellation does not compensate and reports
// StatusCanceled with ctx.Err(); use Result.Compensate to unwind it
// explicitly. Long step bodies must watch ctx themselves for
// finer-grained aborts.
func (s *Saga) Execute(ctx context.Context, sc *Context) (*Result, error) {
	if sc == nil {
		sc = NewContext()
	}

	res := &Result{
		RunID:   uuid.New(),
		Status:  StatusRunning,
		Context: sc,
		Log:     NewRunLog(),
		saga:    s,
	}

	order, err := s.executionOrder()
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res, err
	}

	n := len(order)
	logf(s.logger, LevelInfo, nil, "run %s starting saga %q: %d step(s)", res.RunID, s.name, n)

	for i, id := range order {
		step := s.steps[id]
		name := step.Name()

		select {
		case <-ctx.Done():
			// Cancellation between steps stops the run without
			// compensating and without marking it failed. Steps that
			// already ran stay in place for Result.Compensate.
			logf(s.logger, LevelWarn, ctx.Err(), "run %s canceled before step %d/%d: %s", res.RunID, i+1, n, name)
			res.Status = StatusCanceled
			res.Err = ctx.Err()
			return res, res.Err
		default:
		}

		logf(s.logger, LevelInfo, nil, "executing step %d/%d: %s", i+1, n, name)
		res.record(Event{Step: name, Type: EventStarted})

		start := time.Now()
		ran, err := step.TryRun(ctx, sc)
		end := time.Now()

		switch {
		case !ran:
			logf(s.logger, LevelInfo, nil, "skipping step %d/%d: %s", i+1, n, name)
			res.record(Event{Step: name, Type: EventSkipped})
			res.trace = append(res.trace, StepRecord{Step: name, Start: start, End: end, Outcome: OutcomeSkipped})

		case err != nil:
			logf(s.logger, LevelError, err, "step %d/%d failed: %s", i+1, n, name)
			res.record(Event{Step: name, Type: EventFailed, Err: err})
			res.trace = append(res.trace, StepRecord{Step: name, Start: start, End: end, Outcome: OutcomeFailed, Err: err})

			// The failing step joins the stack: its own compensation
			// still runs, since it may have done partial work.
			res.executed = append(res.executed, step)
			return s.unwind(ctx, res, err)

		default:
			res.record(Event{Step: name, Type: EventSucceeded})
			res.trace = append(res.trace, StepRecord{Step: name, Start: start, End: end, Outcome: OutcomeRan})
			res.executed = append(res.executed, step)
		}
	}

	res.Status = StatusCompleted
	logf(s.logger, LevelInfo, nil, "run %s completed saga %q", res.RunID, s.name)
	return res, nil
}

// unwind drains the executed stack in LIFO order: the most recently
// executed step is compensated first. A compensation failure never stops
// the pass; every remaining stacked step is still attempted and the
// failures are collected.
func (s *Saga) unwind(ctx context.Context, res *Result, cause error) (*Result, error) {
	logf(s.logger, LevelWarn, cause, "run %s unwinding %d step(s)", res.RunID, len(res.executed))

	var errs *multierror.Error
	for len(res.executed) > 0 {
		step := res.executed[len(res.executed)-1]
		res.executed = res.executed[:len(res.executed)-1]
		name := step.Name()

		logf(s.logger, LevelInfo, nil, "compensating step: %s", name)
		res.record(Event{Step: name, Type: EventCompensateStarted})

		if err := step.Compensate(ctx, res.Context); err != nil {
			logf(s.logger, LevelError, err, "compensation failed for step: %s", name)
			res.record(Event{Step: name, Type: EventCompensateFailed, Err: err})
			errs = multierror.Append(errs, err)
			continue
		}
		res.record(Event{Step: name, Type: EventCompensateSucceeded})
	}

	if errs != nil {
		res.Status = StatusFailedDuringCompensation
		res.Err = newCompensationError(cause, errs)
		return res, res.Err
	}

	if cause != nil {
		res.Status = StatusFailed
		res.Err = cause
	}
	return res, cause
}

// executionOrder derives the step order from the plan graph using a
// stabilized topological sort with node IDs breaking ties, which for a
// chain reproduces the declared order deterministically.
func (s *Saga) executionOrder() ([]int64, error) {
	sorted, err := topo.SortStabilized(s.graph, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool {
			return nodes[i].ID() < nodes[j].ID()
		})
	})
	if err != nil {
		return nil, fmt.Errorf("plan ordering failed: %w", err)
	}

	order := make([]int64, len(sorted))
	for i, node := range sorted {
		order[i] = node.ID()
	}
	return order, nil
}
