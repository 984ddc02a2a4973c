package saga

import (
	"fmt"
	"strings"
	"sync"
)

// EventType defines what can happen to a step during one run.
type EventType int

const (
	EventStarted EventType = iota
	EventSucceeded
	EventSkipped
	EventFailed
	EventCompensateStarted
	EventCompensateSucceeded
	EventCompensateFailed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventSucceeded:
		return "succeeded"
	case EventSkipped:
		return "skipped"
	case EventFailed:
		return "failed"
	case EventCompensateStarted:
		return "compensate_started"
	case EventCompensateSucceeded:
		return "compensate_succeeded"
	case EventCompensateFailed:
		return "compensate_failed"
	default:
		return fmt.Sprintf("Unknown EventType: %d", int(e))
	}
}

// Event is one entry in a run's log.
type Event struct {
	Step StepName
	Type EventType
	Err  error
}

// String implements fmt.Stringer for Event.
func (e Event) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%-24s %s: %v", e.Step, e.Type, e.Err)
	}
	return fmt.Sprintf("%-24s %s", e.Step, e.Type)
}

// stepStatus is a step's position in the run lifecycle, advanced only
// through legal transitions.
type stepStatus int

const (
	statusNeverStarted stepStatus = iota
	statusStarted
	statusSucceeded
	statusSkipped
	statusFailed
	statusCompensateStarted
	statusCompensateSucceeded
	statusCompensateFailed
)

// next returns the status a step moves to after recording the given
// event. Failed steps may still enter compensation: their own undo work
// is attempted even though the forward pass did not complete.
func (s stepStatus) next(event EventType) (stepStatus, error) {
	switch s {
	case statusNeverStarted:
		if event == EventStarted {
			return statusStarted, nil
		}
	case statusStarted:
		switch event {
		case EventSucceeded:
			return statusSucceeded, nil
		case EventSkipped:
			return statusSkipped, nil
		case EventFailed:
			return statusFailed, nil
		}
	case statusSucceeded, statusFailed:
		if event == EventCompensateStarted {
			return statusCompensateStarted, nil
		}
	case statusCompensateStarted:
		switch event {
		case EventCompensateSucceeded:
			return statusCompensateSucceeded, nil
		case EventCompensateFailed:
			return statusCompensateFailed, nil
		}
	}

	return statusNeverStarted, fmt.Errorf(
		"illegal event type %s for step %s", event, statusName(s),
	)
}

func statusName(s stepStatus) string {
	switch s {
	case statusNeverStarted:
		return "never_started"
	case statusStarted:
		return "started"
	case statusSucceeded:
		return "succeeded"
	case statusSkipped:
		return "skipped"
	case statusFailed:
		return "failed"
	case statusCompensateStarted:
		return "compensate_started"
	case statusCompensateSucceeded:
		return "compensate_succeeded"
	case statusCompensateFailed:
		return "compensate_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// RunLog is the in-memory event log for a single run. It exists for
// observability within that run and is never persisted; it does not
// outlive the Result that carries it.
type RunLog struct {
	mu        sync.Mutex
	unwinding bool
	events    []Event
	status    map[StepName]stepStatus
}

// NewRunLog creates a new, empty RunLog.
func NewRunLog() *RunLog {
	return &RunLog{
		events: make([]Event, 0),
		status: make(map[StepName]stepStatus),
	}
}

// Record appends an event after validating the step's transition.
func (l *RunLog) Record(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.status[event.Step]
	next, err := current.next(event.Type)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventFailed, EventCompensateStarted:
		l.unwinding = true
	}

	l.status[event.Step] = next
	l.events = append(l.events, event)
	return nil
}

// Unwinding returns true once the run has entered compensation.
func (l *RunLog) Unwinding() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.unwinding
}

// Events returns a copy of the recorded events in order.
func (l *RunLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	events := make([]Event, len(l.events))
	copy(events, l.events)
	return events
}

// String implements fmt.Stringer for RunLog.
func (l *RunLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("RUN LOG:\n")
	direction := "forward"
	if l.unwinding {
		direction = "unwinding"
	}
	sb.WriteString(fmt.Sprintf("direction: %s\n", direction))
	sb.WriteString(fmt.Sprintf("events (%d total):\n", len(l.events)))
	for i, event := range l.events {
		sb.WriteString(fmt.Sprintf("%03d %s\n", i+1, event.String()))
	}
	return sb.String()
}
