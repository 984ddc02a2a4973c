package saga

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryRunStoresOutputUnderKey(t *testing.T) {
	step := NewStep[string]("greet", "greeting",
		func(ctx context.Context, sc *Context) (string, error) {
			return "hello", nil
		}, nil)

	sc := NewContext()
	ran, err := step.TryRun(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, ran)

	out, ok := ValueAs[string](sc, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", out)
}

func TestTryRunWithoutOutputKeyDiscardsResult(t *testing.T) {
	step := NewStep[string]("quiet", "",
		func(ctx context.Context, sc *Context) (string, error) {
			return "hello", nil
		}, nil)

	sc := NewContext()
	ran, err := step.TryRun(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Zero(t, sc.Len())
}

func TestTryRunSkipTouchesNothing(t *testing.T) {
	invoked := false
	step := NewStepIf[string](
		func(sc *Context) bool { return false },
		"guarded", "out",
		func(ctx context.Context, sc *Context) (string, error) {
			invoked = true
			return "never", nil
		}, nil)

	sc := NewContext()
	ran, err := step.TryRun(context.Background(), sc)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.False(t, invoked, "a false predicate must prevent the work function")
	assert.Zero(t, sc.Len())
}

func TestTryRunFailureStillCountsAsRun(t *testing.T) {
	errBoom := errors.New("boom")
	step := NewStep[string]("fragile", "out",
		func(ctx context.Context, sc *Context) (string, error) {
			return "", errBoom
		}, nil)

	sc := NewContext()
	ran, err := step.TryRun(context.Background(), sc)
	assert.True(t, ran, "a failed step still ran, so its compensation is owed")
	assert.Equal(t, errBoom, err)
	assert.False(t, sc.Contains("out"), "no output is written on failure")
}

func TestCompensateWithoutFunctionIsNoOp(t *testing.T) {
	step := NewAction("simple", func(ctx context.Context, sc *Context) error { return nil }, nil)
	assert.NoError(t, step.Compensate(context.Background(), NewContext()))
}

func TestCompensateSurfacesError(t *testing.T) {
	errUndo := errors.New("undo failed")
	step := NewAction("fragile",
		func(ctx context.Context, sc *Context) error { return nil },
		func(ctx context.Context, sc *Context) error { return errUndo })

	assert.Equal(t, errUndo, step.Compensate(context.Background(), NewContext()))
}

func TestConditionalStepNameIsTagged(t *testing.T) {
	plain := NewAction("deploy", func(ctx context.Context, sc *Context) error { return nil }, nil)
	assert.Equal(t, StepName("deploy"), plain.Name())

	guarded := NewActionIf(func(sc *Context) bool { return true }, "deploy",
		func(ctx context.Context, sc *Context) error { return nil }, nil)
	assert.Equal(t, StepName("~deploy"), guarded.Name())
}

func TestTruePredicateRunsTheStep(t *testing.T) {
	sc := NewContext().Set("enabled", true)

	step := NewActionIf(
		func(sc *Context) bool {
			enabled, _ := ValueAs[bool](sc, "enabled")
			return enabled
		},
		"guarded",
		func(ctx context.Context, sc *Context) error {
			sc.Set("ran", true)
			return nil
		}, nil)

	ran, err := step.TryRun(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, sc.Contains("ran"))
}
