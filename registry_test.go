package saga

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopStep(name StepName) Step {
	return NewAction(name, func(ctx context.Context, sc *Context) error { return nil }, nil)
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(noopStep("create-database")))

	step, err := registry.Get("create-database")
	require.NoError(t, err)
	assert.Equal(t, StepName("create-database"), step.Name())
}

func TestRegistryRefusesDuplicates(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(noopStep("shared")))
	err := registry.Register(noopStep("shared"))
	require.Error(t, err)

	var regErr *RegistryError
	assert.ErrorAs(t, err, &regErr)
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("missing")
	require.Error(t, err)

	var regErr *RegistryError
	assert.ErrorAs(t, err, &regErr)
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := StepName(fmt.Sprintf("step-%d", i))
			assert.NoError(t, registry.Register(noopStep(name)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 32; i++ {
		_, err := registry.Get(StepName(fmt.Sprintf("step-%d", i)))
		assert.NoError(t, err)
	}
}
