package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSetGetContains(t *testing.T) {
	sc := NewContext()

	assert.Nil(t, sc.Get("missing"))
	assert.False(t, sc.Contains("missing"))

	sc.Set("db", "db-123")
	assert.True(t, sc.Contains("db"))
	assert.Equal(t, "db-123", sc.Get("db"))

	// Overwrite keeps keys unique.
	sc.Set("db", "db-456")
	assert.Equal(t, "db-456", sc.Get("db"))
	assert.Equal(t, 1, sc.Len())
}

func TestContextSetIsChainable(t *testing.T) {
	sc := NewContext().
		Set("a", 1).
		Set("b", 2).
		Set("c", 3)

	assert.Equal(t, 3, sc.Len())
	assert.Equal(t, []string{"a", "b", "c"}, sc.Keys())
}

func TestValueAsReturnsZeroOnMissOrMismatch(t *testing.T) {
	sc := NewContext().Set("count", 42).Set("name", "web")

	count, ok := ValueAs[int](sc, "count")
	require.True(t, ok)
	assert.Equal(t, 42, count)

	// Absent key.
	missing, ok := ValueAs[int](sc, "absent")
	assert.False(t, ok)
	assert.Zero(t, missing)

	// Type mismatch is not an error either, just the zero value.
	wrong, ok := ValueAs[int](sc, "name")
	assert.False(t, ok)
	assert.Zero(t, wrong)

	str, ok := ValueAs[string](sc, "name")
	require.True(t, ok)
	assert.Equal(t, "web", str)
}

func TestValueAsWithPointerTypes(t *testing.T) {
	type payload struct {
		ID string
	}

	sc := NewContext().Set("p", &payload{ID: "x"})

	p, ok := ValueAs[*payload](sc, "p")
	require.True(t, ok)
	assert.Equal(t, "x", p.ID)

	_, ok = ValueAs[payload](sc, "p")
	assert.False(t, ok, "pointer and value types do not match")
}
