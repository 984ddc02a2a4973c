package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendBuildsAChain(t *testing.T) {
	g := New()

	a := g.Append("first")
	b := g.Append("second")
	c := g.Append("third")

	assert.Equal(t, 3, g.Nodes().Len())
	assert.True(t, g.HasEdgeFromTo(a, b))
	assert.True(t, g.HasEdgeFromTo(b, c))
	assert.False(t, g.HasEdgeFromTo(a, c))
	assert.False(t, g.HasEdgeFromTo(b, a))
}

func TestDotExportCarriesLabels(t *testing.T) {
	g := New()
	g.Append("create-database")
	g.Append("create-server")

	out, err := g.Dot()
	require.NoError(t, err)
	assert.Contains(t, out, "create-database")
	assert.Contains(t, out, "create-server")
	assert.Contains(t, out, "->")
}

func TestEmptyGraphDot(t *testing.T) {
	out, err := New().Dot()
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
