package constellation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureNodeIdempotent(t *testing.T) {
	g := NewGraph()

	first := g.EnsureNode("a", "first", 0.9)
	second := g.EnsureNode("a", "second", 0.1)

	assert.Same(t, first, second)
	assert.Equal(t, "first", second.Label)
	assert.Equal(t, 1, g.NodeCount())
}

func TestEdgeIDCanonicalOrder(t *testing.T) {
	assert.Equal(t, EdgeID("a", "b"), EdgeID("b", "a"))
}

func TestAddEdgeMirrorsAdjacency(t *testing.T) {
	g := NewGraph()
	g.EnsureNode("a", "a", 1)
	g.EnsureNode("b", "b", 1)

	g.AddEdge("b", "a", 0.8)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, g.Degree("a"))
	assert.Equal(t, 1, g.Degree("b"))
	assert.Len(t, g.Neighbors("a"), 1)
	assert.Equal(t, "b", g.Neighbors("a")[0].ID)
}

func TestAddEdgeOverwritesWeight(t *testing.T) {
	g := NewGraph()
	g.EnsureNode("a", "a", 1)
	g.EnsureNode("b", "b", 1)

	g.AddEdge("a", "b", 0.7)
	g.AddEdge("a", "b", 0.9)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 0.9, g.Edges[EdgeID("a", "b")].Weight)
}

func TestAverageDegree(t *testing.T) {
	g := NewGraph()
	g.EnsureNode("a", "a", 1)
	g.EnsureNode("b", "b", 1)
	g.EnsureNode("c", "c", 1)
	g.AddEdge("a", "b", 0.8)

	// 2 edges ends over 3 nodes.
	assert.InDelta(t, 2.0/3.0, g.AverageDegree(), 1e-9)
}

func TestOrphanNodes(t *testing.T) {
	g := NewGraph()
	g.EnsureNode("a", "a", 1)
	g.EnsureNode("b", "b", 1)
	g.EnsureNode("loner", "loner", 1)
	g.AddEdge("a", "b", 0.8)

	orphans := g.OrphanNodes()
	assert.Len(t, orphans, 1)
	assert.Equal(t, "loner", orphans[0].ID)
}
