package constellation

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/somnia-app/gosomnia/pkg/resonance"
)

var buildAnchor = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

// alignedCluster builds n hits sharing one embedding axis, all created the
// same day, so every pair has weight ~1.0.
func alignedCluster(n int) ([]resonance.Hit, map[string]EntryRef) {
	hits := make([]resonance.Hit, 0, n)
	refs := make(map[string]EntryRef, n)

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("e%d", i)
		hits = append(hits, resonance.Hit{EntryID: id, DecayedScore: 0.9, AgeDays: 1})
		refs[id] = EntryRef{
			ID:        id,
			Text:      "the same dream again",
			CreatedAt: buildAnchor,
			Embedding: []float32{1, 0, 0},
		}
	}
	return hits, refs
}

func TestBuildNodeRecencyHonorsTau(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TauDays = 7

	hits := []resonance.Hit{{EntryID: "e1", DecayedScore: 0.9, AgeDays: 14}}
	refs := map[string]EntryRef{
		"e1": {ID: "e1", Text: "a slow fade", CreatedAt: buildAnchor, Embedding: []float32{1, 0, 0}},
	}

	g := NewBuilder(cfg).Build(hits, refs)
	require.Contains(t, g.Nodes, "e1")

	// nodes and edges share one tau; exp(-14/7), not the default exp(-14/21)
	assert.InDelta(t, math.Exp(-2.0), g.Nodes["e1"].RecencyWeight, 1e-9)
}

func TestBuildRespectsTopK(t *testing.T) {
	hits, refs := alignedCluster(10)

	g := NewBuilder(DefaultConfig()).Build(hits, refs)

	require.Equal(t, 10, g.NodeCount())
	for id := range g.Nodes {
		assert.LessOrEqual(t, g.Degree(id), GraphTopK, "node %s over budget", id)
	}
}

func TestBuildEnforcesEdgeMin(t *testing.T) {
	hits, refs := alignedCluster(4)

	// Rotate one entry to be nearly orthogonal: pairs with it fall below the floor.
	refs["e3"] = EntryRef{
		ID:        "e3",
		Text:      "unrelated dream",
		CreatedAt: buildAnchor,
		Embedding: []float32{0, 1, 0},
	}

	g := NewBuilder(DefaultConfig()).Build(hits, refs)

	for _, e := range g.Edges {
		assert.GreaterOrEqual(t, e.Weight, GraphEdgeMin)
		assert.NotEqual(t, "e3", e.A)
		assert.NotEqual(t, "e3", e.B)
	}
	// e3 stays in the picture as an orphan node.
	orphans := g.OrphanNodes()
	require.Len(t, orphans, 1)
	assert.Equal(t, "e3", orphans[0].ID)
}

func TestBuildAgeGapDecaysEdges(t *testing.T) {
	hits := []resonance.Hit{
		{EntryID: "a", DecayedScore: 0.9, AgeDays: 0},
		{EntryID: "b", DecayedScore: 0.9, AgeDays: 80},
	}
	refs := map[string]EntryRef{
		"a": {ID: "a", CreatedAt: buildAnchor, Embedding: []float32{1, 0}},
		"b": {ID: "b", CreatedAt: buildAnchor.AddDate(0, 0, -80), Embedding: []float32{1, 0}},
	}

	// Identical embeddings, 80 days apart: exp(-80/21) ~ 0.02 kills the edge.
	g := NewBuilder(DefaultConfig()).Build(hits, refs)
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 2, g.NodeCount())
}

func TestBuildRecencyWeights(t *testing.T) {
	hits := []resonance.Hit{
		{EntryID: "fresh", DecayedScore: 0.9, AgeDays: 0},
		{EntryID: "old", DecayedScore: 0.8, AgeDays: 60},
	}
	refs := map[string]EntryRef{
		"fresh": {ID: "fresh", CreatedAt: buildAnchor, Embedding: []float32{1, 0}},
		"old":   {ID: "old", CreatedAt: buildAnchor.AddDate(0, 0, -60), Embedding: []float32{1, 0}},
	}

	g := NewBuilder(DefaultConfig()).Build(hits, refs)

	require.NotNil(t, g.Nodes["fresh"])
	require.NotNil(t, g.Nodes["old"])
	assert.InDelta(t, 1.0, g.Nodes["fresh"].RecencyWeight, 1e-9)
	assert.Greater(t, g.Nodes["fresh"].RecencyWeight, g.Nodes["old"].RecencyWeight)
	assert.Greater(t, g.Nodes["old"].RecencyWeight, 0.0)
}

func TestBuildEmptyHits(t *testing.T) {
	g := NewBuilder(DefaultConfig()).Build(nil, nil)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0.0, g.AverageDegree())
}

func TestBuildSkipsMissingRefs(t *testing.T) {
	hits := []resonance.Hit{{EntryID: "ghost", DecayedScore: 0.9, AgeDays: 1}}
	g := NewBuilder(DefaultConfig()).Build(hits, map[string]EntryRef{})
	assert.Equal(t, 0, g.NodeCount())
}

func TestBuildLabelsFromText(t *testing.T) {
	hits := []resonance.Hit{{EntryID: "a", DecayedScore: 0.9, AgeDays: 1}}
	refs := map[string]EntryRef{
		"a": {ID: "a", Text: "I dreamed of a long stone bridge", CreatedAt: buildAnchor, Embedding: []float32{1}},
	}

	g := NewBuilder(DefaultConfig()).Build(hits, refs)
	require.NotNil(t, g.Nodes["a"])
	assert.Equal(t, "I dreamed of a", g.Nodes["a"].Label)
}

func TestBuildDeterministic(t *testing.T) {
	hits, refs := alignedCluster(8)

	first := NewBuilder(DefaultConfig()).Build(hits, refs)
	for i := 0; i < 10; i++ {
		again := NewBuilder(DefaultConfig()).Build(hits, refs)
		require.Equal(t, first.EdgeCount(), again.EdgeCount())
		for id := range first.Edges {
			require.NotNil(t, again.Edges[id], "edge set must be stable across builds")
		}
	}
}
