package network

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/osshealth/pulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(from, to string, weight float64) models.CollaborationEdge {
	return models.CollaborationEdge{From: from, To: to, Weight: weight}
}

func triangle() []models.CollaborationEdge {
	return []models.CollaborationEdge{
		edge("alice", "bob", 1),
		edge("bob", "carol", 1),
		edge("alice", "carol", 1),
	}
}

func star() []models.CollaborationEdge {
	return []models.CollaborationEdge{
		edge("hub", "a", 1),
		edge("hub", "b", 1),
		edge("hub", "c", 1),
	}
}

func TestAnalyzer_NotBuilt(t *testing.T) {
	a := New()

	_, err := a.Centrality()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.StructuralHoles()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.Communities()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.NetworkMetrics()
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.KeyContributors(5)
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.BusFactor(0.5)
	assert.ErrorIs(t, err, ErrNotBuilt)
	_, err = a.Export()
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestBuildNetwork_AccumulatesWeights(t *testing.T) {
	a := New()
	g := a.BuildNetwork([]models.CollaborationEdge{
		edge("alice", "bob", 3),
		edge("bob", "alice", 2),
	})

	assert.Equal(t, 2, g.NumNodes())
	assert.Equal(t, 1, g.NumEdges())
	assert.InDelta(t, 5.0, g.Weight("alice", "bob"), 1e-9)
	assert.InDelta(t, 5.0, g.Weight("bob", "alice"), 1e-9)
}

func TestBuildNetwork_Rebuild(t *testing.T) {
	a := New()
	a.BuildNetwork(triangle())
	g := a.BuildNetwork(star())

	assert.Equal(t, 4, g.NumNodes())
	assert.False(t, g.Has("alice"))
}

func TestNetworkMetrics_Triangle(t *testing.T) {
	a := New()
	a.BuildNetwork(triangle())

	m, err := a.NetworkMetrics()
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumNodes)
	assert.Equal(t, 3, m.NumEdges)
	assert.InDelta(t, 1.0, m.Density, 1e-9)
	assert.InDelta(t, 2.0, m.AverageDegree, 1e-9)
	assert.InDelta(t, 1.0, m.AverageClustering, 1e-9)
	assert.Equal(t, 1, m.NumComponents)
	assert.Equal(t, 3, m.LargestComponentSize)
}

func TestNetworkMetrics_EmptyGraph(t *testing.T) {
	a := New()
	a.BuildNetwork(nil)

	m, err := a.NetworkMetrics()
	require.NoError(t, err)

	assert.Equal(t, 0, m.NumNodes)
	assert.Equal(t, 0, m.NumEdges)
	assert.Zero(t, m.Density)
	assert.Zero(t, m.AverageDegree)
}

func TestCentrality_Path(t *testing.T) {
	a := New()
	a.BuildNetwork([]models.CollaborationEdge{
		edge("alice", "bob", 1),
		edge("bob", "carol", 1),
	})

	centrality, err := a.Centrality()
	require.NoError(t, err)
	require.Len(t, centrality, 3)

	// Middle node sits on every shortest path between the endpoints.
	assert.InDelta(t, 1.0, centrality["bob"].Betweenness, 1e-9)
	assert.InDelta(t, 0.0, centrality["alice"].Betweenness, 1e-9)

	assert.Equal(t, 2, centrality["bob"].Degree)
	assert.InDelta(t, 1.0, centrality["bob"].DegreeCentrality, 1e-9)
	assert.InDelta(t, 0.5, centrality["alice"].DegreeCentrality, 1e-9)

	assert.InDelta(t, 1.0, centrality["bob"].Closeness, 1e-9)
	assert.Greater(t, centrality["bob"].PageRank, centrality["alice"].PageRank)
}

func TestStructuralHoles_Star(t *testing.T) {
	a := New()
	a.BuildNetwork(star())

	holes, err := a.StructuralHoles()
	require.NoError(t, err)

	hub := holes["hub"]
	assert.InDelta(t, 1.0/3.0, hub.Constraint, 1e-9)
	assert.True(t, hub.IsBridge)
	assert.InDelta(t, 3.0, hub.EffectiveSize, 1e-9)

	leaf := holes["a"]
	assert.InDelta(t, 1.0, leaf.Constraint, 1e-9)
	assert.False(t, leaf.IsBridge)
}

func TestStructuralHoles_TriangleNotBridges(t *testing.T) {
	a := New()
	a.BuildNetwork(triangle())

	holes, err := a.StructuralHoles()
	require.NoError(t, err)

	for node, h := range holes {
		assert.GreaterOrEqual(t, h.Constraint, 0.0, node)
		assert.LessOrEqual(t, h.Constraint, 1.0, node)
		assert.False(t, h.IsBridge, node)
	}
}

// Zero-weight edges break the proportional-weight computation, which must
// degrade to the betweenness proxy instead of failing.
func TestStructuralHoles_ProxyOnZeroWeights(t *testing.T) {
	a := New()
	a.BuildNetwork([]models.CollaborationEdge{
		edge("alice", "bob", 0),
		edge("bob", "carol", 0),
	})

	holes, err := a.StructuralHoles()
	require.NoError(t, err)
	require.Len(t, holes, 3)

	// Middle node: betweenness 1.0, so proxy constraint is 0.
	assert.InDelta(t, 0.0, holes["bob"].Constraint, 1e-9)
	assert.True(t, holes["bob"].IsBridge)
	assert.InDelta(t, 2.0, holes["bob"].EffectiveSize, 1e-9)

	assert.InDelta(t, 1.0, holes["alice"].Constraint, 1e-9)
	assert.False(t, holes["alice"].IsBridge)
}

func TestCommunities_TwoCliques(t *testing.T) {
	edges := append(triangle(),
		edge("dave", "erin", 1),
		edge("erin", "frank", 1),
		edge("dave", "frank", 1),
		edge("carol", "dave", 0.1), // weak link between cliques
	)
	a := New()
	a.BuildNetwork(edges)

	result, err := a.Communities()
	require.NoError(t, err)

	assert.Equal(t, len(result.Communities), result.NumCommunities)
	assert.GreaterOrEqual(t, result.NumCommunities, 2)
	assert.Len(t, result.NodeToCommunity, 6)

	// Clique members should land in the same community.
	assert.Equal(t, result.NodeToCommunity["alice"], result.NodeToCommunity["bob"])
	assert.Equal(t, result.NodeToCommunity["dave"], result.NodeToCommunity["erin"])
	assert.Greater(t, result.Modularity, 0.0)
}

// Self-loops register nodes but no collapsed edges; the partition must
// still be well formed with a finite modularity.
func TestCommunities_EdgelessGraph(t *testing.T) {
	a := New()
	a.BuildNetwork([]models.CollaborationEdge{
		edge("alice", "alice", 1),
		edge("bob", "bob", 1),
	})

	result, err := a.Communities()
	require.NoError(t, err)

	assert.Equal(t, 2, result.NumCommunities)
	assert.Zero(t, result.Modularity)
	assert.False(t, math.IsNaN(result.Modularity))
	assert.NotEqual(t, result.NodeToCommunity["alice"], result.NodeToCommunity["bob"])

	// The whole result must survive the JSON output contract.
	_, err = json.Marshal(result)
	require.NoError(t, err)
}

func TestKeyContributors(t *testing.T) {
	a := New()
	a.BuildNetwork(star())

	key, err := a.KeyContributors(2)
	require.NoError(t, err)
	require.Len(t, key, 2)

	assert.Equal(t, "hub", key[0].Username)
	assert.Greater(t, key[0].CompositeScore, key[1].CompositeScore)
}

func TestKeyContributors_TopNBounds(t *testing.T) {
	a := New()
	a.BuildNetwork(triangle())

	all, err := a.KeyContributors(100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := a.KeyContributors(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBusFactor(t *testing.T) {
	a := New()
	a.BuildNetwork(star())

	// The hub alone holds half the total degree centrality.
	bf, err := a.BusFactor(0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, bf)

	// A higher threshold pulls in leaves too.
	bf, err = a.BusFactor(0.9)
	require.NoError(t, err)
	assert.Greater(t, bf, 1)
}

func TestBusFactor_EmptyGraph(t *testing.T) {
	a := New()
	a.BuildNetwork(nil)

	bf, err := a.BusFactor(0.5)
	require.NoError(t, err)
	assert.Zero(t, bf)
}

func TestBusFactor_Monotonic(t *testing.T) {
	a := New()
	a.BuildNetwork(append(triangle(), star()...))

	prev := 0
	for _, threshold := range []float64{0.2, 0.4, 0.6, 0.8, 1.0} {
		bf, err := a.BusFactor(threshold)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, bf, prev)
		prev = bf
	}
}

func TestExport(t *testing.T) {
	a := New()
	a.BuildNetwork(triangle())

	export, err := a.Export()
	require.NoError(t, err)

	assert.Len(t, export.Nodes, 3)
	assert.Len(t, export.Edges, 3)
	for _, e := range export.Edges {
		assert.InDelta(t, 1.0, e.Weight, 1e-9)
		assert.NotEqual(t, e.Source, e.Target)
	}
}
