package network

import (
	"errors"
	"sort"

	"github.com/osshealth/pulse/pkg/models"
)

// ErrNotBuilt signals a query on an analyzer whose network has not been
// built. This is programmer misuse, not a data-absence condition.
var ErrNotBuilt = errors.New("collaboration network not built: call BuildNetwork first")

// Composite score weights for key-contributor ranking.
const (
	keyWeightDegree        = 0.3
	keyWeightBetweenness   = 0.3
	keyWeightPageRank      = 0.2
	keyWeightEffectiveSize = 0.2
)

// proxyBridgeBetweenness is the betweenness cutoff for the fallback bridge
// flag when constraint computation fails.
const proxyBridgeBetweenness = 0.1

// DefaultBridgeThreshold flags nodes as bridges when their constraint
// falls below it.
const DefaultBridgeThreshold = 0.5

// DefaultBusFactorThreshold is the cumulative centrality share a minimal
// key-person set must cover.
const DefaultBusFactorThreshold = 0.5

// Analyzer owns one collaboration graph and answers structural queries
// about it. An instance is not safe for concurrent use: BuildNetwork
// discards and replaces the owned graph. Use one analyzer per logical
// analysis request.
type Analyzer struct {
	engine          Engine
	bridgeThreshold float64
	graph           *Graph
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithEngine swaps the graph algorithm backend.
func WithEngine(e Engine) Option {
	return func(a *Analyzer) {
		a.engine = e
	}
}

// WithBridgeThreshold sets the constraint cutoff below which a node counts
// as a bridge.
func WithBridgeThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t > 0 {
			a.bridgeThreshold = t
		}
	}
}

// New creates a collaboration network analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		engine:          NewGonumEngine(),
		bridgeThreshold: DefaultBridgeThreshold,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildNetwork constructs the owned graph from collaboration edges,
// discarding any previously built graph. Edge weights between the same
// pair accumulate commutatively, so input order is irrelevant.
func (a *Analyzer) BuildNetwork(edges []models.CollaborationEdge) *Graph {
	g := NewGraph()
	for _, e := range edges {
		g.AddEdge(e.From, e.To, e.Weight)
	}
	a.graph = g
	return g
}

// Graph returns the currently built graph, or nil before BuildNetwork.
func (a *Analyzer) Graph() *Graph { return a.graph }

// Centrality returns degree, betweenness, closeness, and pagerank for
// every node.
func (a *Analyzer) Centrality() (map[string]models.CentralityProfile, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}
	return a.engine.Centrality(a.graph), nil
}

// StructuralHoles returns Burt's constraint and effective size per node.
// When the exact computation fails on a pathological graph, a documented
// betweenness proxy substitutes: constraint = 1 - betweenness, effective
// size = betweenness * degree, bridge when betweenness > 0.1.
func (a *Analyzer) StructuralHoles() (map[string]models.StructuralHoleProfile, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}

	constraint, cErr := a.engine.Constraint(a.graph)
	effectiveSize, eErr := a.engine.EffectiveSize(a.graph)
	if cErr != nil || eErr != nil {
		return a.structuralHoleProxy(), nil
	}

	holes := make(map[string]models.StructuralHoleProfile, a.graph.NumNodes())
	for _, node := range a.graph.Nodes() {
		c := constraint[node]
		holes[node] = models.StructuralHoleProfile{
			Constraint:    c,
			EffectiveSize: effectiveSize[node],
			IsBridge:      c < a.bridgeThreshold,
		}
	}
	return holes, nil
}

func (a *Analyzer) structuralHoleProxy() map[string]models.StructuralHoleProfile {
	centrality := a.engine.Centrality(a.graph)
	holes := make(map[string]models.StructuralHoleProfile, a.graph.NumNodes())
	for _, node := range a.graph.Nodes() {
		b := centrality[node].Betweenness
		holes[node] = models.StructuralHoleProfile{
			Constraint:    1 - b,
			EffectiveSize: b * float64(a.graph.Degree(node)),
			IsBridge:      b > proxyBridgeBetweenness,
		}
	}
	return holes
}

// Communities runs Louvain community detection. Algorithm failures yield
// an empty result rather than an error.
func (a *Analyzer) Communities() (*models.CommunityResult, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}

	groups, modularity, err := a.engine.Communities(a.graph)
	if err != nil {
		return &models.CommunityResult{
			Communities:     [][]string{},
			NodeToCommunity: map[string]int{},
		}, nil
	}

	nodeToCommunity := make(map[string]int)
	for id, members := range groups {
		for _, node := range members {
			nodeToCommunity[node] = id
		}
	}

	return &models.CommunityResult{
		Communities:     groups,
		NodeToCommunity: nodeToCommunity,
		NumCommunities:  len(groups),
		Modularity:      modularity,
	}, nil
}

// NetworkMetrics returns whole-graph structural metrics. Sub-metric
// failures yield zero defaults inside the engine, never an error here.
func (a *Analyzer) NetworkMetrics() (*models.NetworkMetrics, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}
	m := a.engine.Metrics(a.graph)
	return &m, nil
}

// KeyContributors ranks nodes by a fixed-weight composite of degree
// centrality, betweenness, pagerank, and effective size, returning at most
// topN entries. Ties keep first-seen node order.
func (a *Analyzer) KeyContributors(topN int) ([]models.KeyContributor, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}

	centrality := a.engine.Centrality(a.graph)
	holes, err := a.StructuralHoles()
	if err != nil {
		return nil, err
	}

	contributors := make([]models.KeyContributor, 0, a.graph.NumNodes())
	for _, node := range a.graph.Nodes() {
		cent := centrality[node]
		hole := holes[node]
		contributors = append(contributors, models.KeyContributor{
			Username: node,
			CompositeScore: keyWeightDegree*cent.DegreeCentrality +
				keyWeightBetweenness*cent.Betweenness +
				keyWeightPageRank*cent.PageRank +
				keyWeightEffectiveSize*hole.EffectiveSize,
			DegreeCentrality:      cent.DegreeCentrality,
			BetweennessCentrality: cent.Betweenness,
			PageRank:              cent.PageRank,
			IsBridge:              hole.IsBridge,
			Constraint:            hole.Constraint,
		})
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].CompositeScore > contributors[j].CompositeScore
	})

	if topN < 0 {
		topN = 0
	}
	if topN < len(contributors) {
		contributors = contributors[:topN]
	}
	return contributors, nil
}

// BusFactor returns the minimum number of top-centrality nodes whose
// cumulative degree-centrality share reaches the threshold. An empty or
// edgeless graph has bus factor zero.
func (a *Analyzer) BusFactor(threshold float64) (int, error) {
	if a.graph == nil {
		return 0, ErrNotBuilt
	}

	centrality := a.engine.Centrality(a.graph)
	nodes := a.graph.Nodes()

	shares := make([]float64, len(nodes))
	var total float64
	for i, node := range nodes {
		shares[i] = centrality[node].DegreeCentrality
		total += shares[i]
	}
	if total == 0 {
		return 0, nil
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i] > shares[j] })

	var cumulative float64
	for count, share := range shares {
		cumulative += share
		if cumulative/total >= threshold {
			return count + 1, nil
		}
	}
	return len(shares), nil
}

// Export returns the current graph in visualization form.
func (a *Analyzer) Export() (*models.NetworkExport, error) {
	if a.graph == nil {
		return nil, ErrNotBuilt
	}
	return a.graph.Export(), nil
}
