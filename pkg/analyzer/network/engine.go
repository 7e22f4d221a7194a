package network

import (
	"fmt"
	"math"

	"github.com/osshealth/pulse/pkg/models"
	"gonum.org/v1/gonum/graph/community"
	gonetwork "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Engine computes graph algorithms over a collaboration graph. It exposes
// exactly the operations the analyzer needs so the backend is swappable
// without touching analytic logic.
type Engine interface {
	// Centrality returns degree, betweenness, closeness, and pagerank per
	// node. Pagerank failures degrade to all-zero values.
	Centrality(g *Graph) map[string]models.CentralityProfile

	// Constraint returns Burt's constraint per node, clipped to [0, 1].
	Constraint(g *Graph) (map[string]float64, error)

	// EffectiveSize returns Burt's effective size per node.
	EffectiveSize(g *Graph) (map[string]float64, error)

	// Communities returns a Louvain partition and its modularity.
	Communities(g *Graph) ([][]string, float64, error)

	// Metrics returns whole-graph structural metrics.
	Metrics(g *Graph) models.NetworkMetrics
}

// gonumEngine is the default Engine, backed by gonum's graph algorithms
// with hand-rolled fills for what gonum does not provide (closeness
// normalization, Burt's measures, clustering coefficients).
type gonumEngine struct{}

// NewGonumEngine returns the default gonum-backed engine.
func NewGonumEngine() Engine { return gonumEngine{} }

// gonumGraphs holds the gonum representation and the string<->int64 id
// mappings. PageRank needs a directed view, so every collapsed edge is
// mirrored in both directions there.
type gonumGraphs struct {
	undirected *simple.WeightedUndirectedGraph
	directed   *simple.WeightedDirectedGraph
	idOf       map[string]int64
	nameOf     map[int64]string
}

func toGonum(g *Graph) *gonumGraphs {
	gg := &gonumGraphs{
		undirected: simple.NewWeightedUndirectedGraph(0, 0),
		directed:   simple.NewWeightedDirectedGraph(0, 0),
		idOf:       make(map[string]int64, g.NumNodes()),
		nameOf:     make(map[int64]string, g.NumNodes()),
	}

	for i, name := range g.Nodes() {
		id := int64(i)
		gg.idOf[name] = id
		gg.nameOf[id] = name
		gg.undirected.AddNode(simple.Node(id))
		gg.directed.AddNode(simple.Node(id))
	}

	for _, u := range g.Nodes() {
		ui := gg.idOf[u]
		for v, w := range g.Neighbors(u) {
			vi := gg.idOf[v]
			if ui < vi {
				gg.undirected.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ui), T: simple.Node(vi), W: w})
			}
			gg.directed.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(ui), T: simple.Node(vi), W: w})
		}
	}

	return gg
}

func (gonumEngine) Centrality(g *Graph) map[string]models.CentralityProfile {
	n := g.NumNodes()
	profiles := make(map[string]models.CentralityProfile, n)
	if n == 0 {
		return profiles
	}

	gg := toGonum(g)

	// Brandes betweenness counts source->target and target->source
	// separately, so (n-1)(n-2) is the undirected normalization factor.
	betweenness := gonetwork.Betweenness(gg.undirected)
	betweennessNorm := float64(n-1) * float64(n-2)

	pagerank := safePageRank(gg)
	closeness := closenessByBFS(g)

	for _, name := range g.Nodes() {
		id := gg.idOf[name]
		degree := g.Degree(name)

		var degreeCentrality, betweennessCentrality float64
		if n > 1 {
			degreeCentrality = float64(degree) / float64(n-1)
		}
		if betweennessNorm > 0 {
			betweennessCentrality = clip01(betweenness[id] / betweennessNorm)
		}

		profiles[name] = models.CentralityProfile{
			Degree:           degree,
			DegreeCentrality: degreeCentrality,
			Betweenness:      betweennessCentrality,
			Closeness:        closeness[name],
			PageRank:         pagerank[id],
		}
	}

	return profiles
}

// safePageRank degrades degenerate graphs to all-zero ranks instead of
// propagating gonum panics.
func safePageRank(gg *gonumGraphs) (ranks map[int64]float64) {
	defer func() {
		if r := recover(); r != nil {
			ranks = make(map[int64]float64)
		}
	}()
	if len(gg.idOf) == 0 {
		return make(map[int64]float64)
	}
	return gonetwork.PageRank(gg.directed, 0.85, 1e-6)
}

// closenessByBFS computes hop-based closeness centrality with the
// Wasserman-Faust correction for disconnected graphs, keeping results in
// [0, 1].
func closenessByBFS(g *Graph) map[string]float64 {
	n := g.NumNodes()
	closeness := make(map[string]float64, n)

	dist := make(map[string]int, n)
	queue := make([]string, 0, n)

	for _, source := range g.Nodes() {
		for k := range dist {
			delete(dist, k)
		}
		dist[source] = 0
		queue = append(queue[:0], source)

		total := 0
		reached := 0
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for neighbor := range g.Neighbors(current) {
				if _, seen := dist[neighbor]; !seen {
					dist[neighbor] = dist[current] + 1
					total += dist[neighbor]
					reached++
					queue = append(queue, neighbor)
				}
			}
		}

		if reached == 0 || total == 0 || n < 2 {
			closeness[source] = 0
			continue
		}
		c := float64(reached) / float64(total)
		closeness[source] = clip01(c * float64(reached) / float64(n-1))
	}

	return closeness
}

func (gonumEngine) Constraint(g *Graph) (map[string]float64, error) {
	constraint := make(map[string]float64, g.NumNodes())

	for _, node := range g.Nodes() {
		neighbors := g.Neighbors(node)
		if len(neighbors) == 0 {
			// Isolates occupy no structural holes at all.
			constraint[node] = 1.0
			continue
		}

		p, err := proportionalWeights(g, node)
		if err != nil {
			return nil, err
		}

		var total float64
		for j := range neighbors {
			indirect := 0.0
			for q := range neighbors {
				if q == j {
					continue
				}
				pq, err := proportionalWeights(g, q)
				if err != nil {
					return nil, err
				}
				indirect += p[q] * pq[j]
			}
			direct := p[j] + indirect
			total += direct * direct
		}
		constraint[node] = clip01(total)
	}

	return constraint, nil
}

func (gonumEngine) EffectiveSize(g *Graph) (map[string]float64, error) {
	size := make(map[string]float64, g.NumNodes())

	for _, node := range g.Nodes() {
		neighbors := g.Neighbors(node)
		if len(neighbors) == 0 {
			size[node] = 0
			continue
		}

		p, err := proportionalWeights(g, node)
		if err != nil {
			return nil, err
		}

		var effective float64
		for j := range neighbors {
			redundancy := 0.0
			maxJ := maxNeighborWeight(g, j)
			if maxJ > 0 {
				for q := range neighbors {
					if q == j {
						continue
					}
					redundancy += p[q] * (g.Weight(j, q) / maxJ)
				}
			}
			effective += 1 - redundancy
		}
		size[node] = effective
	}

	return size, nil
}

// proportionalWeights returns p_ij = w_ij / sum_k w_ik for every neighbor j
// of node i.
func proportionalWeights(g *Graph, node string) (map[string]float64, error) {
	neighbors := g.Neighbors(node)
	var sum float64
	for _, w := range neighbors {
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("node %q has non-positive total edge weight %.4f", node, sum)
	}
	p := make(map[string]float64, len(neighbors))
	for j, w := range neighbors {
		p[j] = w / sum
	}
	return p, nil
}

func maxNeighborWeight(g *Graph, node string) float64 {
	var max float64
	for _, w := range g.Neighbors(node) {
		if w > max {
			max = w
		}
	}
	return max
}

func (gonumEngine) Communities(g *Graph) (groups [][]string, modularity float64, err error) {
	if g.NumNodes() == 0 {
		return nil, 0, nil
	}

	// Modularity is undefined without edge weight; an edgeless graph is
	// every node in its own community.
	if g.NumEdges() == 0 {
		groups = make([][]string, 0, g.NumNodes())
		for _, node := range g.Nodes() {
			groups = append(groups, []string{node})
		}
		sortCommunities(groups)
		return groups, 0, nil
	}

	defer func() {
		if r := recover(); r != nil {
			groups, modularity = nil, 0
			err = fmt.Errorf("community detection failed: %v", r)
		}
	}()

	gg := toGonum(g)
	reduced := community.Modularize(gg.undirected, 1.0, nil)
	detected := reduced.Communities()
	modularity = community.Q(gg.undirected, detected, 1.0)
	if math.IsNaN(modularity) {
		modularity = 0
	}

	groups = make([][]string, 0, len(detected))
	for _, members := range detected {
		names := make([]string, 0, len(members))
		for _, node := range members {
			names = append(names, gg.nameOf[node.ID()])
		}
		sortByFirstSeen(g, names)
		groups = append(groups, names)
	}
	sortCommunities(groups)

	return groups, modularity, nil
}

func (gonumEngine) Metrics(g *Graph) models.NetworkMetrics {
	n := g.NumNodes()
	m := models.NetworkMetrics{
		NumNodes: n,
		NumEdges: g.NumEdges(),
	}
	if n == 0 {
		return m
	}

	if n > 1 {
		m.Density = 2 * float64(g.NumEdges()) / (float64(n) * float64(n-1))
	}
	m.AverageDegree = 2 * float64(g.NumEdges()) / float64(n)
	m.AverageClustering = averageClustering(g)

	gg := toGonum(g)
	components := topo.ConnectedComponents(gg.undirected)
	m.NumComponents = len(components)
	for _, comp := range components {
		if len(comp) > m.LargestComponentSize {
			m.LargestComponentSize = len(comp)
		}
	}

	return m
}

// averageClustering computes the mean local clustering coefficient.
func averageClustering(g *Graph) float64 {
	n := g.NumNodes()
	if n == 0 {
		return 0
	}

	var sum float64
	for _, node := range g.Nodes() {
		neighbors := g.Neighbors(node)
		k := len(neighbors)
		if k < 2 {
			continue
		}

		links := 0
		list := make([]string, 0, k)
		for v := range neighbors {
			list = append(list, v)
		}
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if g.Weight(list[i], list[j]) > 0 {
					links++
				}
			}
		}
		sum += 2 * float64(links) / (float64(k) * float64(k-1))
	}

	return sum / float64(n)
}

// sortByFirstSeen orders node names by their insertion order in the graph.
func sortByFirstSeen(g *Graph, names []string) {
	idx := g.index
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && idx[names[j]] < idx[names[j-1]]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

// sortCommunities orders communities by size descending, then by leading
// member, so community ids are stable for a given partition.
func sortCommunities(groups [][]string) {
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && communityLess(groups[j], groups[j-1]); j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
}

func communityLess(a, b []string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	if len(a) == 0 {
		return false
	}
	return a[0] < b[0]
}

func clip01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
