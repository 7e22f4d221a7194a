// Package network builds weighted collaboration graphs and computes
// structural metrics over them: centrality, structural holes, communities,
// bus factor, and a ranked key-contributor list.
//
// Betweenness and constraint are superlinear in graph size; callers should
// bound inputs to roughly 5k nodes / 50k edges before invocation. The
// package performs no internal throttling and completes synchronously.
package network

import (
	"sort"

	"github.com/osshealth/pulse/pkg/models"
)

// Graph is an undirected weighted collaboration graph. Parallel
// observations between the same pair collapse into a single edge whose
// weight is the accumulated sum, regardless of input order or direction.
// Nodes keep first-seen order.
type Graph struct {
	nodes []string
	index map[string]int
	adj   map[string]map[string]float64
	edges int
}

// NewGraph returns an empty collaboration graph.
func NewGraph() *Graph {
	return &Graph{
		index: make(map[string]int),
		adj:   make(map[string]map[string]float64),
	}
}

// AddEdge accumulates one collaboration observation. Missing endpoints are
// created. Self-loops are ignored for edge accounting but still register
// the node.
func (g *Graph) AddEdge(from, to string, weight float64) {
	g.addNode(from)
	g.addNode(to)
	if from == to {
		return
	}
	if _, ok := g.adj[from][to]; !ok {
		g.edges++
	}
	g.adj[from][to] += weight
	g.adj[to][from] += weight
}

func (g *Graph) addNode(id string) {
	if _, ok := g.index[id]; ok {
		return
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.adj[id] = make(map[string]float64)
}

// Has reports whether the node exists in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Nodes returns node identifiers in first-seen order.
func (g *Graph) Nodes() []string { return g.nodes }

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the count of collapsed simple edges.
func (g *Graph) NumEdges() int { return g.edges }

// Degree returns the number of distinct neighbors of a node.
func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// Weight returns the accumulated edge weight between two nodes, zero when
// no edge exists.
func (g *Graph) Weight(u, v string) float64 { return g.adj[u][v] }

// Neighbors returns the weighted adjacency of one node. The returned map
// is the graph's own storage and must not be mutated.
func (g *Graph) Neighbors(id string) map[string]float64 { return g.adj[id] }

// Export returns the visualization form of the graph. Node order is
// first-seen; each collapsed edge appears once, oriented from the
// earlier-seen endpoint.
func (g *Graph) Export() *models.NetworkExport {
	export := &models.NetworkExport{
		Nodes: make([]models.ExportNode, 0, len(g.nodes)),
		Edges: make([]models.ExportEdge, 0, g.edges),
	}
	for _, id := range g.nodes {
		export.Nodes = append(export.Nodes, models.ExportNode{ID: id, Degree: g.Degree(id)})
	}
	for _, u := range g.nodes {
		ui := g.index[u]
		targets := make([]int, 0, len(g.adj[u]))
		for v := range g.adj[u] {
			if vi := g.index[v]; vi > ui {
				targets = append(targets, vi)
			}
		}
		sort.Ints(targets)
		for _, vi := range targets {
			v := g.nodes[vi]
			export.Edges = append(export.Edges, models.ExportEdge{Source: u, Target: v, Weight: g.adj[u][v]})
		}
	}
	return export
}
