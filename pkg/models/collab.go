package models

import "time"

// CollaborationEdge is one observed collaboration between two contributors.
// Direction carries no meaning; edges between the same pair accumulate.
type CollaborationEdge struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Weight    float64   `json:"weight"`
	Timestamp time.Time `json:"timestamp"`
}

// CentralityProfile holds per-node centrality measures. All values are
// normalized to [0, 1] except the raw degree.
type CentralityProfile struct {
	Degree           int     `json:"degree"`
	DegreeCentrality float64 `json:"degree_centrality"`
	Betweenness      float64 `json:"betweenness_centrality"`
	Closeness        float64 `json:"closeness_centrality"`
	PageRank         float64 `json:"pagerank"`
}

// StructuralHoleProfile holds Burt's structural-hole measures for a node.
// A node is a bridge when its constraint falls below the configured
// threshold.
type StructuralHoleProfile struct {
	Constraint    float64 `json:"constraint"`
	EffectiveSize float64 `json:"effective_size"`
	IsBridge      bool    `json:"is_bridge"`
}

// CommunityResult is a community partition of the collaboration graph.
type CommunityResult struct {
	Communities     [][]string     `json:"communities"`
	NodeToCommunity map[string]int `json:"node_to_community"`
	NumCommunities  int            `json:"num_communities"`
	Modularity      float64        `json:"modularity"`
}

// NetworkMetrics summarizes the whole collaboration graph.
type NetworkMetrics struct {
	NumNodes             int     `json:"num_nodes"`
	NumEdges             int     `json:"num_edges"`
	Density              float64 `json:"density"`
	AverageDegree        float64 `json:"average_degree"`
	AverageClustering    float64 `json:"average_clustering"`
	NumComponents        int     `json:"num_components"`
	LargestComponentSize int     `json:"largest_component_size"`
}

// KeyContributor is one entry of the ranked key-contributor list.
type KeyContributor struct {
	Username              string  `json:"username"`
	CompositeScore        float64 `json:"composite_score"`
	DegreeCentrality      float64 `json:"degree_centrality"`
	BetweennessCentrality float64 `json:"betweenness_centrality"`
	PageRank              float64 `json:"pagerank"`
	IsBridge              bool    `json:"is_bridge"`
	Constraint            float64 `json:"constraint"`
}

// ExportNode is one node of an exported network.
type ExportNode struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// ExportEdge is one accumulated edge of an exported network.
type ExportEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// NetworkExport is the visualization-ready form of the built graph. It
// reflects exactly the current graph: rebuilding from the same edge list
// reproduces the same node set and accumulated weights.
type NetworkExport struct {
	Nodes []ExportNode `json:"nodes"`
	Edges []ExportEdge `json:"edges"`
}
