package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/osshealth/pulse/internal/ingest"
	"github.com/osshealth/pulse/internal/output"
	"github.com/osshealth/pulse/pkg/analyzer/network"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/spf13/cobra"
)

var (
	networkExportFile string
	networkTopN       int
)

var networkCmd = &cobra.Command{
	Use:   "network <edges-file>",
	Short: "Analyze the collaboration network structure",
	Long: `Builds the collaboration graph from an edge list and reports
whole-graph metrics, communities, bus factor, and the top contributors
ranked by a composite centrality score.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().StringVar(&networkExportFile, "export", "", "Write the graph as visualization JSON to this file")
	networkCmd.Flags().IntVar(&networkTopN, "top", 0, "Number of key contributors to list (default: from config)")
	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	edges, err := ingest.LoadEdges(args[0])
	if err != nil {
		return err
	}

	analyzer := network.New(network.WithBridgeThreshold(cfg.Network.BridgeConstraintThreshold))
	analyzer.BuildNetwork(edges)

	topN := networkTopN
	if topN <= 0 {
		topN = cfg.Network.TopContributors
	}

	metrics, err := analyzer.NetworkMetrics()
	if err != nil {
		return err
	}
	communities, err := analyzer.Communities()
	if err != nil {
		return err
	}
	busFactor, err := analyzer.BusFactor(cfg.Network.BusFactorThreshold)
	if err != nil {
		return err
	}
	key, err := analyzer.KeyContributors(topN)
	if err != nil {
		return err
	}

	if networkExportFile != "" {
		export, err := analyzer.Export()
		if err != nil {
			return err
		}
		if err := writeExport(networkExportFile, export); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Graph exported to %s\n", networkExportFile)
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&networkReport{
		metrics:     metrics,
		communities: communities,
		busFactor:   busFactor,
		key:         key,
	})
}

func writeExport(path string, export *models.NetworkExport) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// networkReport renders the combined structural analysis.
type networkReport struct {
	metrics     *models.NetworkMetrics
	communities *models.CommunityResult
	busFactor   int
	key         []models.KeyContributor
}

func (r *networkReport) RenderData() any {
	return map[string]any{
		"metrics":          r.metrics,
		"communities":      r.communities,
		"bus_factor":       r.busFactor,
		"key_contributors": r.key,
	}
}

func (r *networkReport) RenderText(w io.Writer, colored bool) error {
	if err := r.metricsTable().RenderText(w, colored); err != nil {
		return err
	}
	if len(r.key) > 0 {
		if err := keyContributorTable(r.key).RenderText(w, colored); err != nil {
			return err
		}
	}
	r.renderCommunities(w)
	return nil
}

func (r *networkReport) RenderMarkdown(w io.Writer) error {
	if err := r.metricsTable().RenderMarkdown(w); err != nil {
		return err
	}
	if len(r.key) > 0 {
		if err := keyContributorTable(r.key).RenderMarkdown(w); err != nil {
			return err
		}
	}
	r.renderCommunities(w)
	return nil
}

func (r *networkReport) metricsTable() *output.Table {
	m := r.metrics
	rows := [][]string{
		{"Nodes", strconv.Itoa(m.NumNodes)},
		{"Edges", strconv.Itoa(m.NumEdges)},
		{"Density", fmt.Sprintf("%.3f", m.Density)},
		{"Average Degree", fmt.Sprintf("%.2f", m.AverageDegree)},
		{"Average Clustering", fmt.Sprintf("%.3f", m.AverageClustering)},
		{"Components", strconv.Itoa(m.NumComponents)},
		{"Largest Component", strconv.Itoa(m.LargestComponentSize)},
		{"Communities", strconv.Itoa(r.communities.NumCommunities)},
		{"Modularity", fmt.Sprintf("%.3f", r.communities.Modularity)},
		{"Bus Factor", strconv.Itoa(r.busFactor)},
	}
	return output.NewTable("Collaboration Network", []string{"Metric", "Value"}, rows, r.RenderData())
}

func (r *networkReport) renderCommunities(w io.Writer) {
	if r.communities.NumCommunities == 0 {
		return
	}
	fmt.Fprintln(w, "Communities:")
	for i, members := range r.communities.Communities {
		fmt.Fprintf(w, "  %d (%d members): %s\n", i, len(members), strings.Join(members, ", "))
	}
	fmt.Fprintln(w)
}

func keyContributorTable(key []models.KeyContributor) *output.Table {
	rows := make([][]string, len(key))
	for i, k := range key {
		bridge := ""
		if k.IsBridge {
			bridge = "yes"
		}
		rows[i] = []string{
			k.Username,
			fmt.Sprintf("%.3f", k.CompositeScore),
			fmt.Sprintf("%.3f", k.DegreeCentrality),
			fmt.Sprintf("%.3f", k.BetweennessCentrality),
			fmt.Sprintf("%.3f", k.PageRank),
			bridge,
		}
	}
	return output.NewTable("Key Contributors",
		[]string{"Contributor", "Score", "Degree", "Betweenness", "PageRank", "Bridge"},
		rows, key)
}
