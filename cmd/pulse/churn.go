package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/osshealth/pulse/internal/ingest"
	"github.com/osshealth/pulse/pkg/analyzer/churn"
	"github.com/osshealth/pulse/pkg/analyzer/network"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/spf13/cobra"
)

var (
	churnEdgesFile   string
	churnContributor string
)

var churnCmd = &cobra.Command{
	Use:   "churn <series-file>",
	Short: "Predict churn risk for a single contributor",
	Long: `Predicts contributor churn risk from a contributor-scoped metric
series. Supplying a collaboration edge list sharpens the network
marginalization sub-score; without one it falls back to neutral.`,
	Args: cobra.ExactArgs(1),
	RunE: runChurn,
}

func init() {
	churnCmd.Flags().String("at", "", "Prediction date (YYYY-MM-DD, default: today)")
	churnCmd.Flags().StringVar(&churnEdgesFile, "edges", "", "Collaboration edge list (JSON)")
	churnCmd.Flags().StringVar(&churnContributor, "contributor", "", "Contributor login (default: from the series file)")
	rootCmd.AddCommand(churnCmd)
}

func runChurn(cmd *cobra.Command, args []string) error {
	at, err := parseAt(cmd)
	if err != nil {
		return err
	}

	series, err := ingest.LoadSeries(args[0])
	if err != nil {
		return err
	}

	contributor := churnContributor
	if contributor == "" {
		contributor = series.Contributor
	}
	if contributor == "" {
		return fmt.Errorf("no contributor: series file %s is not contributor-scoped and --contributor was not given", args[0])
	}

	var net *network.Analyzer
	if churnEdgesFile != "" {
		edges, err := ingest.LoadEdges(churnEdgesFile)
		if err != nil {
			return err
		}
		net = network.New(network.WithBridgeThreshold(cfg.Network.BridgeConstraintThreshold))
		net.BuildNetwork(edges)
	}

	predictor := churn.New(
		churn.WithWindowDays(cfg.Churn.WindowDays),
		churn.WithAlertThresholds(alertThresholds(cfg.Churn.AlertThresholds)),
	)

	window, err := series.TrailingWindow(at, predictor.WindowDays())
	if err != nil {
		return err
	}

	prediction := predictor.Predict(series.Repo, contributor, window, net)

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&churnReport{prediction})
}

// churnReport renders one prediction with its retention suggestions.
type churnReport struct {
	prediction models.ChurnPrediction
}

func (r *churnReport) RenderData() any { return r.prediction }

func (r *churnReport) RenderText(w io.Writer, colored bool) error {
	p := r.prediction
	fmt.Fprintf(w, "Churn risk: %s @ %s\n\n", p.Contributor, p.Repo)
	fmt.Fprintf(w, "  Probability:             %.2f\n", p.ChurnProbability)
	fmt.Fprintf(w, "  Alert level:             %s\n", alertText(p.AlertLevel, colored))
	fmt.Fprintf(w, "  Behavior decay:          %.2f\n", p.BehaviorDecay)
	fmt.Fprintf(w, "  Network marginalization: %.2f\n", p.NetworkMarginalization)
	fmt.Fprintf(w, "  Temporal anomaly:        %.2f\n", p.TemporalAnomaly)
	fmt.Fprintf(w, "  Community engagement:    %.2f\n", p.CommunityEngagement)

	fmt.Fprintln(w, "\nSuggestions:")
	for _, s := range p.RetentionSuggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
	return nil
}

func (r *churnReport) RenderMarkdown(w io.Writer) error {
	p := r.prediction
	fmt.Fprintf(w, "## Churn risk: %s @ %s\n\n", p.Contributor, p.Repo)
	fmt.Fprintf(w, "| Signal | Value |\n| --- | --- |\n")
	fmt.Fprintf(w, "| Probability | %.2f |\n", p.ChurnProbability)
	fmt.Fprintf(w, "| Alert level | %s |\n", p.AlertLevel)
	fmt.Fprintf(w, "| Behavior decay | %.2f |\n", p.BehaviorDecay)
	fmt.Fprintf(w, "| Network marginalization | %.2f |\n", p.NetworkMarginalization)
	fmt.Fprintf(w, "| Temporal anomaly | %.2f |\n", p.TemporalAnomaly)
	fmt.Fprintf(w, "| Community engagement | %.2f |\n\n", p.CommunityEngagement)

	for _, s := range p.RetentionSuggestions {
		fmt.Fprintf(w, "- %s\n", s)
	}
	fmt.Fprintln(w)
	return nil
}

func alertText(level models.AlertLevel, colored bool) string {
	if !colored {
		return level.String()
	}
	switch level {
	case models.AlertRed:
		return color.RedString(level.String())
	case models.AlertOrange, models.AlertYellow:
		return color.YellowString(level.String())
	default:
		return color.GreenString(level.String())
	}
}
