package main

import (
	"fmt"

	"github.com/osshealth/pulse/internal/ingest"
	"github.com/osshealth/pulse/internal/output"
	"github.com/osshealth/pulse/pkg/analyzer/health"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health <series-file>",
	Short: "Score repository health from a metric series file",
	Long: `Scores six health dimensions (activity, contributor diversity,
issue response time, code quality, documentation, community atmosphere)
over the trailing analysis window and classifies the lifecycle stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().String("at", "", "Assessment date (YYYY-MM-DD, default: today)")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	at, err := parseAt(cmd)
	if err != nil {
		return err
	}

	series, err := ingest.LoadSeries(args[0])
	if err != nil {
		return err
	}

	scorer, err := health.New(
		health.WithWeights(healthWeights(cfg.Health.Weights)),
		health.WithWindowDays(cfg.Analysis.WindowDays),
	)
	if err != nil {
		return err
	}

	window, err := series.TrailingWindow(at, scorer.WindowDays())
	if err != nil {
		return err
	}

	score := scorer.Assess(series.Repo, at, window)

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(healthTable(score))
}

func healthTable(score models.HealthScore) *output.Table {
	rows := [][]string{
		{"Activity", fmt.Sprintf("%.1f", score.ActivityScore)},
		{"Diversity", fmt.Sprintf("%.1f", score.DiversityScore)},
		{"Response Time", fmt.Sprintf("%.1f", score.ResponseTimeScore)},
		{"Code Quality", fmt.Sprintf("%.1f", score.CodeQualityScore)},
		{"Documentation", fmt.Sprintf("%.1f", score.DocumentationScore)},
		{"Community Atmosphere", fmt.Sprintf("%.1f", score.CommunityAtmosphere)},
		{"Overall", fmt.Sprintf("%.1f", score.OverallScore)},
		{"Lifecycle Stage", score.LifecycleStage.String()},
	}
	title := fmt.Sprintf("Health: %s", score.Repo)
	return output.NewTable(title, []string{"Dimension", "Score"}, rows, score)
}
