package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/osshealth/pulse/internal/ingest"
	"github.com/osshealth/pulse/internal/output"
	"github.com/osshealth/pulse/internal/progress"
	"github.com/osshealth/pulse/pkg/analyzer/churn"
	"github.com/osshealth/pulse/pkg/analyzer/health"
	"github.com/osshealth/pulse/pkg/analyzer/network"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

var (
	analyzeEdgesFile  string
	analyzeContribDir string
	analyzeTopN       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <series-file>",
	Short: "Run the full analysis: health, network, and churn risk",
	Long: `Runs health scoring and collaboration-network analysis, then scans
the top contributors for churn risk. Per-contributor metric series are
read from the --contributors directory when present (<login>.json);
contributors without a series are scored from network position alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("at", "", "Analysis date (YYYY-MM-DD, default: today)")
	analyzeCmd.Flags().StringVar(&analyzeEdgesFile, "edges", "", "Collaboration edge list (JSON)")
	analyzeCmd.Flags().StringVar(&analyzeContribDir, "contributors", "", "Directory of per-contributor series files")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top", 0, "Number of key contributors to scan (default: from config)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	var net *network.Analyzer
	if analyzeEdgesFile != "" {
		spinner := progress.NewSpinner("Building collaboration network")
		edges, err := ingest.LoadEdges(analyzeEdgesFile)
		if err != nil {
			spinner.FinishError(err)
			return err
		}
		net = network.New(network.WithBridgeThreshold(cfg.Network.BridgeConstraintThreshold))
		net.BuildNetwork(edges)
		spinner.FinishSuccess()
	}

	topN := analyzeTopN
	if topN <= 0 {
		topN = cfg.Network.TopContributors
	}

	report := &models.AnalysisReport{
		Repo:        series.Repo,
		GeneratedAt: time.Now().UTC(),
	}

	wg := conc.NewWaitGroup()
	wg.Go(func() {
		score := scorer.Assess(series.Repo, at, window)
		report.Health = &score
	})
	if net != nil {
		wg.Go(func() {
			metrics, _ := net.NetworkMetrics()
			report.Network = metrics
		})
		wg.Go(func() {
			communities, _ := net.Communities()
			report.Communities = communities
		})
		wg.Go(func() {
			bf, _ := net.BusFactor(cfg.Network.BusFactorThreshold)
			report.BusFactor = bf
		})
	}
	wg.Wait()

	if net != nil {
		key, err := net.KeyContributors(topN)
		if err != nil {
			return err
		}
		report.KeyContributors = key
		report.Predictions = scanChurn(series.Repo, at, key, net)
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(&analysisReport{report})
}

// scanChurn predicts churn for each key contributor. Missing per-contributor
// series fall back to an empty window, which scores neutral decay.
func scanChurn(repo string, at time.Time, key []models.KeyContributor, net *network.Analyzer) []models.ChurnPrediction {
	if len(key) == 0 {
		return nil
	}

	predictor := churn.New(
		churn.WithWindowDays(cfg.Churn.WindowDays),
		churn.WithAlertThresholds(alertThresholds(cfg.Churn.AlertThresholds)),
	)

	tracker := progress.NewTracker("Scanning contributors", len(key))
	predictions := make([]models.ChurnPrediction, 0, len(key))
	for _, k := range key {
		window := contributorWindow(k.Username, at, predictor.WindowDays())
		predictions = append(predictions, predictor.Predict(repo, k.Username, window, net))
		tracker.Tick()
	}
	tracker.FinishSuccess()
	return predictions
}

func contributorWindow(login string, at time.Time, days int) models.ActivityWindow {
	if analyzeContribDir == "" {
		return models.ActivityWindow{}
	}
	path := filepath.Join(analyzeContribDir, login+".json")
	if _, err := os.Stat(path); err != nil {
		return models.ActivityWindow{}
	}
	series, err := ingest.LoadSeries(path)
	if err != nil {
		slog.Warn("skipping contributor series", "path", path, "error", err)
		return models.ActivityWindow{}
	}
	window, err := series.TrailingWindow(at, days)
	if err != nil {
		slog.Warn("skipping contributor series", "path", path, "error", err)
		return models.ActivityWindow{}
	}
	return window
}

// analysisReport renders the aggregate analysis.
type analysisReport struct {
	report *models.AnalysisReport
}

func (r *analysisReport) RenderData() any { return r.report }

func (r *analysisReport) RenderText(w io.Writer, colored bool) error {
	rep := r.report
	if rep.Health != nil {
		if err := healthTable(*rep.Health).RenderText(w, colored); err != nil {
			return err
		}
	}
	if rep.Network != nil {
		nr := &networkReport{
			metrics:     rep.Network,
			communities: rep.Communities,
			busFactor:   rep.BusFactor,
			key:         rep.KeyContributors,
		}
		if err := nr.RenderText(w, colored); err != nil {
			return err
		}
	}
	if len(rep.Predictions) > 0 {
		if err := predictionTable(rep.Predictions, colored).RenderText(w, colored); err != nil {
			return err
		}
	}
	return nil
}

func (r *analysisReport) RenderMarkdown(w io.Writer) error {
	rep := r.report
	if rep.Health != nil {
		if err := healthTable(*rep.Health).RenderMarkdown(w); err != nil {
			return err
		}
	}
	if rep.Network != nil {
		nr := &networkReport{
			metrics:     rep.Network,
			communities: rep.Communities,
			busFactor:   rep.BusFactor,
			key:         rep.KeyContributors,
		}
		if err := nr.RenderMarkdown(w); err != nil {
			return err
		}
	}
	if len(rep.Predictions) > 0 {
		if err := predictionTable(rep.Predictions, false).RenderMarkdown(w); err != nil {
			return err
		}
	}
	return nil
}

func predictionTable(predictions []models.ChurnPrediction, colored bool) *output.Table {
	rows := make([][]string, len(predictions))
	for i, p := range predictions {
		rows[i] = []string{
			p.Contributor,
			fmt.Sprintf("%.2f", p.ChurnProbability),
			alertText(p.AlertLevel, colored),
			fmt.Sprintf("%.2f", p.BehaviorDecay),
			fmt.Sprintf("%.2f", p.NetworkMarginalization),
		}
	}
	return output.NewTable("Churn Risk",
		[]string{"Contributor", "Probability", "Alert", "Decay", "Marginalization"},
		rows, predictions)
}
