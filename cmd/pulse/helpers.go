package main

import (
	"fmt"
	"time"

	"github.com/osshealth/pulse/internal/output"
	"github.com/osshealth/pulse/pkg/analyzer/health"
	"github.com/osshealth/pulse/pkg/config"
	"github.com/osshealth/pulse/pkg/models"
	"github.com/spf13/cobra"
)

// getFormat resolves the output format: flag first, then config.
func getFormat(cmd *cobra.Command) output.Format {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return output.ParseFormat(f)
	}
	return output.ParseFormat(cfg.Output.Format)
}

// getOutputFile returns the output file path, empty for stdout.
func getOutputFile(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("output")
	return f
}

// newFormatter builds a formatter from the shared flags.
func newFormatter(cmd *cobra.Command) (*output.Formatter, error) {
	return output.NewFormatter(getFormat(cmd), getOutputFile(cmd), cfg.Output.Color)
}

// parseAt parses the --at flag, defaulting to now.
func parseAt(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(models.DateLayout, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at date %q (want YYYY-MM-DD): %w", at, err)
	}
	return t.AddDate(0, 0, 1), nil // window is [start, end): include the named day
}

// healthWeights maps configured weights into the scorer's type.
func healthWeights(w config.HealthWeights) health.Weights {
	return health.Weights{
		Activity:            w.Activity,
		Diversity:           w.Diversity,
		ResponseTime:        w.ResponseTime,
		CodeQuality:         w.CodeQuality,
		Documentation:       w.Documentation,
		CommunityAtmosphere: w.CommunityAtmosphere,
	}
}

// alertThresholds maps configured thresholds into the model type.
func alertThresholds(t config.AlertThresholds) models.AlertThresholds {
	return models.AlertThresholds{Yellow: t.Yellow, Orange: t.Orange, Red: t.Red}
}
