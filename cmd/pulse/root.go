package main

import (
	"log/slog"
	"os"

	"github.com/osshealth/pulse/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Open-source community health analytics CLI",
	Long: `Pulse derives decision signals from open-source project activity:
repository health scores, contributor churn-risk predictions, and
collaboration-network structure (centrality, communities, structural
holes, bus factor).

Inputs are materialized metric series and collaboration edge lists
produced by an ingestion pipeline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = config.LoadOrDefault()
		}

		level := slog.LevelWarn
		if verbose || cfg.Output.Verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "Output format: text, json, markdown")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
}
