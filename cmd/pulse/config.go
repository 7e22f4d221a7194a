package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the merged configuration after defaults and any loaded
config file, as JSON. Useful for checking what a run would use.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	// Config is not a Renderable, so this always serializes as JSON.
	return formatter.Output(cfg)
}
