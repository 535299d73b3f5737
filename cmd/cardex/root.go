package main

import (
	"github.com/spf13/cobra"

	"github.com/cardexhq/cardex/internal/api"
	"github.com/cardexhq/cardex/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "cardex",
	Short: "Batch business card extraction with vision models",
	Long: `Cardex turns folders of business card photos into structured contact
rows, written to Google Sheets or a local spreadsheet.

The pipeline:
  - Enumerates card images from Google Drive or a local folder
  - Extracts contact fields with a vision model, retrying transient failures
  - Normalizes phones, emails and confidence scores into a fixed 16-column row
  - Deduplicates contacts and appends them to the configured sheet`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.cardex/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
