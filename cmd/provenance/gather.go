package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jward/provenance"
	"github.com/spf13/cobra"
)

var (
	flagFull   bool
	flagAssets []string
)

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Gather a provenance report and print it",
	Long:  "Inspects the current environment and prints a provenance report. Summary mode reports loaded modules and local git checkouts; --full adds the executable, platform facts, GPUs, and asset fingerprints.",
	Args:  cobra.NoArgs,
	RunE:  runGather,
}

func init() {
	gatherCmd.Flags().BoolVar(&flagFull, "full", false, "gather the full report")
	gatherCmd.Flags().StringArrayVar(&flagAssets, "asset", nil, "asset file to fingerprint (repeatable, implies nothing without --full)")

	stampCmd.Flags().BoolVar(&flagFull, "full", false, "gather the full report")
	stampCmd.Flags().StringArrayVar(&flagAssets, "asset", nil, "asset file to fingerprint (repeatable)")
}

func runGather(cmd *cobra.Command, args []string) error {
	g, err := buildGatherer()
	if err != nil {
		return err
	}

	report, err := g.Gather(cmd.Context(), provenance.Options{
		Assets: flagAssets,
		Full:   flagFull,
	})
	if err != nil {
		return err
	}

	return outputReport(report)
}

func outputReport(report *provenance.Report) error {
	if flagFormat == "text" {
		formatReportText(os.Stdout, report)
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
