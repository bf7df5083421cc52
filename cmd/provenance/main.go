package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jward/provenance"
	"github.com/jward/provenance/config"
	"github.com/jward/provenance/internal/peek"
	"github.com/jward/provenance/scripts"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagDB     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "provenance",
	Short:         "Reproducibility metadata for experiment runs",
	Long:          "Provenance inspects the running environment (loaded modules, local git checkouts, platform and GPU facts, asset fingerprints) and produces a report suitable for stamping onto experiment outputs.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "run archive path (default: .provenance/runs.db relative to repo root)")

	rootCmd.AddCommand(gatherCmd)
	rootCmd.AddCommand(stampCmd)
	rootCmd.AddCommand(runsCmd)
}

// buildGatherer wires the gatherer from the user configuration: named
// path roots from the config file plus the embedded peek scripts.
func buildGatherer() (*provenance.Gatherer, error) {
	var roots []provenance.Root
	if cfg, err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	} else if paths := cfg.StringMap("paths"); len(paths) > 0 {
		names := make([]string, 0, len(paths))
		for name := range paths {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			roots = append(roots, provenance.Root{Name: name, Path: paths[name]})
		}
	}

	return provenance.New(
		provenance.WithRoots(roots...),
		provenance.WithPeeker(peek.NewRuntime("", peek.WithFS(scripts.FS))),
	)
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the archive path from the --db flag or the default.
func resolveDBPath() string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
	} else {
		flagDB = filepath.Join(".provenance", "runs.db")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return flagDB
	}
	return filepath.Join(findRepoRoot(cwd), flagDB)
}
