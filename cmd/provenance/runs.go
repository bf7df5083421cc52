package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jward/provenance/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagLimit  int
	flagModule string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived provenance runs",
	Long:  "Lists runs recorded by the stamp command, newest first. Use --module to restrict to runs that recorded a given module, optionally pinned to a version with name=version.",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the archived report for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum runs to list (0 for all)")
	runsCmd.Flags().StringVar(&flagModule, "module", "", "filter runs by module, as name or name=version")

	runsCmd.AddCommand(runsShowCmd)
}

func openArchive() (*store.Store, error) {
	dbPath := resolveDBPath()
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no run archive at %s (use stamp to create one)", dbPath)
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return s, nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	var runs []store.Run
	if flagModule != "" {
		runs, err = runsForModule(s, flagModule)
	} else {
		runs, err = s.ListRuns(flagLimit)
	}
	if err != nil {
		return err
	}

	if flagFormat == "text" {
		formatRunsText(os.Stdout, runs)
		return nil
	}

	type runListing struct {
		ID        int64  `json:"id"`
		CreatedAt string `json:"created_at"`
		Mode      string `json:"mode"`
	}
	listings := make([]runListing, 0, len(runs))
	for _, r := range runs {
		listings = append(listings, runListing{
			ID:        r.ID,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
			Mode:      r.Mode,
		})
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding runs: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// runsForModule resolves a name or name=version filter against the module
// projection and loads the matching runs.
func runsForModule(s *store.Store, filter string) ([]store.Run, error) {
	name, value, _ := strings.Cut(filter, "=")

	ids, err := s.RunsWithModule(name, value)
	if err != nil {
		return nil, err
	}
	if flagLimit > 0 && len(ids) > flagLimit {
		ids = ids[:flagLimit]
	}

	runs := make([]store.Run, 0, len(ids))
	for _, id := range ids {
		r, err := s.RunByID(id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			runs = append(runs, *r)
		}
	}
	return runs, nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}

	s, err := openArchive()
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.RunByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %d", id)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, run.Report, "", "  "); err != nil {
		return fmt.Errorf("decoding archived report: %w", err)
	}
	fmt.Println(buf.String())
	return nil
}
