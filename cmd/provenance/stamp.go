package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jward/provenance"
	"github.com/jward/provenance/internal/store"
	"github.com/spf13/cobra"
)

var stampCmd = &cobra.Command{
	Use:   "stamp",
	Short: "Gather a provenance report and record it in the run archive",
	Long:  "Gathers a report and appends it to the SQLite run archive, printing the new run id. Use the runs command to inspect archived reports.",
	Args:  cobra.NoArgs,
	RunE:  runStamp,
}

func runStamp(cmd *cobra.Command, args []string) error {
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

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	dbPath := resolveDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		return fmt.Errorf("migrating archive: %w", err)
	}

	mode := "summary"
	if flagFull {
		mode = "full"
	}
	createdAt, err := time.Parse(time.RFC3339, report.Time)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	id, err := s.RecordRun(createdAt, mode, data, report.ModuleVersions)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Archive: %s\n", dbPath)
	fmt.Printf("Recorded run %d\n", id)
	return nil
}
