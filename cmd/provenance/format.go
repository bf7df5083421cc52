package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jward/provenance"
	"github.com/jward/provenance/internal/store"
)

// formatReportText renders a report as readable sections. Summary reports
// show only the header, modules, and git sections; full reports add the
// environment, platform, GPU, and asset sections when populated.
func formatReportText(w io.Writer, report *provenance.Report) {
	fmt.Fprintln(w, "Provenance Report")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "Time: %s\n", report.Time)
	fmt.Fprintf(w, "Go: %s\n", report.RuntimeVersion)
	if report.Executable != "" {
		fmt.Fprintf(w, "Executable: %s\n", report.Executable)
	}
	if len(report.Args) > 0 {
		fmt.Fprintf(w, "Args: %s\n", strings.Join(report.Args, " "))
	}
	fmt.Fprintln(w)

	if len(report.ModuleVersions) > 0 {
		fmt.Fprintln(w, "Modules:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, name := range sortedKeys(report.ModuleVersions) {
			fmt.Fprintf(tw, "  %s\t%s\n", name, report.ModuleVersions[name])
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if len(report.GitVersions) > 0 {
		fmt.Fprintln(w, "Git Checkouts:")
		names := make([]string, 0, len(report.GitVersions))
		for name := range report.GitVersions {
			names = append(names, name)
		}
		sort.Strings(names)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  MODULE\tSHA1\tMODIFIED\tUNTRACKED")
		for _, name := range names {
			rec := report.GitVersions[name]
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\n",
				name, rec.Git.SHA1, len(rec.Git.Modified), len(rec.Git.Untracked))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if len(report.Platform) > 0 {
		fmt.Fprintln(w, "Platform:")
		keys := make([]string, 0, len(report.Platform))
		for k := range report.Platform {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, report.Platform[k])
		}
		fmt.Fprintln(w)
	}

	if report.GPUs != nil {
		fmt.Fprintln(w, "GPUs:")
		if report.GPUs.Text != "" {
			fmt.Fprintf(w, "  %s\n", report.GPUs.Text)
		} else {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "  INDEX\tNAME\tDRIVER\tMEMORY\tUTIL\tTEMP")
			for _, g := range report.GPUs.GPUs {
				fmt.Fprintf(tw, "  %d\t%s\t%s\t%d/%d MiB\t%d%%\t%dC\n",
					g.Index, g.Name, g.DriverVersion,
					g.MemoryUsedMiB, g.MemoryTotalMiB, g.UtilizationPct, g.TemperatureC)
			}
			tw.Flush()
		}
		fmt.Fprintln(w)
	}

	if len(report.Assets) > 0 {
		fmt.Fprintln(w, "Assets:")
		paths := make([]string, 0, len(report.Assets))
		for p := range report.Assets {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			entry := report.Assets[p]
			if entry.Err != "" {
				fmt.Fprintf(w, "  %s: error: %s\n", p, entry.Err)
				continue
			}
			fmt.Fprintf(w, "  %s: %d bytes, blake3 %s\n",
				p, entry.Record.Size, entry.Record.BLAKE3)
		}
	}
}

// formatRunsText formats archived runs as aligned columns.
func formatRunsText(w io.Writer, runs []store.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMODE\tSIZE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n",
			r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"), r.Mode, len(r.Report))
	}
	tw.Flush()
}

// sortedKeys returns map keys in ascending order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
