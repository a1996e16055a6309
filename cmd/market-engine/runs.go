// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/market-engine/internal/report"
	"github.com/pdiddy/market-engine/internal/runstore"
	"github.com/pdiddy/market-engine/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived research runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		summaries, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		formatRunsTable(summaries, os.Stdout)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the full archived state of a run as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("rendering state: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

var runsRenderCmd = &cobra.Command{
	Use:   "render <run-id>",
	Short: "Recompile the report for an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		if v, _ := cmd.Flags().GetString("format"); v != "" {
			cfg.Report.Format = types.ReportFormat(v)
		}
		if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
			cfg.Report.OutputDir = v
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		path, err := report.NewCompiler(cfg.Report).Compile(st)
		if err != nil {
			return fmt.Errorf("recompiling report: %w", err)
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	runsRenderCmd.Flags().String("format", "", "report format: markdown or html")
	runsRenderCmd.Flags().String("output-dir", "", "directory for compiled reports")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsRenderCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*runstore.Store, error) {
	return runstore.NewStore(buildConfig().Store)
}

// formatRunsTable writes run summaries as a human-readable table to w.
func formatRunsTable(summaries []runstore.Summary, w io.Writer) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No archived runs.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-40s  %-16s  %-8s  %-6s  %-7s\n",
		"Run ID", "Idea", "Created", "Verified", "Viable", "LTV:CAC")
	fmt.Fprintln(w, strings.Repeat("-", 122))

	for _, s := range summaries {
		idea := s.Idea
		if len(idea) > 40 {
			idea = idea[:37] + "..."
		}
		ratio := "-"
		if s.LTVCACRatio > 0 && !math.IsInf(s.LTVCACRatio, 0) {
			ratio = fmt.Sprintf("%.2f", s.LTVCACRatio)
		}
		fmt.Fprintf(w, "%-36s  %-40s  %-16s  %-8s  %-6s  %-7s\n",
			s.RunID, idea, s.CreatedAt.Format("2006-01-02 15:04"),
			yesNo(s.Verified), yesNo(s.Viable), ratio)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(summaries))
}
