// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/internal/runstore"
	"github.com/pdiddy/market-engine/internal/stages"
	"github.com/pdiddy/market-engine/internal/websearch"
	"github.com/pdiddy/market-engine/internal/workflow"
	"github.com/pdiddy/market-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <idea>",
	Short: "Run the full research pipeline for a product idea",
	Long: `Research runs a product idea through every pipeline stage and writes
the compiled report. The run is archived even when a stage fails, so a
partial run can still be inspected with "runs show".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("region", "India", "target market region")
	researchCmd.Flags().String("format", "", "report format: markdown or html")
	researchCmd.Flags().String("output-dir", "", "directory for compiled reports")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	idea := strings.Join(args, " ")
	cfg := buildConfig()

	if v, _ := cmd.Flags().GetString("format"); v != "" {
		cfg.Report.Format = types.ReportFormat(v)
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.Report.OutputDir = v
	}
	region, _ := cmd.Flags().GetString("region")

	if cfg.Search.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no search API key; discovery will run on generation alone")
	}
	if cfg.GenAI.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no generation API key; stages will use deterministic fallbacks")
	}

	st := types.NewMarketState(idea, region)
	set := stages.New(cfg, websearch.NewTavilyBackend(cfg.Search), genai.NewClient(cfg.GenAI), os.Stderr)
	machine := workflow.NewMachine(set.Table(), cfg.Workflow, os.Stderr)

	runErr := machine.Run(cmd.Context(), st)

	// Archive whatever the run produced, complete or not.
	store, err := runstore.NewStore(cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open run archive: %v\n", err)
	} else {
		defer store.Close()
		if err := store.Save(cmd.Context(), st); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not archive run: %v\n", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", st.RunID, runErr)
	}

	printRunSummary(st)
	return nil
}

func printRunSummary(st *types.MarketState) {
	fmt.Printf("Run %s complete.\n\n", st.RunID)
	fmt.Printf("  Idea:          %s\n", st.RawIdea)
	fmt.Printf("  Region:        %s\n", st.TargetRegion)
	fmt.Printf("  Pains:         %d raw, %d verified\n", len(st.RawPains), len(st.VerifiedPains))
	fmt.Printf("  Competitors:   %d\n", len(st.Competitors))
	fmt.Printf("  Personas:      %d\n", len(st.Personas))
	fmt.Printf("  Features:      %d\n", len(st.Features))
	fmt.Printf("  Verified:      %s (%d rounds)\n", yesNo(st.Verified), st.VerificationRounds)
	fmt.Printf("  Viable:        %s (LTV:CAC %s, %d rounds)\n",
		yesNo(st.FinanciallyViable), formatRatio(st.RevenueModel.LTVCACRatio), st.ViabilityRounds)
	fmt.Printf("  Report:        %s\n", st.FinalReportPath)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}
