// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report compiles the final research report from a completed run
// state. Compilation is pure formatting: every number in the report was
// computed upstream, so a report can be regenerated from an archived state
// at any time.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"github.com/pdiddy/market-engine/pkg/types"
)

// topFeatureCount is how many ranked features the report table shows.
const topFeatureCount = 10

// Compiler renders run states into report artifacts.
type Compiler struct {
	cfg types.ReportConfig
}

// NewCompiler builds a Compiler from cfg.
func NewCompiler(cfg types.ReportConfig) *Compiler {
	return &Compiler{cfg: cfg}
}

// Compile writes the report for st into the output directory and returns the
// path of the primary artifact. Markdown is always written; when the format
// is HTML a rendered copy is written alongside it and its path is returned.
func (c *Compiler) Compile(st *types.MarketState) (string, error) {
	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	md := c.Render(st)

	mdPath := filepath.Join(c.cfg.OutputDir, st.RunID+".md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	if c.cfg.Format != types.ReportHTML {
		return mdPath, nil
	}

	htmlPath := filepath.Join(c.cfg.OutputDir, st.RunID+".html")
	if err := os.WriteFile(htmlPath, renderHTML(md), 0o644); err != nil {
		return "", fmt.Errorf("writing html report: %w", err)
	}
	return htmlPath, nil
}

// Render produces the full markdown report for st.
func (c *Compiler) Render(st *types.MarketState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Market Research Report\n\n")
	fmt.Fprintf(&b, "**Idea:** %s\n\n", st.RawIdea)
	fmt.Fprintf(&b, "**Target region:** %s\n\n", st.TargetRegion)
	fmt.Fprintf(&b, "**Run:** %s (%s)\n\n", st.RunID, st.CreatedAt.Format("2006-01-02"))

	writeExecutiveSummary(&b, st)
	writeProblem(&b, st)
	writePains(&b, st)
	writeCompetitors(&b, st)
	writePersonas(&b, st)
	writeFeatures(&b, st)
	writeEconomics(&b, st)
	writeProjection(&b, st)
	writeCanvas(&b, st)

	return b.String()
}

func writeExecutiveSummary(b *strings.Builder, st *types.MarketState) {
	fmt.Fprintf(b, "## Executive Summary\n\n")

	fmt.Fprintf(b, "- Verified pain points: %d (evidence %s)\n",
		len(st.VerifiedPains), verdict(st.Verified))
	fmt.Fprintf(b, "- Competitors profiled: %d\n", len(st.Competitors))
	fmt.Fprintf(b, "- Personas: %d\n", len(st.Personas))
	fmt.Fprintf(b, "- Features proposed: %d\n", len(st.Features))
	fmt.Fprintf(b, "- LTV/CAC ratio: %s (business case %s)\n",
		formatRatio(st.RevenueModel.LTVCACRatio), verdict(st.FinanciallyViable))

	if len(st.Features) > 0 {
		scores := make([]float64, 0, len(st.Features))
		for _, f := range st.Features {
			if !math.IsInf(f.RICEScore, 0) {
				scores = append(scores, f.RICEScore)
			}
		}
		if mean, err := stats.Mean(scores); err == nil {
			median, _ := stats.Median(scores)
			fmt.Fprintf(b, "- RICE scores: mean %.0f, median %.0f\n", mean, median)
		}
	}
	fmt.Fprintln(b)
}

func writeProblem(b *strings.Builder, st *types.MarketState) {
	if st.ProblemStatement == "" {
		return
	}
	fmt.Fprintf(b, "## Problem\n\n%s\n\n", st.ProblemStatement)
	if st.DeltaFourLogic != "" {
		fmt.Fprintf(b, "**Why 4x better:** %s\n\n", st.DeltaFourLogic)
	}
}

func writePains(b *strings.Builder, st *types.MarketState) {
	if len(st.VerifiedPains) == 0 {
		return
	}
	fmt.Fprintf(b, "## Verified Pain Points\n\n")
	fmt.Fprintf(b, "| Pain | Evidence | Year | Confidence |\n")
	fmt.Fprintf(b, "|------|----------|------|------------|\n")
	for _, p := range st.VerifiedPains {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %d |\n",
			cell(p.Pain), cell(p.Stat), year, p.Confidence)
	}
	fmt.Fprintln(b)
}

func writeCompetitors(b *strings.Builder, st *types.MarketState) {
	if len(st.Competitors) == 0 {
		return
	}
	fmt.Fprintf(b, "## Competitive Landscape\n\n")
	fmt.Fprintf(b, "| Competitor | Best at | Lacks | Opportunity | Suspicion |\n")
	fmt.Fprintf(b, "|------------|---------|-------|-------------|-----------|\n")
	for _, comp := range st.Competitors {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d/10 |\n",
			cell(comp.Name), cell(comp.BestAt), cell(comp.Lack), cell(comp.Gap), comp.SuspicionScore)
	}
	fmt.Fprintln(b)

	if len(st.MarketGaps) > 0 {
		fmt.Fprintf(b, "**Market gaps:**\n\n")
		for _, gap := range st.MarketGaps {
			fmt.Fprintf(b, "- %s\n", gap)
		}
		fmt.Fprintln(b)
	}
	if st.Positioning != "" {
		fmt.Fprintf(b, "**Positioning:** %s\n\n", st.Positioning)
	}
}

func writePersonas(b *strings.Builder, st *types.MarketState) {
	if len(st.Personas) == 0 {
		return
	}
	fmt.Fprintf(b, "## Personas\n\n")
	for _, p := range st.Personas {
		fmt.Fprintf(b, "### %s (%s)\n\n", p.Name, p.Segment)
		if p.Description != "" {
			fmt.Fprintf(b, "%s\n\n", p.Description)
		}
		fmt.Fprintf(b, "- Age: %s, income: %s\n", orDash(p.AgeRange), orDash(p.IncomeBracket))
		fmt.Fprintf(b, "- Language: %s, tech comfort: %s\n",
			orDash(p.LanguagePreference), orDash(p.TechComfort))
		fmt.Fprintf(b, "- Trust deficit: %d/10\n", p.TrustDeficit)
		if p.Workaround != "" {
			fmt.Fprintf(b, "- Current workaround: %s\n", p.Workaround)
		}
		fmt.Fprintln(b)
	}
}

func writeFeatures(b *strings.Builder, st *types.MarketState) {
	if len(st.Features) == 0 {
		return
	}
	fmt.Fprintf(b, "## Feature Roadmap\n\n")
	fmt.Fprintf(b, "| Rank | Feature | Reach | Impact | Confidence | Effort | RICE |\n")
	fmt.Fprintf(b, "|------|---------|-------|--------|------------|--------|------|\n")
	for i, f := range st.Features {
		if i >= topFeatureCount {
			break
		}
		fmt.Fprintf(b, "| %d | %s | %d | %d | %.2f | %d | %.0f |\n",
			f.PriorityRank, cell(f.Name), f.Reach, f.Impact, f.Confidence, f.Effort, f.RICEScore)
	}
	fmt.Fprintln(b)

	if len(st.FeatureBuckets) > 0 {
		fmt.Fprintf(b, "**Buckets:** quick wins %d, big bets %d, maybes %d, ice box %d\n\n",
			st.FeatureBuckets["quick_wins"], st.FeatureBuckets["big_bets"],
			st.FeatureBuckets["maybes"], st.FeatureBuckets["ice_box"])
	}
	if len(st.ValidationIssues) > 0 {
		fmt.Fprintf(b, "**Estimate issues:**\n\n")
		for _, issue := range st.ValidationIssues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
		fmt.Fprintln(b)
	}
}

func writeEconomics(b *strings.Builder, st *types.MarketState) {
	rm := st.RevenueModel
	if rm.ARPU == 0 && rm.CAC == 0 {
		return
	}
	fmt.Fprintf(b, "## Unit Economics\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(b, "| CAC | %.0f |\n", rm.CAC)
	fmt.Fprintf(b, "| ARPU | %.0f/mo |\n", rm.ARPU)
	fmt.Fprintf(b, "| Gross margin | %.0f%% |\n", rm.GrossMargin*100)
	fmt.Fprintf(b, "| Monthly churn | %.1f%% |\n", rm.ChurnRate*100)
	fmt.Fprintf(b, "| LTV | %s |\n", formatMoney(rm.LTV))
	fmt.Fprintf(b, "| LTV/CAC | %s |\n", formatRatio(rm.LTVCACRatio))
	fmt.Fprintf(b, "| Payback | %s months |\n", formatRatio(rm.PaybackMonths))
	fmt.Fprintln(b)

	if len(rm.PricingTiers) > 0 {
		fmt.Fprintf(b, "**Pricing tiers:** ")
		var parts []string
		for _, name := range sortedKeys(rm.PricingTiers) {
			parts = append(parts, fmt.Sprintf("%s %.0f/mo", name, rm.PricingTiers[name]))
		}
		fmt.Fprintf(b, "%s\n\n", strings.Join(parts, ", "))
	}
	if st.ViabilityFeedback != "" {
		fmt.Fprintf(b, "%s\n\n", st.ViabilityFeedback)
	}
}

func writeProjection(b *strings.Builder, st *types.MarketState) {
	if len(st.Projection) == 0 {
		return
	}
	fmt.Fprintf(b, "## 24-Month Projection\n\n")
	fmt.Fprintf(b, "| Month | Customers | Revenue | Net | Cumulative profit |\n")
	fmt.Fprintf(b, "|-------|-----------|---------|-----|-------------------|\n")
	for _, row := range st.Projection {
		// Quarterly rows keep the table readable; the archive holds the rest.
		if row.Month != 1 && row.Month%3 != 0 {
			continue
		}
		fmt.Fprintf(b, "| %d | %d | %.0f | %.0f | %.0f |\n",
			row.Month, row.Customers, row.Revenue, row.Net, row.CumulativeProfit)
	}
	fmt.Fprintln(b)
}

func writeCanvas(b *strings.Builder, st *types.MarketState) {
	bm := st.BusinessModel
	if len(bm.ValueProps) == 0 && len(bm.RevenueStreams) == 0 {
		return
	}
	fmt.Fprintf(b, "## Business Model\n\n")
	writeCanvasBlock(b, "Value propositions", bm.ValueProps)
	writeCanvasBlock(b, "Key partners", bm.KeyPartners)
	writeCanvasBlock(b, "Revenue streams", bm.RevenueStreams)
	writeCanvasBlock(b, "Cost structure", bm.CostStructure)
}

func writeCanvasBlock(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	fmt.Fprintln(b)
}

// renderHTML converts the markdown report to a standalone HTML document.
func renderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Title: "Market Research Report",
	})
	return markdown.Render(doc, renderer)
}

func verdict(ok bool) string {
	if ok {
		return "passed"
	}
	return "not passed"
}

// formatRatio renders a metric that may legitimately be infinite.
func formatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatMoney(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.0f", v)
}

// cell makes a string safe for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		return "-"
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
