// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stages implements the pipeline stages the workflow machine runs.
// Each stage gathers what it can from its collaborators (search, generation,
// scraping) and hands the exact decisions to the scoring packages. Generation
// failures degrade to deterministic fallbacks; a run always produces a
// report, even offline.
package stages

import (
	"io"

	"github.com/pdiddy/market-engine/internal/confidence"
	"github.com/pdiddy/market-engine/internal/finance"
	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/internal/report"
	"github.com/pdiddy/market-engine/internal/rice"
	"github.com/pdiddy/market-engine/internal/scrape"
	"github.com/pdiddy/market-engine/internal/sentiment"
	"github.com/pdiddy/market-engine/internal/websearch"
	"github.com/pdiddy/market-engine/internal/workflow"
	"github.com/pdiddy/market-engine/pkg/types"
)

// Default unit-economics estimates for an early-stage subscription product,
// used when generation supplies nothing usable.
const (
	defaultCAC    = 500.0
	defaultARPU   = 199.0
	defaultMargin = 0.7
	defaultChurn  = 0.05
)

func defaultTiers() map[string]float64 {
	return map[string]float64{"Basic": 99, "Pro": 299}
}

// Stages bundles the collaborators and scoring engines every stage shares.
type Stages struct {
	cfg types.PipelineConfig

	search  websearch.Backend
	ai      genai.Backend
	scraper *scrape.Scraper

	gate     *sentiment.Gate
	scorer   *confidence.Scorer
	rice     *rice.Engine
	finance  *finance.Model
	compiler *report.Compiler

	out io.Writer
}

// New wires the stage set. The search and generation backends are injected
// so tests can substitute stubs; the deterministic engines are built from cfg.
func New(cfg types.PipelineConfig, search websearch.Backend, ai genai.Backend, out io.Writer) *Stages {
	return &Stages{
		cfg:      cfg,
		search:   search,
		ai:       ai,
		scraper:  scrape.NewScraper(cfg.Scrape),
		gate:     sentiment.NewGate(sentiment.NewVADER(), cfg.Scoring),
		scorer:   confidence.NewScorer(cfg.Scoring),
		rice:     rice.NewEngine(cfg.Scoring),
		finance:  finance.NewModel(cfg.Scoring),
		compiler: report.NewCompiler(cfg.Report),
		out:      out,
	}
}

// Table returns the stage table the workflow machine runs.
func (s *Stages) Table() map[workflow.Stage]workflow.StageFunc {
	return map[workflow.Stage]workflow.StageFunc{
		workflow.StageDiscovery:   s.Discovery,
		workflow.StageVerify:      s.Verify,
		workflow.StageCompetitors: s.Competitors,
		workflow.StagePersonas:    s.Personas,
		workflow.StageAnalysis:    s.Analysis,
		workflow.StageFeatures:    s.Features,
		workflow.StageAudit:       s.Audit,
		workflow.StageReport:      s.Report,
	}
}
