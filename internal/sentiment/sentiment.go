// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sentiment filters pain candidates by how angry their authors are.
// A lexicon analyzer turns complaint text into a compound valence score in
// [-1, 1]; the gate keeps only complaints below the configured ceiling, so
// mild inconveniences never reach the report.
package sentiment

import (
	"github.com/pdiddy/market-engine/pkg/types"
)

// Analyzer produces a compound valence score for a piece of text. -1 is pure
// rage, +1 is pure joy. The production implementation is the VADER lexicon;
// tests supply fixed scores.
type Analyzer interface {
	Compound(text string) float64
}

// Gate decides which candidates count as genuine pain.
type Gate struct {
	analyzer Analyzer
	ceiling  float64
}

// NewGate builds a Gate over analyzer using the valence ceiling from cfg.
func NewGate(analyzer Analyzer, cfg types.ScoringConfig) *Gate {
	return &Gate{analyzer: analyzer, ceiling: cfg.MaxPainValence}
}

// IsGenuinePain reports whether a valence score is negative enough to count
// as real displeasure rather than a mild complaint.
func (g *Gate) IsGenuinePain(valence float64) bool {
	return valence < g.ceiling
}

// Annotate scores each candidate and attaches its valence and genuineness
// flag. Candidates with no textual basis are dropped before scoring, not
// scored as zero. Input order is preserved.
func (g *Gate) Annotate(candidates []types.PainCandidate) []types.PainCandidate {
	annotated := make([]types.PainCandidate, 0, len(candidates))
	for _, c := range candidates {
		text := c.RawQuote
		if text == "" {
			text = c.Pain
		}
		if text == "" {
			continue
		}

		c.Valence = g.analyzer.Compound(text)
		c.GenuinePain = g.IsGenuinePain(c.Valence)
		annotated = append(annotated, c)
	}
	return annotated
}

// Filter returns the genuine subset of candidates, annotated, in input order.
func (g *Gate) Filter(candidates []types.PainCandidate) []types.PainCandidate {
	var genuine []types.PainCandidate
	for _, c := range g.Annotate(candidates) {
		if c.GenuinePain {
			genuine = append(genuine, c)
		}
	}
	return genuine
}
