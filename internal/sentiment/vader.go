// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import "github.com/jonreiter/govader"

// VADER wraps the govader lexicon analyzer. VADER is tuned for social-media
// text, which is where complaint candidates come from, and is deterministic:
// the same text always yields the same valence.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER builds the lexicon analyzer. The lexicon loads once; the analyzer
// is safe to reuse across a run.
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound returns the compound polarity score for text, in [-1, 1].
func (v *VADER) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}
