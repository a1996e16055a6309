// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rice ranks proposed features with the RICE framework:
//
//	score = (Reach × Impact × Confidence) / Effort
//
// The ideation stage estimates the four parameters; this package does the
// math, so scores and ranks are exact and reproducible rather than guessed.
package rice

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Bucket names for Categorize. Every scored feature lands in exactly one.
const (
	BucketQuickWins = "quick_wins"
	BucketBigBets   = "big_bets"
	BucketMaybes    = "maybes"
	BucketIceBox    = "ice_box"
)

// Engine scores, ranks, validates, and buckets features against one immutable
// scoring configuration.
type Engine struct {
	cfg types.ScoringConfig
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg types.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes the RICE score for one set of parameters. Effort at or below
// zero yields 0; validation reports that case, but scoring must not divide by it.
func Score(reach, impact int, confidence float64, effort int) float64 {
	if effort <= 0 {
		return 0
	}
	return float64(reach) * float64(impact) * confidence / float64(effort)
}

// ScoreAll computes the score for every feature, sorts descending by score
// with ties keeping input order, and assigns 1-based priority ranks. The
// output has the same length as the input; the input slice is not modified.
func (e *Engine) ScoreAll(features []types.Feature) []types.Feature {
	scored := make([]types.Feature, len(features))
	copy(scored, features)

	for i := range scored {
		scored[i].RICEScore = round2(Score(scored[i].Reach, scored[i].Impact, scored[i].Confidence, scored[i].Effort))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RICEScore > scored[j].RICEScore
	})

	for i := range scored {
		scored[i].PriorityRank = i + 1
	}
	return scored
}

// TopN returns the n highest-scoring features. Useful for the executive
// summary, which only shows the most impactful proposals.
func (e *Engine) TopN(features []types.Feature, n int) []types.Feature {
	scored := e.ScoreAll(features)
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// Validate checks every feature's RICE parameters and accumulates one message
// per violated constraint, keyed by feature name. Violations do not block
// scoring; the caller surfaces them as feedback.
func (e *Engine) Validate(features []types.Feature) []string {
	var issues []string
	for i, f := range features {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("feature %d", i+1)
		}

		if f.Reach <= 0 {
			issues = append(issues, fmt.Sprintf("%q: reach must be a positive user count (got %d)", name, f.Reach))
		}
		if f.Impact < 1 || f.Impact > 3 {
			issues = append(issues, fmt.Sprintf("%q: impact must be 1, 2, or 3 (got %d)", name, f.Impact))
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			issues = append(issues, fmt.Sprintf("%q: confidence must be in [0, 1] (got %g)", name, f.Confidence))
		}
		if f.Effort <= 0 {
			issues = append(issues, fmt.Sprintf("%q: effort must be positive person-weeks (got %d)", name, f.Effort))
		}
	}
	return issues
}

// Categorize partitions scored features into four disjoint buckets by fixed
// breakpoints: high score and low effort are quick wins, high score and high
// effort are big bets, middling scores are maybes, the rest goes on ice.
func (e *Engine) Categorize(scored []types.Feature) map[string][]types.Feature {
	buckets := map[string][]types.Feature{
		BucketQuickWins: nil,
		BucketBigBets:   nil,
		BucketMaybes:    nil,
		BucketIceBox:    nil,
	}

	for _, f := range scored {
		switch {
		case f.RICEScore > e.cfg.ScoreBreakpointHigh && f.Effort < e.cfg.EffortBreakpoint:
			buckets[BucketQuickWins] = append(buckets[BucketQuickWins], f)
		case f.RICEScore > e.cfg.ScoreBreakpointHigh:
			buckets[BucketBigBets] = append(buckets[BucketBigBets], f)
		case f.RICEScore > e.cfg.ScoreBreakpointLow:
			buckets[BucketMaybes] = append(buckets[BucketMaybes], f)
		default:
			buckets[BucketIceBox] = append(buckets[BucketIceBox], f)
		}
	}
	return buckets
}

// BucketCounts returns the size of each bucket for the run state summary.
func (e *Engine) BucketCounts(scored []types.Feature) map[string]int {
	counts := make(map[string]int, 4)
	for name, fs := range e.Categorize(scored) {
		counts[name] = len(fs)
	}
	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
