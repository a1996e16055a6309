// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package confidence scores the trustworthiness of claims by the sources that
// back them. It replaces the subjective "is this a reliable source?" question
// with a curated weight table, so the verification gate is deterministic and
// explainable.
package confidence

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/market-engine/pkg/types"
)

const (
	// statisticBonus is added when a claim carries numerical evidence.
	statisticBonus = 5

	// recencyBonus is added when the cited data is from recentDataYear or later.
	recencyBonus   = 3
	recentDataYear = 2024

	defaultWeightKey = "default"
)

// Scorer resolves trust weights and claim confidence against one immutable
// scoring configuration.
type Scorer struct {
	cfg types.ScoringConfig

	// sortedKeys holds the weight-table keys in sorted order so suffix and
	// substring resolution is deterministic regardless of map iteration.
	sortedKeys []string
}

// NewScorer builds a Scorer from cfg.
func NewScorer(cfg types.ScoringConfig) *Scorer {
	keys := make([]string, 0, len(cfg.TrustWeights))
	for k := range cfg.TrustWeights {
		if k != defaultWeightKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &Scorer{cfg: cfg, sortedKeys: keys}
}

// Host extracts the lowercase host from a URL with any leading "www." stripped.
// Malformed URLs and URLs without a host yield "".
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Host)
	return strings.TrimPrefix(host, "www.")
}

// TrustWeight resolves the 0-10 trust weight for a source URL. Resolution
// order: exact host match, dotted-TLD suffix match, substring containment of
// a non-suffix table key, then the default weight. Malformed URLs weigh 0.
func (s *Scorer) TrustWeight(rawURL string) int {
	host := Host(rawURL)
	if host == "" {
		return 0
	}

	if w, ok := s.cfg.TrustWeights[host]; ok {
		return w
	}

	for _, key := range s.sortedKeys {
		if strings.HasPrefix(key, ".") && strings.HasSuffix(host, key) {
			return s.cfg.TrustWeights[key]
		}
	}

	for _, key := range s.sortedKeys {
		if !strings.HasPrefix(key, ".") && strings.Contains(host, key) {
			return s.cfg.TrustWeights[key]
		}
	}

	return s.cfg.TrustWeights[defaultWeightKey]
}

// Confidence accumulates the trust weights of all sources, plus a bonus for
// statistical evidence and a bonus for recent data. The result is a monotonic
// accumulator, not a normalized score; there is no upper bound.
func (s *Scorer) Confidence(sources []string, hasStatistic bool, year int) int {
	score := 0
	for _, src := range sources {
		score += s.TrustWeight(src)
	}
	if hasStatistic {
		score += statisticBonus
	}
	if year >= recentDataYear {
		score += recencyBonus
	}
	return score
}

// IsVerified reports whether a confidence score clears the verification threshold.
func (s *Scorer) IsVerified(confidence int) bool {
	return confidence >= s.cfg.MinConfidence
}

// ScoredClaim is a pain candidate annotated with its confidence verdict and
// the per-source weight breakdown.
type ScoredClaim struct {
	types.PainCandidate

	Confidence    int            `json:"confidence" yaml:"confidence"`
	Verified      bool           `json:"verified" yaml:"verified"`
	SourceWeights map[string]int `json:"source_weights,omitempty" yaml:"source_weights,omitempty"`
}

// ScoreClaims annotates each claim with its confidence score, verified flag,
// and per-source weights. The batch verdict is true when at least
// MinVerifiedClaims claims are individually verified. Unresolvable inputs
// degrade to score 0 / not verified; ScoreClaims never fails.
func (s *Scorer) ScoreClaims(claims []types.PainCandidate) ([]ScoredClaim, bool) {
	scored := make([]ScoredClaim, 0, len(claims))
	verifiedCount := 0

	for _, c := range claims {
		conf := s.Confidence(c.Sources, c.Stat != "", c.Year)

		weights := make(map[string]int, len(c.Sources))
		for _, src := range c.Sources {
			weights[Host(src)] = s.TrustWeight(src)
		}

		sc := ScoredClaim{
			PainCandidate: c,
			Confidence:    conf,
			Verified:      s.IsVerified(conf),
			SourceWeights: weights,
		}
		if sc.Verified {
			verifiedCount++
		}
		scored = append(scored, sc)
	}

	return scored, verifiedCount >= s.cfg.MinVerifiedClaims
}

// Feedback explains why verification fell short: one line per unverified
// claim with its shortfall against the threshold and a hint at stronger
// source categories. Returns "" when every claim is verified.
func (s *Scorer) Feedback(scored []ScoredClaim) string {
	var lines []string
	for _, c := range scored {
		if c.Verified {
			continue
		}
		pain := c.Pain
		if len(pain) > 50 {
			pain = pain[:50] + "..."
		}
		lines = append(lines, fmt.Sprintf(
			"- %q: score %d/%d, need %d more points; cite government, academic, or major news sources",
			pain, c.Confidence, s.cfg.MinConfidence, s.cfg.MinConfidence-c.Confidence))
	}
	if len(lines) == 0 {
		return ""
	}
	return "The following pain points need stronger evidence:\n" + strings.Join(lines, "\n")
}
