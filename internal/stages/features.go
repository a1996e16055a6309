// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"

	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/pkg/types"
)

const featureInstruction = `You are a product strategist. Propose features
that address the verified pains and exploit the competitor lacks. Estimate
RICE parameters for each: reach (users per quarter), impact (1, 2, or 3),
confidence (0 to 1), effort (person-weeks). Do not compute scores. Respond
with JSON only:
{"features":[{"name":"","description":"","linked_pain":"","linked_lack":"",
"persona_target":"","reach":1000,"impact":2,"confidence":0.5,"effort":3}]}`

type featurePayload struct {
	Features []struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		LinkedPain    string  `json:"linked_pain"`
		LinkedLack    string  `json:"linked_lack"`
		PersonaTarget string  `json:"persona_target"`
		Reach         int     `json:"reach"`
		Impact        int     `json:"impact"`
		Confidence    float64 `json:"confidence"`
		Effort        int     `json:"effort"`
	} `json:"features"`
}

// Features proposes the product roadmap. Generation estimates the RICE
// parameters; the scoring engine always recomputes scores, ranks, and
// buckets from scratch, so stale derived values can never survive a loop
// iteration. On a viability loop re-entry the audit feedback steers the
// proposals toward cheaper or higher-value features.
func (s *Stages) Features(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	proposed := s.proposeFeatures(ctx, st)

	issues := s.rice.Validate(proposed)
	scored := s.rice.ScoreAll(proposed)
	buckets := s.rice.BucketCounts(scored)

	fmt.Fprintf(s.out, "features: %d proposed, %d estimate issues\n", len(scored), len(issues))
	return types.StateUpdate{
		Features:         scored,
		FeatureBuckets:   buckets,
		ValidationIssues: issues,
	}, nil
}

func (s *Stages) proposeFeatures(ctx context.Context, st *types.MarketState) []types.Feature {
	payload := struct {
		Idea     string               `json:"idea"`
		Pains    []types.VerifiedPain `json:"verified_pains"`
		Gaps     []string             `json:"market_gaps"`
		Personas []types.Persona      `json:"personas"`
		Feedback string               `json:"previous_feedback,omitempty"`
	}{st.RawIdea, st.VerifiedPains, st.MarketGaps, st.Personas, st.ViabilityFeedback}

	if raw, err := s.complete(ctx, featureInstruction, payload); err == nil {
		var parsed featurePayload
		if genai.ExtractJSON(raw, &parsed) && len(parsed.Features) > 0 {
			features := make([]types.Feature, 0, len(parsed.Features))
			for _, f := range parsed.Features {
				if f.Name == "" {
					continue
				}
				features = append(features, types.Feature{
					Name:          f.Name,
					Description:   f.Description,
					LinkedPain:    f.LinkedPain,
					LinkedLack:    f.LinkedLack,
					PersonaTarget: f.PersonaTarget,
					Reach:         f.Reach,
					Impact:        f.Impact,
					Confidence:    f.Confidence,
					Effort:        f.Effort,
				})
			}
			return features
		}
	}

	// Fallback: one conservative feature per verified pain.
	features := make([]types.Feature, 0, len(st.VerifiedPains))
	for _, p := range st.VerifiedPains {
		features = append(features, types.Feature{
			Name:       "Address: " + firstSentence(p.Pain),
			LinkedPain: p.Pain,
			Reach:      1000,
			Impact:     2,
			Confidence: 0.5,
			Effort:     3,
		})
	}
	return features
}
