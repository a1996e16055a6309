// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"

	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/pkg/types"
)

const analysisInstruction = `You are a market strategist. From the verified
pain points, competitor profiles, and personas, derive the market gaps, a
one-paragraph problem statement, a positioning statement, and the logic for
why a new product could be 4x better than the status quo. Respond with JSON
only:
{"problem_statement":"","positioning":"","delta_four_logic":"",
"market_gaps":["gap"]}`

type analysisPayload struct {
	ProblemStatement string   `json:"problem_statement"`
	Positioning      string   `json:"positioning"`
	DeltaFourLogic   string   `json:"delta_four_logic"`
	MarketGaps       []string `json:"market_gaps"`
}

// Analysis synthesizes the strategic picture from everything gathered so
// far. The fallback derives gaps mechanically from competitor lacks and the
// problem statement from the top verified pain.
func (s *Stages) Analysis(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	payload := struct {
		Idea        string               `json:"idea"`
		Region      string               `json:"region"`
		Pains       []types.VerifiedPain `json:"verified_pains"`
		Competitors []types.Competitor   `json:"competitors"`
		Personas    []types.Persona      `json:"personas"`
	}{st.RawIdea, st.TargetRegion, st.VerifiedPains, st.Competitors, st.Personas}

	if raw, err := s.complete(ctx, analysisInstruction, payload); err == nil {
		var parsed analysisPayload
		if genai.ExtractJSON(raw, &parsed) && parsed.ProblemStatement != "" {
			fmt.Fprintf(s.out, "analysis: %d market gaps\n", len(parsed.MarketGaps))
			return types.StateUpdate{
				ProblemStatement: types.String(parsed.ProblemStatement),
				Positioning:      types.String(parsed.Positioning),
				DeltaFourLogic:   types.String(parsed.DeltaFourLogic),
				MarketGaps:       parsed.MarketGaps,
			}, nil
		}
	}

	return s.fallbackAnalysis(st), nil
}

// fallbackAnalysis builds the strategic picture mechanically: every
// competitor lack is a gap, and the highest-confidence pain anchors the
// problem statement.
func (s *Stages) fallbackAnalysis(st *types.MarketState) types.StateUpdate {
	var gaps []string
	seen := make(map[string]bool)
	for _, c := range st.Competitors {
		for _, lack := range []string{c.Lack, c.Gap} {
			if lack == "" || seen[lack] {
				continue
			}
			seen[lack] = true
			gaps = append(gaps, lack)
		}
	}

	problem := ""
	if top := topPain(st.VerifiedPains); top != nil {
		problem = fmt.Sprintf("Users of %s in %s report that %s",
			st.RawIdea, st.TargetRegion, firstSentence(top.Pain))
	}

	fmt.Fprintf(s.out, "analysis: fallback synthesis, %d market gaps\n", len(gaps))
	return types.StateUpdate{
		ProblemStatement: types.String(problem),
		Positioning:      types.String(""),
		DeltaFourLogic:   types.String(""),
		MarketGaps:       gaps,
	}
}

// topPain returns the verified pain with the highest confidence.
func topPain(pains []types.VerifiedPain) *types.VerifiedPain {
	var top *types.VerifiedPain
	for i := range pains {
		if top == nil || pains[i].Confidence > top.Confidence {
			top = &pains[i]
		}
	}
	return top
}
