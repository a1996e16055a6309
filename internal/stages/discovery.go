// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/internal/websearch"
	"github.com/pdiddy/market-engine/pkg/types"
)

const discoveryInstruction = `You are a market researcher. From the search
results, distill the distinct pain points users express about the idea.
Respond with JSON only:
{"pains":[{"pain":"one-sentence problem","raw_quote":"verbatim complaint",
"stat":"numerical evidence or empty","sources":["url"],"year":2025}]}`

// discoveryPayload is the JSON shape the generation model returns for
// pain-point distillation.
type discoveryPayload struct {
	Pains []struct {
		Pain     string   `json:"pain"`
		RawQuote string   `json:"raw_quote"`
		Stat     string   `json:"stat"`
		Sources  []string `json:"sources"`
		Year     int      `json:"year"`
	} `json:"pains"`
}

// Discovery searches community and regional sources for complaints about the
// idea and distills them into pain candidates, each annotated with its
// sentiment valence. On a verification loop re-entry the previous round's
// feedback steers the distillation toward stronger evidence.
func (s *Stages) Discovery(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	queries := websearch.ComplaintQueries(st.RawIdea, st.TargetRegion, s.cfg.Search)
	hits := websearch.FanOut(ctx, s.search, queries, s.cfg.Search.MaxResults, s.out)
	fmt.Fprintf(s.out, "discovery: %d search hits\n", len(hits))

	candidates := s.distillPains(ctx, st, hits)
	annotated := s.gate.Annotate(candidates)
	fmt.Fprintf(s.out, "discovery: %d pain candidates (%d genuine)\n",
		len(annotated), countGenuine(annotated))

	return types.StateUpdate{RawPains: annotated}, nil
}

// distillPains asks the generation model to distill candidates from the
// hits; when that yields nothing it falls back to one raw candidate per hit.
func (s *Stages) distillPains(ctx context.Context, st *types.MarketState, hits []websearch.Result) []types.PainCandidate {
	payload := struct {
		Idea     string             `json:"idea"`
		Region   string             `json:"region"`
		Feedback string             `json:"previous_feedback,omitempty"`
		Hits     []websearch.Result `json:"search_results"`
	}{st.RawIdea, st.TargetRegion, st.VerificationFeedback, hits}

	if raw, err := s.complete(ctx, discoveryInstruction, payload); err == nil {
		var parsed discoveryPayload
		if genai.ExtractJSON(raw, &parsed) && len(parsed.Pains) > 0 {
			candidates := make([]types.PainCandidate, 0, len(parsed.Pains))
			for _, p := range parsed.Pains {
				candidates = append(candidates, types.PainCandidate{
					Pain:     p.Pain,
					RawQuote: p.RawQuote,
					Stat:     p.Stat,
					Sources:  p.Sources,
					Year:     p.Year,
				})
			}
			return candidates
		}
	}

	// Fallback: the raw hits themselves, one candidate each.
	candidates := make([]types.PainCandidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, types.PainCandidate{
			Pain:     hit.Title,
			RawQuote: hit.Content,
			Sources:  []string{hit.URL},
		})
	}
	return candidates
}

// complete marshals the payload and calls the generation backend.
func (s *Stages) complete(ctx context.Context, instruction string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	raw, err := s.ai.Complete(ctx, instruction, string(data))
	if err != nil {
		fmt.Fprintf(s.out, "warning: generation failed: %v\n", err)
		return "", err
	}
	return raw, nil
}

func countGenuine(candidates []types.PainCandidate) int {
	n := 0
	for _, c := range candidates {
		if c.GenuinePain {
			n++
		}
	}
	return n
}

// firstSentence truncates text to its first sentence for compact summaries.
func firstSentence(text string) string {
	if i := strings.IndexAny(text, ".!?"); i > 0 {
		return text[:i+1]
	}
	return text
}
