// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"
	"sort"

	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/pkg/types"
)

const personaInstruction = `You are a market anthropologist. Synthesize one
realistic target-user persona for the given market segment, grounded in the
verified pain points. Respond with JSON only:
{"persona":{"name":"","age_range":"","income_bracket":"","trust_deficit":5,
"language_preference":"","tech_comfort":"","description":"","workaround":
"how they solve the problem today"}}`

type personaPayload struct {
	Persona struct {
		Name               string `json:"name"`
		AgeRange           string `json:"age_range"`
		IncomeBracket      string `json:"income_bracket"`
		TrustDeficit       int    `json:"trust_deficit"`
		LanguagePreference string `json:"language_preference"`
		TechComfort        string `json:"tech_comfort"`
		Description        string `json:"description"`
		Workaround         string `json:"workaround"`
	} `json:"persona"`
}

// Personas synthesizes one persona per configured market segment, in segment
// name order so runs are reproducible. Generation failures yield a skeletal
// persona carrying the segment's configured demographics.
func (s *Stages) Personas(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	names := make([]string, 0, len(s.cfg.Segments))
	for name := range s.cfg.Segments {
		names = append(names, name)
	}
	sort.Strings(names)

	personas := make([]types.Persona, 0, len(names))
	for _, name := range names {
		personas = append(personas, s.synthesizePersona(ctx, st, name, s.cfg.Segments[name]))
	}

	fmt.Fprintf(s.out, "personas: %d synthesized\n", len(personas))
	return types.StateUpdate{Personas: personas}, nil
}

func (s *Stages) synthesizePersona(ctx context.Context, st *types.MarketState, segmentName string, segment types.Segment) types.Persona {
	payload := struct {
		Idea    string               `json:"idea"`
		Segment string               `json:"segment"`
		Profile types.Segment        `json:"segment_profile"`
		Pains   []types.VerifiedPain `json:"verified_pains"`
	}{st.RawIdea, segmentName, segment, st.VerifiedPains}

	if raw, err := s.complete(ctx, personaInstruction, payload); err == nil {
		var parsed personaPayload
		if genai.ExtractJSON(raw, &parsed) && parsed.Persona.Name != "" {
			p := parsed.Persona
			trust := p.TrustDeficit
			if trust < 1 || trust > 10 {
				trust = 5
			}
			return types.Persona{
				Name:               p.Name,
				Segment:            segmentName,
				AgeRange:           p.AgeRange,
				IncomeBracket:      p.IncomeBracket,
				TrustDeficit:       trust,
				LanguagePreference: p.LanguagePreference,
				TechComfort:        p.TechComfort,
				Description:        p.Description,
				Workaround:         p.Workaround,
			}
		}
	}

	return types.Persona{
		Name:          segmentName + " representative",
		Segment:       segmentName,
		IncomeBracket: segment.Income,
		TrustDeficit:  5,
		Description:   segment.Description,
	}
}
