// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/market-engine/internal/confidence"
	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/internal/websearch"
	"github.com/pdiddy/market-engine/pkg/types"
)

const competitorInstruction = `You are a competitive analyst. From the search
results, identify the rival products solving this problem. For each, state
what it does best, where it lags, and what it lacks entirely. Respond with
JSON only:
{"competitors":[{"name":"","url":"","features":[""],"best_at":"","lag":"",
"lack":"","gap":"opportunity their weakness opens"}]}`

type competitorPayload struct {
	Competitors []struct {
		Name     string   `json:"name"`
		URL      string   `json:"url"`
		Features []string `json:"features"`
		BestAt   string   `json:"best_at"`
		Lag      string   `json:"lag"`
		Lack     string   `json:"lack"`
		Gap      string   `json:"gap"`
	} `json:"competitors"`
}

// Competitors profiles rival products: generation names and positions them
// from search evidence, then each site is scraped for dark patterns and
// pricing signals. An unreachable site keeps its profile; it just carries no
// scrape intel.
func (s *Stages) Competitors(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	queries := websearch.CompetitorQueries(st.RawIdea, st.TargetRegion)
	hits := websearch.FanOut(ctx, s.search, queries, s.cfg.Search.MaxResults, s.out)

	competitors := s.identifyCompetitors(ctx, st, hits)
	if limit := s.cfg.Scrape.MaxCompetitors; limit > 0 && len(competitors) > limit {
		competitors = competitors[:limit]
	}

	for i := range competitors {
		if competitors[i].URL == "" {
			continue
		}
		intel := s.scraper.Analyze(ctx, competitors[i].URL, s.out)
		if !intel.Accessible {
			continue
		}
		competitors[i].DarkPatterns = intel.DarkPatterns
		competitors[i].SuspicionScore = intel.SuspicionScore
		competitors[i].Prices = intel.Prices
		competitors[i].Tiers = intel.Tiers
	}

	fmt.Fprintf(s.out, "competitors: %d profiled\n", len(competitors))
	return types.StateUpdate{Competitors: competitors}, nil
}

// identifyCompetitors asks generation to profile rivals from the hits, with
// a host-derived fallback when generation yields nothing.
func (s *Stages) identifyCompetitors(ctx context.Context, st *types.MarketState, hits []websearch.Result) []types.Competitor {
	payload := struct {
		Idea   string             `json:"idea"`
		Region string             `json:"region"`
		Hits   []websearch.Result `json:"search_results"`
	}{st.RawIdea, st.TargetRegion, hits}

	if raw, err := s.complete(ctx, competitorInstruction, payload); err == nil {
		var parsed competitorPayload
		if genai.ExtractJSON(raw, &parsed) && len(parsed.Competitors) > 0 {
			competitors := make([]types.Competitor, 0, len(parsed.Competitors))
			for _, c := range parsed.Competitors {
				if c.Name == "" {
					continue
				}
				competitors = append(competitors, types.Competitor{
					Name:     c.Name,
					URL:      c.URL,
					Features: c.Features,
					BestAt:   c.BestAt,
					Lag:      c.Lag,
					Lack:     c.Lack,
					Gap:      c.Gap,
				})
			}
			return competitors
		}
	}

	// Fallback: one competitor per distinct hit host.
	var competitors []types.Competitor
	seen := make(map[string]bool)
	for _, hit := range hits {
		host := confidence.Host(hit.URL)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		competitors = append(competitors, types.Competitor{
			Name: strings.TrimSuffix(host, ".com"),
			URL:  hit.URL,
		})
	}
	return competitors
}
