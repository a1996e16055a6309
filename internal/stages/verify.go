// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"

	"github.com/pdiddy/market-engine/internal/websearch"
	"github.com/pdiddy/market-engine/pkg/types"
)

// maxSupplementalSources caps how many statistic-search hits are added to a
// claim's source list during verification.
const maxSupplementalSources = 3

// Verify is the evidence gate. It strengthens each genuine pain candidate
// with statistic searches, scores the batch against the trust table, and
// records the verdict. A failed batch sends the run back to discovery with
// per-claim feedback until the round budget runs out, at which point the run
// proceeds with whatever evidence it has.
func (s *Stages) Verify(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	genuine := make([]types.PainCandidate, 0, len(st.RawPains))
	for _, c := range st.RawPains {
		if c.GenuinePain {
			genuine = append(genuine, c)
		}
	}

	for i := range genuine {
		genuine[i].Sources = s.supplementSources(ctx, genuine[i], st.TargetRegion)
	}

	scored, batchOK := s.scorer.ScoreClaims(genuine)

	verified := make([]types.VerifiedPain, 0, len(scored))
	for _, c := range scored {
		if !c.Verified {
			continue
		}
		verified = append(verified, types.VerifiedPain{
			Pain:          c.Pain,
			Stat:          c.Stat,
			Sources:       c.Sources,
			Year:          c.Year,
			Valence:       c.Valence,
			Confidence:    c.Confidence,
			SourceWeights: c.SourceWeights,
		})
	}

	rounds := st.VerificationRounds + 1
	fmt.Fprintf(s.out, "verify: %d of %d claims verified (round %d)\n",
		len(verified), len(scored), rounds)

	upd := types.StateUpdate{
		VerifiedPains:      verified,
		VerificationRounds: types.Int(rounds),
	}

	switch {
	case batchOK:
		upd.Verified = types.Bool(true)
		upd.VerificationFeedback = types.String("")
	case rounds >= s.cfg.Workflow.MaxVerificationRounds:
		// Budget exhausted: proceed with what the evidence supports.
		upd.Verified = types.Bool(true)
		upd.VerificationFeedback = types.String(fmt.Sprintf(
			"Verification budget exhausted after %d rounds; proceeding with available data (%d verified claims).",
			rounds, len(verified)))
		fmt.Fprintln(s.out, "verify: budget exhausted, proceeding with available data")
	default:
		upd.Verified = types.Bool(false)
		upd.VerificationFeedback = types.String(s.scorer.Feedback(scored))
	}

	return upd, nil
}

// supplementSources runs statistic searches for a claim and appends the
// strongest new sources, so a complaint found on Reddit can be verified by
// the business press that reported the same problem.
func (s *Stages) supplementSources(ctx context.Context, c types.PainCandidate, region string) []string {
	queries := websearch.StatisticQueries(c.Pain, region, s.cfg.Search)
	hits := websearch.FanOut(ctx, s.search, queries, s.cfg.Search.MaxResults, s.out)

	sources := c.Sources
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		seen[src] = true
	}

	added := 0
	for _, hit := range hits {
		if added >= maxSupplementalSources {
			break
		}
		if hit.URL == "" || seen[hit.URL] {
			continue
		}
		seen[hit.URL] = true
		sources = append(sources, hit.URL)
		added++
	}
	return sources
}
