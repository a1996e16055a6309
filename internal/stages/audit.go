// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"

	"github.com/pdiddy/market-engine/internal/finance"
	"github.com/pdiddy/market-engine/internal/genai"
	"github.com/pdiddy/market-engine/pkg/types"
)

const auditInstruction = `You are a financial auditor for early-stage
products. Estimate the unit economics for this product in its market:
customer acquisition cost, monthly ARPU, gross margin (0 to 1), monthly
churn (0 to 1), and pricing tiers. Also sketch the business model canvas.
Do not compute LTV or ratios. Respond with JSON only:
{"cac":500,"arpu":199,"gross_margin":0.7,"churn_rate":0.05,
"pricing_tiers":{"Basic":99,"Pro":299},
"business_model":{"key_partners":[""],"value_props":[""],
"cost_structure":[""],"revenue_streams":[""]}}`

type auditPayload struct {
	CAC           float64             `json:"cac"`
	ARPU          float64             `json:"arpu"`
	GrossMargin   float64             `json:"gross_margin"`
	ChurnRate     float64             `json:"churn_rate"`
	PricingTiers  map[string]float64  `json:"pricing_tiers"`
	BusinessModel types.BusinessModel `json:"business_model"`
}

// Audit is the viability gate. Generation estimates the unit-economics
// inputs; the financial model does all the math and renders the verdict. A
// failing business case sends the run back to feature ideation with
// remediation feedback until the round budget runs out, at which point the
// run proceeds and the report flags the case as not viable.
func (s *Stages) Audit(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	in, model := s.estimateEconomics(ctx, st)
	out := s.finance.Analyze(in)
	projection := finance.Project(in, 0, 0, 0)

	rounds := st.ViabilityRounds + 1
	fmt.Fprintf(s.out, "audit: LTV/CAC %.2f, viable=%v (round %d)\n",
		out.LTVCACRatio, out.Viable, rounds)

	fin := finance.ToFinancials(in, out)
	upd := types.StateUpdate{
		RevenueModel:    &fin,
		Projection:      projection,
		BusinessModel:   &model,
		ViabilityRounds: types.Int(rounds),
	}

	switch {
	case out.Viable:
		upd.FinanciallyViable = types.Bool(true)
		upd.ViabilityFeedback = types.String(out.Feedback)
	case rounds >= s.cfg.Workflow.MaxViabilityRounds:
		upd.FinanciallyViable = types.Bool(false)
		upd.ViabilityFeedback = types.String(out.Feedback +
			fmt.Sprintf("\nViability budget exhausted after %d rounds; proceeding with the business case as modeled.", rounds))
		fmt.Fprintln(s.out, "audit: budget exhausted, proceeding with available data")
	default:
		upd.FinanciallyViable = types.Bool(false)
		upd.ViabilityFeedback = types.String(out.Feedback)
	}

	return upd, nil
}

// estimateEconomics asks generation for input estimates, falling back to the
// defaults field by field so one bad estimate does not poison the model.
func (s *Stages) estimateEconomics(ctx context.Context, st *types.MarketState) (finance.Inputs, types.BusinessModel) {
	in := finance.Inputs{
		CAC:          defaultCAC,
		ARPU:         defaultARPU,
		GrossMargin:  defaultMargin,
		ChurnRate:    defaultChurn,
		PricingTiers: defaultTiers(),
	}
	model := types.BusinessModel{
		ValueProps:     []string{"Solve: " + firstSentence(st.ProblemStatement)},
		RevenueStreams: []string{"Subscription revenue"},
	}

	payload := struct {
		Idea        string             `json:"idea"`
		Region      string             `json:"region"`
		Features    []types.Feature    `json:"features"`
		Competitors []types.Competitor `json:"competitors"`
	}{st.RawIdea, st.TargetRegion, st.Features, st.Competitors}

	raw, err := s.complete(ctx, auditInstruction, payload)
	if err != nil {
		return in, model
	}

	var parsed auditPayload
	if !genai.ExtractJSON(raw, &parsed) {
		return in, model
	}

	if parsed.CAC > 0 {
		in.CAC = parsed.CAC
	}
	if parsed.ARPU > 0 {
		in.ARPU = parsed.ARPU
	}
	if parsed.GrossMargin > 0 && parsed.GrossMargin <= 1 {
		in.GrossMargin = parsed.GrossMargin
	}
	if parsed.ChurnRate > 0 && parsed.ChurnRate <= 1 {
		in.ChurnRate = parsed.ChurnRate
	}
	if len(parsed.PricingTiers) > 0 {
		in.PricingTiers = parsed.PricingTiers
	}
	if len(parsed.BusinessModel.ValueProps) > 0 || len(parsed.BusinessModel.RevenueStreams) > 0 {
		model = parsed.BusinessModel
	}
	return in, model
}
