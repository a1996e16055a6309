// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finance computes unit economics for a proposed business case. The
// generation stage only estimates inputs (CAC, ARPU, margin, churn); this
// package does the math and renders the viability verdict, so the audit gate
// is deterministic.
//
// Formulas:
//
//	LTV     = (ARPU × gross margin) / monthly churn
//	Payback = CAC / (ARPU × gross margin)
//	Ratio   = LTV / CAC   (viable when ≥ the configured threshold)
package finance

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Inputs are the unit-economics estimates under audit.
type Inputs struct {
	CAC          float64
	ARPU         float64
	GrossMargin  float64
	ChurnRate    float64
	PricingTiers map[string]float64
}

// Outputs are the derived metrics and the viability verdict.
type Outputs struct {
	LTV                 float64
	LTVCACRatio         float64
	PaybackMonths       float64
	MonthlyContribution float64
	Viable              bool

	// Feedback explains the verdict: a confirmation when viable, targeted
	// remediation suggestions when not.
	Feedback string
}

// Model audits inputs against one immutable viability threshold.
type Model struct {
	minRatio float64
}

// NewModel builds a Model using the viability threshold from cfg.
func NewModel(cfg types.ScoringConfig) *Model {
	return &Model{minRatio: cfg.MinLTVCACRatio}
}

// LTV is (ARPU × gross margin) / churn. Zero or negative churn means
// customers never leave, so LTV is +Inf — deliberately not clamped; callers
// must handle the infinite case when rendering or comparing.
func LTV(arpu, grossMargin, churnRate float64) float64 {
	if churnRate <= 0 {
		return math.Inf(1)
	}
	return arpu * grossMargin / churnRate
}

// PaybackMonths is CAC / (ARPU × gross margin), +Inf when the monthly
// contribution is zero or negative.
func PaybackMonths(cac, arpu, grossMargin float64) float64 {
	contribution := arpu * grossMargin
	if contribution <= 0 {
		return math.Inf(1)
	}
	return cac / contribution
}

// Analyze computes all derived metrics and the verdict for one set of inputs.
func (m *Model) Analyze(in Inputs) Outputs {
	ltv := LTV(in.ARPU, in.GrossMargin, in.ChurnRate)
	payback := PaybackMonths(in.CAC, in.ARPU, in.GrossMargin)

	ratio := math.Inf(1)
	if in.CAC > 0 {
		ratio = ltv / in.CAC
	}

	out := Outputs{
		LTV:                 round2(ltv),
		LTVCACRatio:         round2(ratio),
		PaybackMonths:       round2(payback),
		MonthlyContribution: round2(in.ARPU * in.GrossMargin),
		Viable:              ratio >= m.minRatio,
	}

	if out.Viable {
		out.Feedback = fmt.Sprintf(
			"Financially viable: LTV/CAC ratio %.2f meets the minimum of %.1f.",
			ratio, m.minRatio)
	} else {
		out.Feedback = m.remediation(in, ratio)
	}
	return out
}

// remediation inverts each formula to the input value that would satisfy the
// threshold with the other two inputs held fixed. A suggestion is only
// emitted when it actually moves the input in a favorable direction.
func (m *Model) remediation(in Inputs, ratio float64) string {
	lines := []string{
		fmt.Sprintf("Not viable: LTV/CAC ratio %.2f is below the minimum of %.1f.", ratio, m.minRatio),
		"Suggestions:",
	}

	if in.ChurnRate > 0 && in.CAC > 0 {
		targetCAC := in.ARPU * in.GrossMargin / in.ChurnRate / m.minRatio
		if targetCAC < in.CAC {
			lines = append(lines, fmt.Sprintf(
				"- Reduce CAC from %.0f to %.0f (organic growth, referrals, cheaper channels)",
				in.CAC, targetCAC))
		}

		if in.GrossMargin > 0 {
			targetARPU := in.CAC * m.minRatio * in.ChurnRate / in.GrossMargin
			if targetARPU > in.ARPU {
				lines = append(lines, fmt.Sprintf(
					"- Increase ARPU from %.0f to %.0f (premium tiers, upsells, usage-based pricing)",
					in.ARPU, targetARPU))
			}
		}

		targetChurn := in.ARPU * in.GrossMargin / (in.CAC * m.minRatio)
		if targetChurn < in.ChurnRate {
			lines = append(lines, fmt.Sprintf(
				"- Reduce monthly churn from %.1f%% to %.1f%% (better onboarding, stickiness features)",
				in.ChurnRate*100, targetChurn*100))
		}
	}

	return strings.Join(lines, "\n")
}

// ToFinancials packs inputs and outputs into the shared state record.
func ToFinancials(in Inputs, out Outputs) types.Financials {
	return types.Financials{
		CAC:                 in.CAC,
		ARPU:                in.ARPU,
		GrossMargin:         in.GrossMargin,
		ChurnRate:           in.ChurnRate,
		PricingTiers:        in.PricingTiers,
		LTV:                 out.LTV,
		LTVCACRatio:         out.LTVCACRatio,
		PaybackMonths:       out.PaybackMonths,
		MonthlyContribution: out.MonthlyContribution,
	}
}

func round2(v float64) float64 {
	if math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
