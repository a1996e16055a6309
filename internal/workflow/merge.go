// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import "github.com/pdiddy/market-engine/pkg/types"

// Apply folds one stage patch into the run state. Nil patch fields leave the
// state untouched; non-nil fields replace the whole value. There is no deep
// merge: a stage that wants to extend a collection reads the current value,
// builds the full replacement, and returns that.
func Apply(st *types.MarketState, upd types.StateUpdate) {
	if upd.RawPains != nil {
		st.RawPains = upd.RawPains
	}
	if upd.VerifiedPains != nil {
		st.VerifiedPains = upd.VerifiedPains
	}
	if upd.ProblemStatement != nil {
		st.ProblemStatement = *upd.ProblemStatement
	}
	if upd.DeltaFourLogic != nil {
		st.DeltaFourLogic = *upd.DeltaFourLogic
	}

	if upd.Competitors != nil {
		st.Competitors = upd.Competitors
	}
	if upd.MarketGaps != nil {
		st.MarketGaps = upd.MarketGaps
	}
	if upd.Positioning != nil {
		st.Positioning = *upd.Positioning
	}

	if upd.Personas != nil {
		st.Personas = upd.Personas
	}

	if upd.Features != nil {
		st.Features = upd.Features
	}
	if upd.FeatureBuckets != nil {
		st.FeatureBuckets = upd.FeatureBuckets
	}
	if upd.ValidationIssues != nil {
		st.ValidationIssues = upd.ValidationIssues
	}

	if upd.BusinessModel != nil {
		st.BusinessModel = *upd.BusinessModel
	}
	if upd.RevenueModel != nil {
		st.RevenueModel = *upd.RevenueModel
	}
	if upd.Projection != nil {
		st.Projection = upd.Projection
	}

	if upd.Verified != nil {
		st.Verified = *upd.Verified
	}
	if upd.FinanciallyViable != nil {
		st.FinanciallyViable = *upd.FinanciallyViable
	}
	if upd.VerificationRounds != nil {
		st.VerificationRounds = *upd.VerificationRounds
	}
	if upd.ViabilityRounds != nil {
		st.ViabilityRounds = *upd.ViabilityRounds
	}

	if upd.VerificationFeedback != nil {
		st.VerificationFeedback = *upd.VerificationFeedback
	}
	if upd.ViabilityFeedback != nil {
		st.ViabilityFeedback = *upd.ViabilityFeedback
	}

	if upd.FinalReportPath != nil {
		st.FinalReportPath = *upd.FinalReportPath
	}
}
