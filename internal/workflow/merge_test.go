package workflow

import (
	"reflect"
	"testing"

	"github.com/pdiddy/market-engine/pkg/types"
)

func TestApplyNilFieldsLeaveStateUntouched(t *testing.T) {
	st := types.NewMarketState("upi reconciliation tool", "India")
	st.ProblemStatement = "original"
	st.Verified = true
	st.VerificationRounds = 2
	st.RawPains = []types.PainCandidate{{Pain: "manual matching"}}

	before := *st
	Apply(st, types.StateUpdate{})

	if !reflect.DeepEqual(before, *st) {
		t.Errorf("empty patch changed state:\nbefore %+v\nafter  %+v", before, *st)
	}
}

func TestApplyReplacesWholeValue(t *testing.T) {
	st := types.NewMarketState("idea", "India")
	st.RawPains = []types.PainCandidate{{Pain: "old one"}, {Pain: "old two"}}
	st.MarketGaps = []string{"old gap"}

	Apply(st, types.StateUpdate{
		RawPains:         []types.PainCandidate{{Pain: "new"}},
		ProblemStatement: types.String("users lose hours reconciling payments"),
		Verified:         types.Bool(true),
		VerificationRounds: types.Int(1),
	})

	if len(st.RawPains) != 1 || st.RawPains[0].Pain != "new" {
		t.Errorf("RawPains not replaced: %+v", st.RawPains)
	}
	if st.ProblemStatement != "users lose hours reconciling payments" {
		t.Errorf("ProblemStatement = %q", st.ProblemStatement)
	}
	if !st.Verified || st.VerificationRounds != 1 {
		t.Errorf("control fields not applied: verified=%v rounds=%d", st.Verified, st.VerificationRounds)
	}
	if len(st.MarketGaps) != 1 || st.MarketGaps[0] != "old gap" {
		t.Errorf("untouched MarketGaps changed: %+v", st.MarketGaps)
	}
}

func TestApplyEmptyNonNilSliceClears(t *testing.T) {
	st := types.NewMarketState("idea", "India")
	st.ValidationIssues = []string{"reach must be positive"}

	Apply(st, types.StateUpdate{ValidationIssues: []string{}})

	if len(st.ValidationIssues) != 0 {
		t.Errorf("empty non-nil slice did not clear: %+v", st.ValidationIssues)
	}
}

func TestApplyLastWriterWins(t *testing.T) {
	st := types.NewMarketState("idea", "India")

	Apply(st, types.StateUpdate{Positioning: types.String("first")})
	Apply(st, types.StateUpdate{Positioning: types.String("second")})

	if st.Positioning != "second" {
		t.Errorf("Positioning = %q, want second", st.Positioning)
	}
}

func TestApplyStructPointers(t *testing.T) {
	st := types.NewMarketState("idea", "India")

	Apply(st, types.StateUpdate{
		BusinessModel: &types.BusinessModel{ValueProps: []string{"instant reconciliation"}},
		RevenueModel:  &types.Financials{CAC: 500, ARPU: 199},
	})

	if len(st.BusinessModel.ValueProps) != 1 {
		t.Errorf("BusinessModel not applied: %+v", st.BusinessModel)
	}
	if st.RevenueModel.CAC != 500 || st.RevenueModel.ARPU != 199 {
		t.Errorf("RevenueModel not applied: %+v", st.RevenueModel)
	}
}
