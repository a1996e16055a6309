package finance

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/market-engine/pkg/types"
)

func testModel() *Model {
	return NewModel(types.DefaultScoringConfig())
}

func TestLTV(t *testing.T) {
	tests := []struct {
		name   string
		arpu   float64
		margin float64
		churn  float64
		want   float64
	}{
		{"worked example", 199, 0.7, 0.05, 2786},
		{"high churn", 100, 0.5, 0.1, 500},
		{"unit values", 1, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LTV(tt.arpu, tt.margin, tt.churn); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("LTV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLTVInfiniteOnNonPositiveChurn(t *testing.T) {
	for _, churn := range []float64{0, -0.01, -1} {
		if got := LTV(199, 0.7, churn); !math.IsInf(got, 1) {
			t.Errorf("LTV with churn %v = %v, want +Inf", churn, got)
		}
	}
}

func TestPaybackMonths(t *testing.T) {
	got := PaybackMonths(500, 199, 0.7)
	if math.Abs(got-3.5894) > 0.001 {
		t.Errorf("PaybackMonths = %v, want ~3.59", got)
	}

	if got := PaybackMonths(500, 0, 0.7); !math.IsInf(got, 1) {
		t.Errorf("PaybackMonths with zero contribution = %v, want +Inf", got)
	}
}

func TestAnalyzeViableCase(t *testing.T) {
	out := testModel().Analyze(Inputs{CAC: 500, ARPU: 199, GrossMargin: 0.7, ChurnRate: 0.05})

	if out.LTV != 2786.0 {
		t.Errorf("LTV = %v, want 2786.00", out.LTV)
	}
	if out.PaybackMonths != 3.59 {
		t.Errorf("PaybackMonths = %v, want 3.59", out.PaybackMonths)
	}
	if out.LTVCACRatio != 5.57 {
		t.Errorf("ratio = %v, want 5.57", out.LTVCACRatio)
	}
	if !out.Viable {
		t.Error("Viable = false, want true at ratio 5.57 vs threshold 3.0")
	}
	if !strings.Contains(out.Feedback, "viable") {
		t.Errorf("feedback = %q, want confirmation", out.Feedback)
	}
}

func TestAnalyzeFailingCaseRemediation(t *testing.T) {
	in := Inputs{CAC: 1000, ARPU: 100, GrossMargin: 0.5, ChurnRate: 0.1}
	out := testModel().Analyze(in)

	if out.LTV != 500 {
		t.Errorf("LTV = %v, want 500", out.LTV)
	}
	if out.LTVCACRatio != 0.5 {
		t.Errorf("ratio = %v, want 0.5", out.LTVCACRatio)
	}
	if out.Viable {
		t.Error("Viable = true, want false")
	}

	// Each remediation target must individually reach ratio 3.0.
	// target CAC = 100*0.5/0.1/3 = 166.67
	if !strings.Contains(out.Feedback, "Reduce CAC from 1000 to 167") {
		t.Errorf("feedback missing CAC target: %q", out.Feedback)
	}
	// target ARPU = 1000*3*0.1/0.5 = 600
	if !strings.Contains(out.Feedback, "Increase ARPU from 100 to 600") {
		t.Errorf("feedback missing ARPU target: %q", out.Feedback)
	}
	// target churn = 100*0.5/(1000*3) = 1.67%
	if !strings.Contains(out.Feedback, "Reduce monthly churn from 10.0% to 1.7%") {
		t.Errorf("feedback missing churn target: %q", out.Feedback)
	}

	// Cross-check each target analytically.
	if r := LTV(in.ARPU, in.GrossMargin, in.ChurnRate) / (in.ARPU * in.GrossMargin / in.ChurnRate / 3.0); math.Abs(r-3.0) > 1e-9 {
		t.Errorf("CAC target does not hit ratio 3.0: %v", r)
	}
	if r := LTV(600, in.GrossMargin, in.ChurnRate) / in.CAC; math.Abs(r-3.0) > 1e-9 {
		t.Errorf("ARPU target does not hit ratio 3.0: %v", r)
	}
	targetChurn := in.ARPU * in.GrossMargin / (in.CAC * 3.0)
	if r := LTV(in.ARPU, in.GrossMargin, targetChurn) / in.CAC; math.Abs(r-3.0) > 1e-9 {
		t.Errorf("churn target does not hit ratio 3.0: %v", r)
	}
}

func TestAnalyzeInfiniteRatioOnZeroCAC(t *testing.T) {
	out := testModel().Analyze(Inputs{CAC: 0, ARPU: 100, GrossMargin: 0.5, ChurnRate: 0.05})
	if !math.IsInf(out.LTVCACRatio, 1) {
		t.Errorf("ratio = %v, want +Inf", out.LTVCACRatio)
	}
	if !out.Viable {
		t.Error("infinite ratio must be viable")
	}
}

func TestProjectDeterministic(t *testing.T) {
	in := Inputs{CAC: 500, ARPU: 199, GrossMargin: 0.7, ChurnRate: 0.05}

	first := Project(in, 0, 0, 0)
	second := Project(in, 0, 0, 0)

	if len(first) != DefaultProjectionMonths {
		t.Fatalf("len = %d, want %d", len(first), DefaultProjectionMonths)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Project is not deterministic on identical inputs")
	}
}

func TestProjectFirstMonths(t *testing.T) {
	in := Inputs{CAC: 500, ARPU: 199, GrossMargin: 0.7, ChurnRate: 0.05}
	rows := Project(in, 3, 100, 0.1)

	// Month 1: new = floor(100*0.1) = 10, churned = floor(100*0.05) = 5,
	// customers = 105, revenue = 105*199 = 20895.
	m1 := rows[0]
	if m1.NewCustomers != 10 || m1.Churned != 5 || m1.Customers != 105 {
		t.Errorf("month 1 = %+v", m1)
	}
	if m1.Revenue != 20895 {
		t.Errorf("month 1 revenue = %v, want 20895", m1.Revenue)
	}
	if m1.GrossProfit != round2(20895*0.7) {
		t.Errorf("month 1 gross profit = %v", m1.GrossProfit)
	}
	if m1.CACSpend != 5000 {
		t.Errorf("month 1 CAC spend = %v, want 5000", m1.CACSpend)
	}
	if m1.CumulativeRevenue != m1.Revenue {
		t.Errorf("month 1 cumulative revenue = %v", m1.CumulativeRevenue)
	}

	// Month 2: new = floor(105*0.1) = 10, churned = floor(105*0.05) = 5,
	// customers = 110.
	m2 := rows[1]
	if m2.Customers != 110 {
		t.Errorf("month 2 customers = %d, want 110", m2.Customers)
	}
	if m2.CumulativeRevenue != round2(m1.Revenue+m2.Revenue) {
		t.Errorf("cumulative revenue = %v", m2.CumulativeRevenue)
	}
}

func TestToFinancials(t *testing.T) {
	in := Inputs{CAC: 500, ARPU: 199, GrossMargin: 0.7, ChurnRate: 0.05,
		PricingTiers: map[string]float64{"Basic": 99, "Pro": 299}}
	out := testModel().Analyze(in)

	fin := ToFinancials(in, out)
	if fin.LTV != out.LTV || fin.CAC != in.CAC || fin.PricingTiers["Pro"] != 299 {
		t.Errorf("ToFinancials lost fields: %+v", fin)
	}
}
