package workflow

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/market-engine/pkg/types"
)

// recordingStages builds a full stage table from per-stage behaviors, tracking
// visit order. Unlisted stages default to a no-op patch.
type recordingStages struct {
	visits []Stage
}

func (r *recordingStages) table(overrides map[Stage]StageFunc) map[Stage]StageFunc {
	table := make(map[Stage]StageFunc)
	for _, s := range []Stage{
		StageDiscovery, StageVerify, StageCompetitors, StagePersonas,
		StageAnalysis, StageFeatures, StageAudit, StageReport,
	} {
		stage := s
		fn, ok := overrides[stage]
		if !ok {
			fn = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
				return types.StateUpdate{}, nil
			}
		}
		table[stage] = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
			r.visits = append(r.visits, stage)
			return fn(ctx, st)
		}
	}
	return table
}

func (r *recordingStages) count(s Stage) int {
	n := 0
	for _, v := range r.visits {
		if v == s {
			n++
		}
	}
	return n
}

func passingGates() map[Stage]StageFunc {
	return map[Stage]StageFunc{
		StageVerify: func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
			return types.StateUpdate{Verified: types.Bool(true)}, nil
		},
		StageAudit: func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
			return types.StateUpdate{FinanciallyViable: types.Bool(true)}, nil
		},
	}
}

func testConfig() types.WorkflowConfig {
	return types.WorkflowConfig{MaxVerificationRounds: 3, MaxViabilityRounds: 2}
}

func TestRunHappyPathVisitsEachStageOnce(t *testing.T) {
	rec := &recordingStages{}
	m := NewMachine(rec.table(passingGates()), testConfig(), io.Discard)

	st := types.NewMarketState("idea", "India")
	if err := m.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []Stage{
		StageDiscovery, StageVerify, StageCompetitors, StagePersonas,
		StageAnalysis, StageFeatures, StageAudit, StageReport,
	}
	if len(rec.visits) != len(want) {
		t.Fatalf("visits = %v, want %v", rec.visits, want)
	}
	for i := range want {
		if rec.visits[i] != want[i] {
			t.Errorf("visit %d = %s, want %s", i, rec.visits[i], want[i])
		}
	}
}

func TestRunVerificationLoopBounded(t *testing.T) {
	rec := &recordingStages{}
	overrides := passingGates()
	// Verify never passes; it increments its round counter each time, the way
	// the real gate stage does.
	overrides[StageVerify] = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
		return types.StateUpdate{
			Verified:           types.Bool(false),
			VerificationRounds: types.Int(st.VerificationRounds + 1),
		}, nil
	}
	m := NewMachine(rec.table(overrides), testConfig(), io.Discard)

	st := types.NewMarketState("idea", "India")
	if err := m.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Round budget 3: initial pass plus re-entries until rounds reach the cap.
	if got := rec.count(StageDiscovery); got != 3 {
		t.Errorf("discovery visits = %d, want 3", got)
	}
	if got := rec.count(StageVerify); got != 3 {
		t.Errorf("verify visits = %d, want 3", got)
	}
	if st.VerificationRounds != 3 {
		t.Errorf("VerificationRounds = %d, want 3", st.VerificationRounds)
	}
	// The run proceeds past the gate once the budget is exhausted.
	if got := rec.count(StageReport); got != 1 {
		t.Errorf("report visits = %d, want 1", got)
	}
}

func TestRunViabilityLoopBounded(t *testing.T) {
	rec := &recordingStages{}
	overrides := passingGates()
	overrides[StageAudit] = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
		return types.StateUpdate{
			FinanciallyViable: types.Bool(false),
			ViabilityRounds:   types.Int(st.ViabilityRounds + 1),
		}, nil
	}
	m := NewMachine(rec.table(overrides), testConfig(), io.Discard)

	st := types.NewMarketState("idea", "India")
	if err := m.Run(context.Background(), st); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := rec.count(StageFeatures); got != 2 {
		t.Errorf("features visits = %d, want 2", got)
	}
	if got := rec.count(StageAudit); got != 2 {
		t.Errorf("audit visits = %d, want 2", got)
	}
	// The verification loop must not be re-entered by the viability loop.
	if got := rec.count(StageDiscovery); got != 1 {
		t.Errorf("discovery visits = %d, want 1", got)
	}
	if got := rec.count(StageReport); got != 1 {
		t.Errorf("report visits = %d, want 1", got)
	}
}

func TestRunLoopTerminatesForAnyBudget(t *testing.T) {
	for budget := 0; budget <= 5; budget++ {
		rec := &recordingStages{}
		overrides := passingGates()
		overrides[StageVerify] = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
			return types.StateUpdate{
				Verified:           types.Bool(false),
				VerificationRounds: types.Int(st.VerificationRounds + 1),
			}, nil
		}
		cfg := types.WorkflowConfig{MaxVerificationRounds: budget, MaxViabilityRounds: 2}
		m := NewMachine(rec.table(overrides), cfg, io.Discard)

		st := types.NewMarketState("idea", "India")
		if err := m.Run(context.Background(), st); err != nil {
			t.Fatalf("budget %d: Run: %v", budget, err)
		}

		wantVerify := budget
		if wantVerify < 1 {
			wantVerify = 1
		}
		if got := rec.count(StageVerify); got != wantVerify {
			t.Errorf("budget %d: verify visits = %d, want %d", budget, got, wantVerify)
		}
	}
}

func TestRunStageErrorStopsRun(t *testing.T) {
	rec := &recordingStages{}
	wantErr := errors.New("search backend down")
	overrides := passingGates()
	overrides[StageCompetitors] = func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
		return types.StateUpdate{}, wantErr
	}
	m := NewMachine(rec.table(overrides), testConfig(), io.Discard)

	st := types.NewMarketState("idea", "India")
	err := m.Run(context.Background(), st)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run error = %v, want wrapped %v", err, wantErr)
	}
	if !strings.Contains(err.Error(), "competitors") {
		t.Errorf("error does not name the stage: %v", err)
	}
	// State keeps everything applied before the failure.
	if !st.Verified {
		t.Error("verify patch lost after downstream failure")
	}
	if got := rec.count(StagePersonas); got != 0 {
		t.Errorf("personas ran after failure: %d visits", got)
	}
}

func TestRunMissingStageHandler(t *testing.T) {
	m := NewMachine(map[Stage]StageFunc{}, testConfig(), io.Discard)
	err := m.Run(context.Background(), types.NewMarketState("idea", "India"))
	if err == nil || !strings.Contains(err.Error(), "discovery") {
		t.Errorf("err = %v, want missing-handler error naming discovery", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	rec := &recordingStages{}
	m := NewMachine(rec.table(passingGates()), testConfig(), io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx, types.NewMarketState("idea", "India"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(rec.visits) != 0 {
		t.Errorf("stages ran after cancellation: %v", rec.visits)
	}
}

func TestRunWritesProgress(t *testing.T) {
	rec := &recordingStages{}
	var buf strings.Builder
	m := NewMachine(rec.table(passingGates()), testConfig(), &buf)

	if err := m.Run(context.Background(), types.NewMarketState("idea", "India")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, s := range []string{"discovery", "verify", "report"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("progress output missing %q:\n%s", s, buf.String())
		}
	}
}
