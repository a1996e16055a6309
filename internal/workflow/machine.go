// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow runs the staged research pipeline as an explicit state
// machine. Stages are pure-ish functions over a shared MarketState record:
// each reads the state, does its work, and returns a declarative StateUpdate
// patch. The machine owns the single state instance, applies patches in stage
// order, and decides the next stage from the freshly patched state, so the
// two feedback loops (verification and viability) are driven entirely by
// recorded fields and bounded by their own round budgets.
package workflow

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Stage names one pipeline stage. The zero value is not a valid stage.
type Stage string

const (
	// StageDiscovery searches for user complaints and distills pain candidates.
	StageDiscovery Stage = "discovery"

	// StageVerify scores pain candidates against the trust table and either
	// passes the batch or sends the run back to discovery with feedback.
	StageVerify Stage = "verify"

	// StageCompetitors scrapes and profiles rival products.
	StageCompetitors Stage = "competitors"

	// StagePersonas synthesizes target-user profiles per market segment.
	StagePersonas Stage = "personas"

	// StageAnalysis derives market gaps and positioning from the research.
	StageAnalysis Stage = "analysis"

	// StageFeatures proposes features and ranks them with RICE.
	StageFeatures Stage = "features"

	// StageAudit audits unit economics and either passes the business case or
	// sends the run back to features with remediation feedback.
	StageAudit Stage = "audit"

	// StageReport compiles the final report artifact.
	StageReport Stage = "report"

	// StageDone is the terminal stage; the machine stops when it is reached.
	StageDone Stage = "done"
)

// StageFunc does one stage's work. It must not mutate st; all changes go
// through the returned patch.
type StageFunc func(ctx context.Context, st *types.MarketState) (types.StateUpdate, error)

// Machine sequences stages over one MarketState.
type Machine struct {
	stages map[Stage]StageFunc
	cfg    types.WorkflowConfig
	out    io.Writer
}

// NewMachine builds a machine from a stage table. Progress lines are written
// to out; pass io.Discard to silence them.
func NewMachine(stages map[Stage]StageFunc, cfg types.WorkflowConfig, out io.Writer) *Machine {
	return &Machine{stages: stages, cfg: cfg, out: out}
}

// Run drives st from StageDiscovery to StageDone, applying each stage's patch
// before deciding the next stage. The state is left at whatever the last
// successful stage produced, so a failed run can still be archived. Run is
// single-threaded; ctx is checked between stages.
func (m *Machine) Run(ctx context.Context, st *types.MarketState) error {
	stage := StageDiscovery
	for stage != StageDone {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("workflow interrupted at stage %s: %w", stage, err)
		}

		fn, ok := m.stages[stage]
		if !ok {
			return fmt.Errorf("no handler registered for stage %s", stage)
		}

		fmt.Fprintf(m.out, "==> %s\n", stage)
		upd, err := fn(ctx, st)
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
		Apply(st, upd)

		stage = m.next(stage, st)
	}
	return nil
}

// next reads the freshly patched state and returns the following stage. The
// loop predicates live here and nowhere else: a gate stage records its verdict
// and round count, the machine routes on them.
func (m *Machine) next(stage Stage, st *types.MarketState) Stage {
	switch stage {
	case StageDiscovery:
		return StageVerify
	case StageVerify:
		if !st.Verified && st.VerificationRounds < m.cfg.MaxVerificationRounds {
			return StageDiscovery
		}
		return StageCompetitors
	case StageCompetitors:
		return StagePersonas
	case StagePersonas:
		return StageAnalysis
	case StageAnalysis:
		return StageFeatures
	case StageFeatures:
		return StageAudit
	case StageAudit:
		if !st.FinanciallyViable && st.ViabilityRounds < m.cfg.MaxViabilityRounds {
			return StageFeatures
		}
		return StageReport
	case StageReport:
		return StageDone
	default:
		return StageDone
	}
}
