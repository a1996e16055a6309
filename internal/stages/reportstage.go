// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stages

import (
	"context"
	"fmt"

	"github.com/pdiddy/market-engine/pkg/types"
)

// Report compiles the final artifact from the completed state. This is the
// only stage with a hard failure mode: a run that cannot write its report
// has nothing to show.
func (s *Stages) Report(ctx context.Context, st *types.MarketState) (types.StateUpdate, error) {
	path, err := s.compiler.Compile(st)
	if err != nil {
		return types.StateUpdate{}, fmt.Errorf("compiling report: %w", err)
	}

	fmt.Fprintf(s.out, "report: %s\n", path)
	return types.StateUpdate{FinalReportPath: types.String(path)}, nil
}
