package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/sketch"
	"github.com/waffle-iron/core/internal/types"
)

// SketchAdapter resolves a Sketch feature's working plane, solves its
// constraint system, and packages every extracted closed profile as a
// Profile(i) output. Profiles carry no KernelId (the kernel has not
// been invoked yet) so, unlike every other adapter, this one does not
// populate EntityTable; Extrude and Revolve read SketchResult/
// SketchPlane directly instead of resolving a GeomRef against it.
type SketchAdapter struct{}

func (SketchAdapter) Tag() string { return "Sketch" }

func (SketchAdapter) Apply(_ context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	s, ok := op.(types.Sketch)
	if !ok {
		result.AddError("operations: Sketch adapter received a non-Sketch operation")
		return result
	}

	plane, ok := rc.resolve(result, s.PlaneRef)
	if !ok {
		return result
	}
	basis := planeBasisOf(plane)
	result.SketchPlane = &basis

	solved := sketch.Solve(&s)
	result.SketchResult = &solved
	if solved.Status.Kind == "OverConstrained" || solved.Status.Kind == "SolveFailed" {
		result.AddError("sketch: " + solved.Status.Kind)
	}

	result.SketchLoops = make([][]types.Vec3, len(solved.Profiles))
	for i, p := range solved.Profiles {
		result.SketchLoops[i] = sketch.LoopPoints(s.Entities, solved.Positions, p)
		// Inner loops (holes) are not independently addressable
		// profiles: lookupProfile gathers them under their enclosing
		// Outer loop's Profile(i) output via ClosedProfile.ParentIndex.
		if p.Winding == "Outer" {
			result.Outputs[types.ProfileOutput(uint32(i))] = nil
		}
	}
	return result
}

// planeBasisOf converts a resolver.Result (either a datum's own basis or
// a resolved planar face's signature) into a PlaneBasis.
func planeBasisOf(r resolver.Result) types.PlaneBasis {
	if r.IsDatum {
		return types.PlaneBasis{Origin: r.Datum.Origin, Normal: r.Datum.Normal, XAxis: r.Datum.XAxis}
	}
	n := normalize3(r.Record.Signature.Normal)
	return types.PlaneBasis{Origin: r.Record.Signature.Centroid, Normal: n, XAxis: deriveXAxis(n)}
}
