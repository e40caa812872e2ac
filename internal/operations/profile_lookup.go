package operations

import (
	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// lookupProfile fetches a Sketch feature's i-th extracted profile
// directly from the cache, bypassing the resolver: Extrude and Revolve
// address a profile by (sketch_feature, profile_index), not a GeomRef
// (§4.3). It records an error on result and reports ok=false for every
// way this can fail: the sketch feature missing/suppressed/errored, or
// an out-of-range profile index.
func lookupProfile(rc Context, result *types.OpResult, sketchFeature types.FeatureId, profileIndex uint32) (kernel.Profile, bool) {
	state, ok := rc.Cache.Feature(sketchFeature)
	if !ok || !state.Usable() {
		result.AddError("operations: sketch feature unavailable")
		return kernel.Profile{}, false
	}
	if state.Result.Failed() {
		result.AddError("operations: sketch feature errored")
		return kernel.Profile{}, false
	}
	if state.Result.SketchPlane == nil || int(profileIndex) >= len(state.Result.SketchLoops) {
		result.AddError("operations: profile index out of range")
		return kernel.Profile{}, false
	}
	if state.Result.SketchResult == nil || state.Result.SketchResult.Profiles[profileIndex].Winding != "Outer" {
		result.AddError("operations: profile index does not name an outer loop")
		return kernel.Profile{}, false
	}

	basis := *state.Result.SketchPlane
	var holes [][]types.Vec3
	for i, p := range state.Result.SketchResult.Profiles {
		if p.Winding == "Inner" && p.ParentIndex == int(profileIndex) {
			holes = append(holes, state.Result.SketchLoops[i])
		}
	}
	return kernel.Profile{
		Origin: basis.Origin,
		Normal: basis.Normal,
		XAxis:  basis.XAxis,
		Outer:  state.Result.SketchLoops[profileIndex],
		Holes:  holes,
	}, true
}
