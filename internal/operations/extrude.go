package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// ExtrudeAdapter sweeps a Sketch profile along its plane normal (or an
// explicit Direction override) by Depth, tagging the two end caps and
// the n side faces per §4.3's role table.
type ExtrudeAdapter struct{}

func (ExtrudeAdapter) Tag() string { return "Extrude" }

func (ExtrudeAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	e, ok := op.(types.Extrude)
	if !ok {
		result.AddError("operations: Extrude adapter received a non-Extrude operation")
		return result
	}

	profile, ok := lookupProfile(rc, result, e.SketchFeature, e.ProfileIndex)
	if !ok {
		return result
	}

	direction := profile.Normal
	if e.Direction != nil {
		dref, ok := rc.resolve(result, *e.Direction)
		if !ok {
			return result
		}
		direction = resolveDirection(dref)
	}

	var target *types.SolidHandle
	if e.TargetBody != nil {
		tref, ok := rc.resolve(result, *e.TargetBody)
		if !ok {
			return result
		}
		target = &tref.Solid
	}

	params := kernel.ExtrudeParams{Depth: e.Depth, Symmetric: e.Symmetric, Cut: e.Cut, TargetBody: target, Direction: direction}
	solid, err := rc.Kernel.Extrude(ctx, profile, params)
	if err != nil {
		result.AddError(err.Error())
		return result
	}
	result.Solid = &solid

	if err := populateEntityTable(ctx, rc.Kernel, result, solid); err != nil {
		result.AddError(err.Error())
		return result
	}
	assignExtrudeRoles(result.EntityTable, profile, direction, e.Symmetric)
	return result
}

// assignExtrudeRoles classifies every cap face (normal parallel or
// anti-parallel to direction) by its signed offset from the sketch
// plane's origin along direction. A non-symmetric extrude's near cap
// (offset ~= 0) sits in the sketch plane itself and is ProfileFace; its
// far cap is the opposite end cap. A symmetric extrude has no cap in
// the sketch plane at all (the plane bisects the solid), so both caps
// are classified purely by the sign of their offset. Every remaining
// face is SideFace.
func assignExtrudeRoles(table map[types.KernelId]types.EntityRecord, profile kernel.Profile, direction types.Vec3, symmetric bool) {
	const cosTol = 0.99
	const planeTol = 1e-6
	caps := facesByNormal(table, direction, cosTol)
	caps = append(caps, facesByNormal(table, scale3(direction, -1), cosTol)...)
	if len(caps) == 0 {
		return
	}

	roleOf := map[types.KernelId]types.Role{}
	for _, id := range caps {
		offset := dot3(sub3(table[id].Signature.Centroid, profile.Origin), direction)
		switch {
		case !symmetric && absf(offset) < planeTol:
			roleOf[id] = types.RoleProfileFace
		case offset >= 0:
			roleOf[id] = types.RoleEndCapPositive
		default:
			roleOf[id] = types.RoleEndCapNegative
		}
	}
	byRole := map[types.Role][]types.KernelId{}
	for id, role := range roleOf {
		byRole[role] = append(byRole[role], id)
	}
	for role, ids := range byRole {
		assignRole(table, ids, role)
	}

	var sides []types.KernelId
	for id, rec := range table {
		if rec.Kind != types.KindFace {
			continue
		}
		if _, isCap := roleOf[id]; isCap {
			continue
		}
		sides = append(sides, id)
	}
	assignRole(table, sides, types.RoleSideFace)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
