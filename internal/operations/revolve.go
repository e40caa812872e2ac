package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// RevolveAdapter sweeps a Sketch profile about an explicit axis, tagging
// faces whose normal lies along the axis AxisFace and its cylindrical
// faces SideFace (see assignRevolveRoles).
type RevolveAdapter struct{}

func (RevolveAdapter) Tag() string { return "Revolve" }

func (RevolveAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	r, ok := op.(types.Revolve)
	if !ok {
		result.AddError("operations: Revolve adapter received a non-Revolve operation")
		return result
	}

	profile, ok := lookupProfile(rc, result, r.SketchFeature, r.ProfileIndex)
	if !ok {
		return result
	}

	params := kernel.RevolveParams{AxisOrigin: r.AxisOrigin, AxisDir: r.AxisDir, Angle: r.Angle}
	solid, err := rc.Kernel.Revolve(ctx, profile, params)
	if err != nil {
		result.AddError(err.Error())
		return result
	}
	result.Solid = &solid

	if err := populateEntityTable(ctx, rc.Kernel, result, solid); err != nil {
		result.AddError(err.Error())
		return result
	}
	assignRevolveRoles(result.EntityTable, r.AxisDir)
	return result
}

// assignRevolveRoles tags every face whose normal is parallel or
// antiparallel to axisDir (within cosTol) as AxisFace, and every other
// face on a Cylinder surface as SideFace. Any remaining face, such as
// the two planar end faces of a partial revolve, stays unassigned
// (HasRole false) and resolves only by Signature or Query.
func assignRevolveRoles(table map[types.KernelId]types.EntityRecord, axisDir types.Vec3) {
	const cosTol = 0.99
	axisFaces := append(facesByNormal(table, axisDir, cosTol), facesByNormal(table, scale3(axisDir, -1), cosTol)...)
	axisSet := map[types.KernelId]bool{}
	for _, id := range axisFaces {
		axisSet[id] = true
	}
	if len(axisFaces) > 0 {
		assignRole(table, axisFaces, types.RoleAxisFace)
	}

	var sides []types.KernelId
	for id, rec := range table {
		if rec.Kind == types.KindFace && !axisSet[id] && rec.Signature.Surface == types.SurfaceCylinder {
			sides = append(sides, id)
		}
	}
	assignRole(table, sides, types.RoleSideFace)
}
