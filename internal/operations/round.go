package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

// roundEdges implements the shared shape of Fillet and Chamfer: resolve
// every edge GeomRef (they must all land on the same body — a fillet or
// chamfer operates on one solid at a time), call kernelCall, tag the new
// faces with role, and record Rewrites for every face that is untouched
// by the operation (preserved verbatim from the input, discovered by
// KernelId: anything present in both the input and output entity tables
// with an identical signature carried over).
func roundEdges(
	ctx context.Context, rc Context, result *types.OpResult,
	edgeRefs []types.GeomRef, role types.Role,
	kernelCall func(context.Context, types.SolidHandle, []types.KernelId) (types.SolidHandle, error),
) {
	var body types.SolidHandle
	var bodySet bool
	var edgeIDs []types.KernelId
	var inputTable map[types.KernelId]types.EntityRecord
	var inputFeature types.FeatureId

	for _, ref := range edgeRefs {
		res, ok := rc.resolve(result, ref)
		if !ok {
			return
		}
		if !bodySet {
			body, bodySet = res.Solid, true
			inputFeature = ref.Anchor.Feature
			if state, ok := rc.Cache.Feature(ref.Anchor.Feature); ok && state.Usable() {
				inputTable = state.Result.EntityTable
			}
		} else if res.Solid != body {
			result.AddError("operations: edges span more than one body")
			return
		}
		edgeIDs = append(edgeIDs, res.KernelID)
	}
	if !bodySet {
		result.AddError("operations: no edges resolved")
		return
	}

	out, err := kernelCall(ctx, body, edgeIDs)
	if err != nil {
		result.AddError(err.Error())
		return
	}
	result.Solid = &out

	if err := populateEntityTable(ctx, rc.Kernel, result, out); err != nil {
		result.AddError(err.Error())
		return
	}

	var newFaces []types.KernelId
	for id, rec := range result.EntityTable {
		if rec.Kind != types.KindFace {
			continue
		}
		if inputRec, ok := inputTable[id]; ok {
			if signaturesMatch(inputRec.Signature, rec.Signature) {
				result.Rewrites = append(result.Rewrites, types.Rewrite{
					From: types.ProvenanceRef{Feature: inputFeature, KernelID: id},
					To:   id,
				})
			}
			continue
		}
		newFaces = append(newFaces, id)
	}
	assignRole(result.EntityTable, newFaces, role)
}

// signaturesMatch reports whether two TopoSignatures are close enough
// to call the same physical face: same surface, and area/centroid/
// normal within a tight tolerance. Used only to detect faces an
// edge-rounding operation left untouched, not for persistent-naming
// resolution (that uses the resolver's weighted score instead).
func signaturesMatch(a, b types.TopoSignature) bool {
	const tol = 1e-6
	if a.Surface != b.Surface {
		return false
	}
	if absf(a.Area-b.Area) > tol {
		return false
	}
	d := sub3(a.Centroid, b.Centroid)
	if norm3(d) > tol {
		return false
	}
	nd := sub3(a.Normal, b.Normal)
	return norm3(nd) <= tol
}
