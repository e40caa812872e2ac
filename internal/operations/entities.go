package operations

import (
	"context"
	"math"
	"sort"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// populateEntityTable enumerates every face, edge, and vertex of solid
// and fills result's EntityTable with their computed signatures, all
// initially role-less. Adapters call assignRole afterward to tag the
// subsets the role table (§4.3) names.
func populateEntityTable(ctx context.Context, k kernel.Kernel, result *types.OpResult, solid types.SolidHandle) error {
	kinds := []struct {
		kind types.TopoKind
		list func(context.Context, types.SolidHandle) ([]types.KernelId, error)
	}{
		{types.KindFace, k.Faces},
		{types.KindEdge, k.Edges},
		{types.KindVertex, k.Vertices},
	}
	var all []types.KernelId
	for _, kk := range kinds {
		ids, err := kk.list(ctx, solid)
		if err != nil {
			return err
		}
		for _, id := range ids {
			sig, err := k.Signature(ctx, solid, id)
			if err != nil {
				return err
			}
			result.EntityTable[id] = types.EntityRecord{Kind: kk.kind, Signature: sig}
			all = append(all, id)
		}
	}
	result.Outputs[types.MainOutput] = append(result.Outputs[types.MainOutput], all...)
	return nil
}

// assignRole tags every id in ids with role, numbering them by
// RoleIndex in centroid-lexicographic order (X, then Y, then Z, ties
// broken by KernelId) — the deterministic per-adapter ordering §4.3
// asks for, applied uniformly rather than re-derived per operation.
func assignRole(table map[types.KernelId]types.EntityRecord, ids []types.KernelId, role types.Role) {
	sorted := append([]types.KernelId(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := table[sorted[i]].Signature.Centroid, table[sorted[j]].Signature.Centroid
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return sorted[i] < sorted[j]
	})
	for i, id := range sorted {
		rec := table[id]
		rec.Role = role
		rec.RoleIndex = uint32(i)
		rec.HasRole = true
		table[id] = rec
	}
}

// facesByNormal returns every KernelId in the table whose Kind is Face
// and whose outward normal is within cosTol of target (cosine
// similarity, so cosTol close to 1 means "nearly parallel").
func facesByNormal(table map[types.KernelId]types.EntityRecord, target types.Vec3, cosTol float64) []types.KernelId {
	var out []types.KernelId
	for id, rec := range table {
		if rec.Kind != types.KindFace {
			continue
		}
		if cosineSimilarity(rec.Signature.Normal, target) >= cosTol {
			out = append(out, id)
		}
	}
	return out
}

func cosineSimilarity(a, b types.Vec3) float64 {
	na := norm3(a)
	nb := norm3(b)
	if na < 1e-12 || nb < 1e-12 {
		return -1
	}
	return (a.X*b.X + a.Y*b.Y + a.Z*b.Z) / (na * nb)
}

func norm3(v types.Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
