package rebuild

import (
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// visibleBodies identifies the feature IDs whose OpResult.Solid is
// visible after a rebuild (§4.5): the "last" body of the tree is the
// default visible one, and any operation that consumes a prior body
// (a cut extrude's target, Shell's body, BooleanCombine's A/B, or the
// body a Fillet/Chamfer's edges anchor into) implicitly removes that
// prior body from the visible set. Order matches tree order.
func (e *Engine) visibleBodies(t *tree.Tree) []types.FeatureId {
	consumed := map[types.FeatureId]bool{}
	var candidates []types.FeatureId

	for i, f := range t.Features {
		pastCursor := t.ActiveIndex != nil && i >= *t.ActiveIndex
		if f.Suppressed || pastCursor || f.Op == nil {
			continue
		}
		r := e.results[f.ID]
		if r != nil && r.Solid != nil {
			candidates = append(candidates, f.ID)
		}
		for _, id := range consumedBodies(f.Op) {
			consumed[id] = true
		}
	}

	visible := candidates[:0:0]
	for _, id := range candidates {
		if !consumed[id] {
			visible = append(visible, id)
		}
	}
	return visible
}

// consumedBodies names the FeatureIds whose Main output op takes as an
// existing body to replace rather than as mere reference geometry.
func consumedBodies(op types.Operation) []types.FeatureId {
	switch v := op.(type) {
	case types.Extrude:
		if v.TargetBody != nil && !v.TargetBody.Anchor.IsDatum {
			return []types.FeatureId{v.TargetBody.Anchor.Feature}
		}
	case types.Shell:
		if !v.Body.Anchor.IsDatum {
			return []types.FeatureId{v.Body.Anchor.Feature}
		}
	case types.BooleanCombine:
		var ids []types.FeatureId
		if !v.A.Anchor.IsDatum {
			ids = append(ids, v.A.Anchor.Feature)
		}
		if !v.B.Anchor.IsDatum {
			ids = append(ids, v.B.Anchor.Feature)
		}
		return ids
	case types.Fillet:
		return bodyOfFirstEdge(v.Edges)
	case types.Chamfer:
		return bodyOfFirstEdge(v.Edges)
	}
	return nil
}

func bodyOfFirstEdge(edges []types.GeomRef) []types.FeatureId {
	if len(edges) == 0 || edges[0].Anchor.IsDatum {
		return nil
	}
	return []types.FeatureId{edges[0].Anchor.Feature}
}
