package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

// BooleanAdapter combines bodies A and B with Op, tagging every output
// face BooleanPreserved when it can be traced verbatim to one of the two
// inputs and BooleanIntroduced otherwise (§4.3; §9 notes the
// BooleanIntroduced case is ill-defined at coplanar/tangent contact and
// left to the kernel to report as DegenerateInput rather than guessed).
type BooleanAdapter struct{}

func (BooleanAdapter) Tag() string { return "BooleanCombine" }

func (BooleanAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	b, ok := op.(types.BooleanCombine)
	if !ok {
		result.AddError("operations: Boolean adapter received a non-BooleanCombine operation")
		return result
	}

	aRef, ok := rc.resolve(result, b.A)
	if !ok {
		return result
	}
	bRef, ok := rc.resolve(result, b.B)
	if !ok {
		return result
	}

	tableA := entityTableOf(rc, b.A.Anchor.Feature)
	tableB := entityTableOf(rc, b.B.Anchor.Feature)

	out, err := rc.Kernel.Boolean(ctx, aRef.Solid, bRef.Solid, b.Op)
	if err != nil {
		result.AddError(err.Error())
		return result
	}
	result.Solid = &out

	if err := populateEntityTable(ctx, rc.Kernel, result, out); err != nil {
		result.AddError(err.Error())
		return result
	}

	var introduced []types.KernelId
	var preservedA, preservedB []types.KernelId
	for id, rec := range result.EntityTable {
		if rec.Kind != types.KindFace {
			continue
		}
		switch {
		case inTable(tableA, id, rec):
			result.Rewrites = append(result.Rewrites, types.Rewrite{
				From: types.ProvenanceRef{Feature: b.A.Anchor.Feature, KernelID: id},
				To:   id,
			})
			preservedA = append(preservedA, id)
		case inTable(tableB, id, rec):
			result.Rewrites = append(result.Rewrites, types.Rewrite{
				From: types.ProvenanceRef{Feature: b.B.Anchor.Feature, KernelID: id},
				To:   id,
			})
			preservedB = append(preservedB, id)
		default:
			introduced = append(introduced, id)
		}
	}
	assignRole(result.EntityTable, append(append([]types.KernelId(nil), preservedA...), preservedB...), types.RoleBooleanPreserved)
	assignRole(result.EntityTable, introduced, types.RoleBooleanIntroduced)
	return result
}

// entityTableOf fetches feature's cached EntityTable, or nil if the
// feature is unavailable (already reported by rc.resolve's own error on
// the anchor that referenced it).
func entityTableOf(rc Context, feature types.FeatureId) map[types.KernelId]types.EntityRecord {
	state, ok := rc.Cache.Feature(feature)
	if !ok || !state.Usable() || state.Result.Failed() {
		return nil
	}
	return state.Result.EntityTable
}

// inTable reports whether id existed in table with a matching signature
// before the operation ran: the Mock kernel's Boolean keeps every
// non-contact face's KernelId unchanged, so this is equivalent to "was
// this exact face carried through from that input."
func inTable(table map[types.KernelId]types.EntityRecord, id types.KernelId, rec types.EntityRecord) bool {
	if table == nil {
		return false
	}
	prior, ok := table[id]
	if !ok {
		return false
	}
	return signaturesMatch(prior.Signature, rec.Signature)
}
