package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

// ShellAdapter hollows Body to Thickness, removing FacesToRemove as
// openings, and tags the companion inner/outer faces ShellOuter/
// ShellInner.
type ShellAdapter struct{}

func (ShellAdapter) Tag() string { return "Shell" }

func (ShellAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	s, ok := op.(types.Shell)
	if !ok {
		result.AddError("operations: Shell adapter received a non-Shell operation")
		return result
	}

	bodyRef, ok := rc.resolve(result, s.Body)
	if !ok {
		return result
	}
	inputFeature := s.Body.Anchor.Feature
	var inputTable map[types.KernelId]types.EntityRecord
	if state, ok := rc.Cache.Feature(inputFeature); ok && state.Usable() {
		inputTable = state.Result.EntityTable
	}

	var removeIDs []types.KernelId
	for _, ref := range s.FacesToRemove {
		r, ok := rc.resolve(result, ref)
		if !ok {
			return result
		}
		if r.Solid != bodyRef.Solid {
			result.AddError("operations: faces_to_remove must belong to body")
			return result
		}
		removeIDs = append(removeIDs, r.KernelID)
	}

	out, err := rc.Kernel.Shell(ctx, bodyRef.Solid, removeIDs, s.Thickness)
	if err != nil {
		result.AddError(err.Error())
		return result
	}
	result.Solid = &out

	if err := populateEntityTable(ctx, rc.Kernel, result, out); err != nil {
		result.AddError(err.Error())
		return result
	}

	// The outer wall is every face whose (kind, signature) matches an
	// untouched input face verbatim; everything else is a newly
	// introduced inner wall or rim strip.
	var outer, inner []types.KernelId
	for id, rec := range result.EntityTable {
		if rec.Kind != types.KindFace {
			continue
		}
		if inputRec, ok := inputTable[id]; ok && signaturesMatch(inputRec.Signature, rec.Signature) {
			result.Rewrites = append(result.Rewrites, types.Rewrite{
				From: types.ProvenanceRef{Feature: inputFeature, KernelID: id},
				To:   id,
			})
			outer = append(outer, id)
			continue
		}
		inner = append(inner, id)
	}
	assignRole(result.EntityTable, outer, types.RoleShellOuter)
	assignRole(result.EntityTable, inner, types.RoleShellInner)
	return result
}
