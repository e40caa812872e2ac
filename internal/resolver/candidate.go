package resolver

import "github.com/waffle-iron/core/internal/types"

// candidate is one entity under consideration during selector
// application, carrying just the fields scoring and filtering need.
type candidate struct {
	kernelID types.KernelId
	record   types.EntityRecord
}

// gatherCandidates collects every entity of the anchor feature's named
// output from its current OpResult. Rewrites already went into building
// that OpResult's EntityTable (an operation adapter assigns a preserved
// entity its Rewrite.To id in its own table), so candidates here are
// always the live, current-rebuild KernelIds.
func gatherCandidates(result *types.OpResult, output types.OutputKey) []candidate {
	ids := result.Outputs[output]
	out := make([]candidate, 0, len(ids))
	for _, id := range ids {
		rec, ok := result.EntityTable[id]
		if !ok {
			continue
		}
		out = append(out, candidate{kernelID: id, record: rec})
	}
	return out
}

func filterByKind(cands []candidate, kind types.TopoKind) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if c.record.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
