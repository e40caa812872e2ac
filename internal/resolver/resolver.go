package resolver

import "github.com/waffle-iron/core/internal/types"

// Result is what a GeomRef resolves to: either a kernel entity living on
// a feature's solid, or a built-in datum's basis geometry.
type Result struct {
	IsDatum bool

	// Valid when !IsDatum.
	KernelID types.KernelId
	Solid    types.SolidHandle
	Record   types.EntityRecord

	// Valid when IsDatum.
	Datum DatumEntity
}

// Resolve runs the full cascade against ref: locate the anchor, apply
// the selector, apply the resolve policy. warning is non-empty when a
// selector fell through to its fallback (Role to Signature, Signature
// to Query) under either policy, or under BestEffort policy when the
// ideal candidate could not be confirmed and the best available one was
// accepted instead; err is nil in those cases. Under Strict policy an
// unconfirmed candidate returns err and a zero Result.
func Resolve(ref types.GeomRef, cache Cache, datums DatumRegistry) (Result, string, error) {
	if ref.Anchor.IsDatum {
		d, ok := datums.Datum(ref.Anchor.DatumID)
		if !ok {
			return Result{}, "", ErrAnchorMissing
		}
		return Result{IsDatum: true, Datum: d}, "", nil
	}

	state, ok := cache.Feature(ref.Anchor.Feature)
	if !ok || !state.Usable() {
		return Result{}, "", ErrAnchorMissing
	}
	if state.Result.Failed() {
		return Result{}, "", ErrAnchorErrored
	}

	// A Solid-kind GeomRef names a whole body, not one of its
	// sub-entities: there is exactly one candidate (the anchor
	// feature's own OpResult.Solid), so the Role/Signature/Query
	// cascade has nothing to disambiguate and is skipped entirely.
	if ref.Kind == types.KindSolid {
		if state.Result.Solid == nil {
			return Result{}, "", ErrNoCandidates
		}
		return Result{Solid: *state.Result.Solid}, "", nil
	}

	all := gatherCandidates(state.Result, ref.Anchor.Output)
	if len(all) == 0 {
		return Result{}, "", ErrNoCandidates
	}
	byKind := filterByKind(all, ref.Kind)
	if len(byKind) == 0 {
		return Result{}, "", ErrKindMismatch
	}

	winner, warning, err := applySelector(ref.Selector, byKind, ref.Policy)
	if err != nil {
		return Result{}, "", err
	}
	return Result{KernelID: winner.kernelID, Record: winner.record, Solid: solidOf(state.Result)}, warning, nil
}

func solidOf(r *types.OpResult) types.SolidHandle {
	if r.Solid == nil {
		return 0
	}
	return *r.Solid
}

// applySelector dispatches on the selector's Kind and, on a failed or
// below-threshold match, falls through per §4.4: Role falls to its
// cached Signature if present, Signature falls to Query if its Filters
// are non-empty.
func applySelector(sel types.Selector, cands []candidate, policy types.ResolvePolicy) (candidate, string, error) {
	switch sel.Kind {
	case "Role":
		return applyRole(sel, cands, policy)
	case "Signature":
		return applySignature(sel, cands, policy)
	case "Query":
		return applyQuery(sel.Filters, sel.TieBreak, cands, policy)
	default:
		return candidate{}, "", ErrNoCandidates
	}
}

func applyRole(sel types.Selector, cands []candidate, policy types.ResolvePolicy) (candidate, string, error) {
	var matches []candidate
	for _, c := range cands {
		if c.record.HasRole && c.record.Role == sel.Role && c.record.RoleIndex == sel.RoleIndex {
			matches = append(matches, c)
		}
	}
	if len(matches) == 1 {
		return matches[0], "", nil
	}
	if len(matches) > 1 {
		// Two entities sharing the same (role, index) is a defect in the
		// adapter that wrote them, not a resolution ambiguity a policy
		// can soften: role indices are the adapter's own deterministic
		// numbering.
		if policy.Strict {
			return candidate{}, "", &AmbiguousError{Candidates: len(matches)}
		}
		return bestKernelID(matches), "best-effort: multiple entities shared the requested role", nil
	}

	if sel.Signature != nil {
		winner, warning, err := resolveSignature(*sel.Signature, cands, policy, nil)
		if err == nil {
			return winner, combineWarning("role not found, fell through to signature match", warning), nil
		}
		return candidate{}, "", err
	}
	return candidate{}, "", ErrRoleNotFound
}

func applySignature(sel types.Selector, cands []candidate, policy types.ResolvePolicy) (candidate, string, error) {
	if sel.Signature == nil {
		return candidate{}, "", ErrNoCandidates
	}
	return resolveSignature(*sel.Signature, cands, policy, sel.Filters)
}

// resolveSignature scores cands against target and accepts the best
// match if it clears defaultThreshold. Below threshold it falls
// through to a Query built from fallbackFilters (the Signature
// selector's own Filters, when present) before giving up.
func resolveSignature(target types.TopoSignature, cands []candidate, policy types.ResolvePolicy, fallbackFilters []types.Filter) (candidate, string, error) {
	best, score := bestBySignature(target, cands)
	if score >= defaultThreshold {
		return best, "", nil
	}
	if len(fallbackFilters) > 0 {
		winner, warning, err := applyQuery(fallbackFilters, types.TieBreak{}, cands, policy)
		if err == nil {
			return winner, combineWarning("signature below threshold, fell through to query", warning), nil
		}
		return candidate{}, "", err
	}
	if !policy.Strict {
		return best, "best-effort: accepted signature match below threshold", nil
	}
	return candidate{}, "", ErrSignatureBelowThreshold
}

func applyQuery(filters []types.Filter, tb types.TieBreak, cands []candidate, policy types.ResolvePolicy) (candidate, string, error) {
	filtered := applyFilters(cands, filters)
	if len(filtered) == 0 {
		return candidate{}, "", ErrNoCandidates
	}
	narrowed := breakTie(filtered, tb)
	if len(narrowed) == 1 {
		return narrowed[0], "", nil
	}
	if policy.Strict {
		return candidate{}, "", &AmbiguousError{Candidates: len(narrowed)}
	}
	return bestKernelID(narrowed), "best-effort: accepted lowest-id candidate among remaining ties", nil
}

// bestKernelID picks the lowest-KernelId candidate, the resolver's
// deterministic tie-break of last resort under BestEffort policy.
func bestKernelID(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.kernelID < best.kernelID {
			best = c
		}
	}
	return best
}

func combineWarning(primary, secondary string) string {
	if secondary == "" {
		return primary
	}
	return primary + "; " + secondary
}
