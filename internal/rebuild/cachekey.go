package rebuild

import (
	"encoding/json"
	"sort"

	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/types"
)

// cacheKey computes §4.5's incremental cache key: (operation-type,
// param-hash, sorted list of input entity signatures). Unresolvable
// references fold their error text into the key instead of aborting, so
// a reference that newly fails to resolve always counts as "changed"
// and forces a recompute rather than silently reusing a stale result.
// Each feature named by op.DependsOn is folded in as well: whether it
// is usable and, for a sketch, its solved plane and profile loops, so
// an Extrude or Revolve recomputes when its sketch changes or fails.
func cacheKey(op types.Operation, cache resolver.Cache, datums resolver.DatumRegistry) uint64 {
	if op == nil {
		return 0
	}
	payload, err := json.Marshal(types.OperationEnvelope{Op: op})
	if err != nil {
		// Unmarshalable operation payloads are a programming error, not
		// a runtime condition; fold the tag alone so the cache still
		// behaves (always "changed") rather than panicking mid-rebuild.
		payload = []byte(op.Tag())
	}

	sigHashes := make([]uint64, 0, len(op.References()))
	for _, ref := range op.References() {
		res, _, err := resolver.Resolve(ref, cache, datums)
		switch {
		case err != nil:
			sigHashes = append(sigHashes, types.Hash64("err", err.Error()))
		case res.IsDatum:
			sigHashes = append(sigHashes, types.Hash64("datum", string(ref.Anchor.DatumID)))
		default:
			sigHashes = append(sigHashes, types.Hash64(res.Record.Signature))
		}
	}
	for _, dep := range op.DependsOn() {
		parts := []any{"dep", string(dep)}
		if state, ok := cache.Feature(dep); !ok || !state.Usable() || state.Result.Failed() {
			parts = append(parts, "unavailable")
		} else if pl := state.Result.SketchPlane; pl != nil {
			parts = append(parts, pl.Origin, pl.Normal, pl.XAxis)
			for _, loop := range state.Result.SketchLoops {
				parts = append(parts, len(loop))
				for _, pt := range loop {
					parts = append(parts, pt)
				}
			}
		}
		sigHashes = append(sigHashes, types.Hash64(parts...))
	}
	sort.Slice(sigHashes, func(i, j int) bool { return sigHashes[i] < sigHashes[j] })

	parts := []any{op.Tag(), string(payload)}
	for _, h := range sigHashes {
		parts = append(parts, h)
	}
	return types.Hash64(parts...)
}
