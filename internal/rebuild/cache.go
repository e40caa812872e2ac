package rebuild

import (
	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// resultCache implements resolver.Cache over a snapshot of the tree and
// the OpResults accumulated so far during one rebuild walk. It never
// outlives the Rebuild call that constructs it.
type resultCache struct {
	tree    *tree.Tree
	results map[types.FeatureId]*types.OpResult
}

func (c resultCache) Feature(id types.FeatureId) (resolver.FeatureState, bool) {
	i, ok := c.tree.IndexOf(id)
	if !ok {
		return resolver.FeatureState{}, false
	}
	f := c.tree.Features[i]
	past := c.tree.ActiveIndex != nil && i >= *c.tree.ActiveIndex
	return resolver.FeatureState{
		Result:     c.results[id],
		Suppressed: f.Suppressed,
		PastCursor: past,
	}, true
}
