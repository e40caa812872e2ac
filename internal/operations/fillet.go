package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

// FilletAdapter rounds each edge in Edges by Radius, tagging every new
// rolled face FilletFace.
type FilletAdapter struct{}

func (FilletAdapter) Tag() string { return "Fillet" }

func (FilletAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	f, ok := op.(types.Fillet)
	if !ok {
		result.AddError("operations: Fillet adapter received a non-Fillet operation")
		return result
	}
	roundEdges(ctx, rc, result, f.Edges, types.RoleFilletFace,
		func(ctx context.Context, body types.SolidHandle, edges []types.KernelId) (types.SolidHandle, error) {
			return rc.Kernel.Fillet(ctx, body, edges, f.Radius)
		})
	return result
}
