package operations

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

// ChamferAdapter bevels each edge in Edges by Distance, tagging every
// new strip face ChamferFace. Shares roundEdges' input-preservation
// bookkeeping with FilletAdapter: the two operations differ only in
// which kernel call they drive and which role they assign.
type ChamferAdapter struct{}

func (ChamferAdapter) Tag() string { return "Chamfer" }

func (ChamferAdapter) Apply(ctx context.Context, rc Context, op types.Operation) *types.OpResult {
	result := types.NewOpResult()
	c, ok := op.(types.Chamfer)
	if !ok {
		result.AddError("operations: Chamfer adapter received a non-Chamfer operation")
		return result
	}
	roundEdges(ctx, rc, result, c.Edges, types.RoleChamferFace,
		func(ctx context.Context, body types.SolidHandle, edges []types.KernelId) (types.SolidHandle, error) {
			return rc.Kernel.Chamfer(ctx, body, edges, c.Distance)
		})
	return result
}
