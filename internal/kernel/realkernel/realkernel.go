// Package realkernel is the adapter boundary between kernel.Kernel and
// an actual BREP library. It ships with no geometry engine wired in:
// every call except Release (a no-op) returns kernel.Unsupported until
// a Backend is supplied,
// so a build that links one in only needs to implement Backend and
// pass it to New, never touch the rest of the core.
package realkernel

import (
	"context"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// Backend is the seam a production build fills in with calls into a
// real geometric modeling kernel. Its method set mirrors
// kernel.Kernel exactly, so New's delegation is a pass-through rather
// than a translation layer.
type Backend interface {
	kernel.Kernel
}

// Adapter implements kernel.Kernel by delegating to an optional
// Backend. With a nil Backend every method except Release (which
// returns nil) reports kernel.CategoryUnsupported rather than
// panicking, so callers that
// only ever talk to the mock kernel in tests can still construct the
// production wiring path without a real library present.
type Adapter struct {
	Backend Backend
}

// New returns a realkernel.Adapter. Passing a nil backend is valid;
// the result simply reports every capability as unsupported.
func New(backend Backend) *Adapter {
	return &Adapter{Backend: backend}
}

func (a *Adapter) unsupported(op string) error {
	return kernel.Unsupported(op, "no real kernel backend is linked into this build")
}

func (a *Adapter) Extrude(ctx context.Context, profile kernel.Profile, params kernel.ExtrudeParams) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Extrude")
	}
	return a.Backend.Extrude(ctx, profile, params)
}

func (a *Adapter) Revolve(ctx context.Context, profile kernel.Profile, params kernel.RevolveParams) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Revolve")
	}
	return a.Backend.Revolve(ctx, profile, params)
}

func (a *Adapter) Boolean(ctx context.Context, x, y types.SolidHandle, op types.BooleanOp) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Boolean")
	}
	return a.Backend.Boolean(ctx, x, y, op)
}

func (a *Adapter) Fillet(ctx context.Context, body types.SolidHandle, edges []types.KernelId, radius float64) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Fillet")
	}
	return a.Backend.Fillet(ctx, body, edges, radius)
}

func (a *Adapter) Chamfer(ctx context.Context, body types.SolidHandle, edges []types.KernelId, distance float64) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Chamfer")
	}
	return a.Backend.Chamfer(ctx, body, edges, distance)
}

func (a *Adapter) Shell(ctx context.Context, body types.SolidHandle, facesToRemove []types.KernelId, thickness float64) (types.SolidHandle, error) {
	if a.Backend == nil {
		return 0, a.unsupported("Shell")
	}
	return a.Backend.Shell(ctx, body, facesToRemove, thickness)
}

func (a *Adapter) Tessellate(ctx context.Context, body types.SolidHandle, chordalTolerance float64) (kernel.RenderMesh, error) {
	if a.Backend == nil {
		return kernel.RenderMesh{}, a.unsupported("Tessellate")
	}
	return a.Backend.Tessellate(ctx, body, chordalTolerance)
}

func (a *Adapter) Release(ctx context.Context, body types.SolidHandle) error {
	if a.Backend == nil {
		return nil
	}
	return a.Backend.Release(ctx, body)
}

func (a *Adapter) Faces(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error) {
	if a.Backend == nil {
		return nil, a.unsupported("Faces")
	}
	return a.Backend.Faces(ctx, body)
}

func (a *Adapter) Edges(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error) {
	if a.Backend == nil {
		return nil, a.unsupported("Edges")
	}
	return a.Backend.Edges(ctx, body)
}

func (a *Adapter) Vertices(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error) {
	if a.Backend == nil {
		return nil, a.unsupported("Vertices")
	}
	return a.Backend.Vertices(ctx, body)
}

func (a *Adapter) Signature(ctx context.Context, body types.SolidHandle, id types.KernelId) (types.TopoSignature, error) {
	if a.Backend == nil {
		return types.TopoSignature{}, a.unsupported("Signature")
	}
	return a.Backend.Signature(ctx, body, id)
}

func (a *Adapter) Adjacent(ctx context.Context, body types.SolidHandle, id types.KernelId) ([]types.KernelId, error) {
	if a.Backend == nil {
		return nil, a.unsupported("Adjacent")
	}
	return a.Backend.Adjacent(ctx, body, id)
}
