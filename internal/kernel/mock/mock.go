// Package mock implements a deterministic kernel.Kernel with synthetic,
// idealized topology (§4.1). It never fails on well-formed input and
// never touches a real BREP library, so the rebuild engine, resolver,
// and operation adapters can be exercised and tested independently of
// any real kernel's bugs or availability.
//
// Grounded on the teacher's in-memory "fake backend" pattern (a
// deterministic, monotonic-id-assigning counterpart to a real
// backend behind the same capability interface): see DESIGN.md.
package mock

import (
	"context"
	"sync"

	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// Kernel is a deterministic, in-process kernel.Kernel implementation.
// Safe for concurrent use; the rebuild engine is documented to
// serialize access to a shared kernel regardless (§5), but Mock does
// not rely on that.
type Kernel struct {
	mu        sync.Mutex
	nextID    uint64
	nextSolid uint64
	bodies    map[types.SolidHandle]*body
}

// New returns a fresh Mock kernel with empty counters.
func New() *Kernel {
	return &Kernel{bodies: map[types.SolidHandle]*body{}}
}

func (k *Kernel) alloc() *idAlloc { return &idAlloc{next: &k.nextID} }

func (k *Kernel) store(b *body) types.SolidHandle {
	k.nextSolid++
	h := types.SolidHandle(k.nextSolid)
	k.bodies[h] = b
	return h
}

func (k *Kernel) get(h types.SolidHandle) (*body, error) {
	b, ok := k.bodies[h]
	if !ok {
		return nil, kernel.NewError("lookup", kernel.CategoryDegenerateInput, "unknown solid handle")
	}
	return b, nil
}

func (k *Kernel) Extrude(_ context.Context, profile kernel.Profile, params kernel.ExtrudeParams) (types.SolidHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(profile.Outer) < 3 {
		return 0, kernel.DegenerateInput("Extrude", "profile has fewer than 3 boundary points")
	}
	if params.Depth <= 0 {
		return 0, kernel.NumericFailure("Extrude", "depth must be positive")
	}
	b := extrudePrism(k.alloc(), profile, params)
	return k.store(b), nil
}

func (k *Kernel) Revolve(_ context.Context, profile kernel.Profile, params kernel.RevolveParams) (types.SolidHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(profile.Outer) < 3 {
		return 0, kernel.DegenerateInput("Revolve", "profile has fewer than 3 boundary points")
	}
	if params.Angle <= 0 {
		return 0, kernel.NumericFailure("Revolve", "angle must be positive")
	}
	b := revolveSolid(k.alloc(), profile, params)
	return k.store(b), nil
}

func (k *Kernel) Boolean(_ context.Context, a, b types.SolidHandle, _ types.BooleanOp) (types.SolidHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	ab, err := k.get(a)
	if err != nil {
		return 0, err
	}
	bb, err := k.get(b)
	if err != nil {
		return 0, err
	}
	merged, err := booleanCombine(k.alloc(), ab, bb)
	if err != nil {
		return 0, err
	}
	delete(k.bodies, a)
	delete(k.bodies, b)
	return k.store(merged), nil
}

func (k *Kernel) Fillet(_ context.Context, h types.SolidHandle, edges []types.KernelId, radius float64) (types.SolidHandle, error) {
	return k.roundEdges("Fillet", h, edges, radius, types.SurfaceCylinder)
}

func (k *Kernel) Chamfer(_ context.Context, h types.SolidHandle, edges []types.KernelId, distance float64) (types.SolidHandle, error) {
	return k.roundEdges("Chamfer", h, edges, distance, types.SurfacePlane)
}

func (k *Kernel) roundEdges(op string, h types.SolidHandle, edges []types.KernelId, offset float64, surf types.SurfaceType) (types.SolidHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if offset <= 0 {
		return 0, kernel.NumericFailure(op, "offset must be positive")
	}
	src, err := k.get(h)
	if err != nil {
		return 0, err
	}
	dst := newBody()
	for id, v := range src.Vertices {
		dst.Vertices[id] = &vertex{Pos: v.Pos}
	}
	for id, e := range src.Edges {
		dst.Edges[id] = &edge{V0: e.V0, V1: e.V1, Surface: e.Surface, Faces: e.Faces}
	}
	for id, f := range src.Faces {
		dst.Faces[id] = &face{Loop: append([]types.KernelId(nil), f.Loop...), Surface: f.Surface, Normal: f.Normal}
	}
	a := k.alloc()
	for _, eid := range edges {
		if err := roundEdge(a, dst, eid, offset, surf); err != nil {
			return 0, err
		}
	}
	delete(k.bodies, h)
	return k.store(dst), nil
}

func (k *Kernel) Shell(_ context.Context, h types.SolidHandle, facesToRemove []types.KernelId, thickness float64) (types.SolidHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if thickness <= 0 {
		return 0, kernel.NumericFailure("Shell", "thickness must be positive")
	}
	src, err := k.get(h)
	if err != nil {
		return 0, err
	}
	remove := map[types.KernelId]bool{}
	for _, id := range facesToRemove {
		remove[id] = true
	}
	out, err := shellBody(k.alloc(), src, remove, thickness)
	if err != nil {
		return 0, err
	}
	delete(k.bodies, h)
	return k.store(out), nil
}

func (k *Kernel) Tessellate(_ context.Context, h types.SolidHandle, _ float64) (kernel.RenderMesh, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return kernel.RenderMesh{}, err
	}
	return tessellateBody(b), nil
}

func (k *Kernel) Release(_ context.Context, h types.SolidHandle) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.bodies, h)
	return nil
}

func (k *Kernel) Faces(_ context.Context, h types.SolidHandle) ([]types.KernelId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return nil, err
	}
	return sortedFaceIDs(b), nil
}

func (k *Kernel) Edges(_ context.Context, h types.SolidHandle) ([]types.KernelId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return nil, err
	}
	return sortedEdgeIDs(b), nil
}

func (k *Kernel) Vertices(_ context.Context, h types.SolidHandle) ([]types.KernelId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return nil, err
	}
	ids := make([]types.KernelId, 0, len(b.Vertices))
	for id := range b.Vertices {
		ids = append(ids, id)
	}
	sortIds(ids)
	return ids, nil
}

func (k *Kernel) Signature(_ context.Context, h types.SolidHandle, id types.KernelId) (types.TopoSignature, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return types.TopoSignature{}, err
	}
	return signatureOf(b, id)
}

func (k *Kernel) Adjacent(_ context.Context, h types.SolidHandle, id types.KernelId) ([]types.KernelId, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	b, err := k.get(h)
	if err != nil {
		return nil, err
	}
	return adjacentOf(b, id), nil
}
