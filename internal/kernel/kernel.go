// Package kernel defines the capability interfaces the rebuild engine and
// operation adapters consume for BREP operations and topology
// introspection (§4.1). Two implementations conform to it: kernel/mock, a
// deterministic kernel used to test the rest of the core independently of
// kernel bugs, and kernel/realkernel, the adapter boundary a production
// build fills in with an actual BREP library.
//
// Adapters and the resolver are generic over these interfaces, never tied
// to a concrete implementation (§9).
package kernel

import (
	"context"

	"github.com/waffle-iron/core/internal/types"
)

type (
	// ExtrudeParams configures an Extrude kernel call.
	ExtrudeParams struct {
		Depth      float64
		Symmetric  bool
		Cut        bool
		TargetBody *types.SolidHandle
		Direction  types.Vec3
	}

	// RevolveParams configures a Revolve kernel call.
	RevolveParams struct {
		AxisOrigin types.Vec3
		AxisDir    types.Vec3
		Angle      float64
	}

	// Profile is the kernel-facing view of one closed profile: a planar
	// polygon (plus holes) expressed as point loops in the profile
	// plane's local 2D coordinates, with the plane's placement in 3D.
	Profile struct {
		Origin    types.Vec3
		Normal    types.Vec3
		XAxis     types.Vec3
		Outer     []types.Vec3 // 2D points (Z ignored), outer loop
		Holes     [][]types.Vec3
	}

	// Operations is the BREP capability the rebuild engine and operation
	// adapters call through. Every method is a pure function of its
	// inputs from the caller's point of view (§4.1): the same inputs
	// yield topologically identical outputs on every call.
	Operations interface {
		Extrude(ctx context.Context, profile Profile, params ExtrudeParams) (types.SolidHandle, error)
		Revolve(ctx context.Context, profile Profile, params RevolveParams) (types.SolidHandle, error)
		Boolean(ctx context.Context, a, b types.SolidHandle, op types.BooleanOp) (types.SolidHandle, error)
		Fillet(ctx context.Context, body types.SolidHandle, edges []types.KernelId, radius float64) (types.SolidHandle, error)
		Chamfer(ctx context.Context, body types.SolidHandle, edges []types.KernelId, distance float64) (types.SolidHandle, error)
		Shell(ctx context.Context, body types.SolidHandle, facesToRemove []types.KernelId, thickness float64) (types.SolidHandle, error)
		Tessellate(ctx context.Context, body types.SolidHandle, chordalTolerance float64) (RenderMesh, error)
		// Release invalidates a SolidHandle, returning its kernel-owned
		// resources. The rebuild engine calls this when an OpResult is
		// discarded (§3's lifecycle rules).
		Release(ctx context.Context, body types.SolidHandle) error
	}

	// Introspection exposes topology queries over a live SolidHandle.
	Introspection interface {
		// Faces, Edges, Vertices enumerate a solid's subentities.
		Faces(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error)
		Edges(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error)
		Vertices(ctx context.Context, body types.SolidHandle) ([]types.KernelId, error)
		// Signature computes the current TopoSignature of an entity.
		Signature(ctx context.Context, body types.SolidHandle, id types.KernelId) (types.TopoSignature, error)
		// Adjacent returns the KernelIds topologically adjacent to id
		// (e.g. the edges and vertices bounding a face).
		Adjacent(ctx context.Context, body types.SolidHandle, id types.KernelId) ([]types.KernelId, error)
	}

	// Kernel bundles both capabilities behind one handle, the shape the
	// rebuild engine actually holds and serializes access to (§5:
	// "the kernel may be shared across adapters within a rebuild; the
	// engine serializes access").
	Kernel interface {
		Operations
		Introspection
	}

	// RenderMesh is the tessellation contract's wire layout (§4.1/§6).
	RenderMesh struct {
		Positions  []float32
		Normals    []float32
		Indices    []uint32
		FaceRanges []FaceRange
		EdgeRanges []EdgeRange
	}

	// FaceRange names the contiguous triangle range belonging to one
	// face. Ranges are disjoint and cover [0, TriangleCount) (§8.10).
	FaceRange struct {
		KernelID  types.KernelId
		TriStart  uint32
		TriCount  uint32
	}

	// EdgeRange is FaceRange's line-segment analog for sharp-edge
	// rendering.
	EdgeRange struct {
		KernelID   types.KernelId
		SegStart   uint32
		SegCount   uint32
	}
)
