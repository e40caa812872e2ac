package mock

import (
	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

// orderedLoopVertices walks a face's edge loop in order, returning each
// distinct vertex once in encounter order. Good enough for a fan
// triangulation of the convex/near-convex polygons the Mock's
// generators produce; not a substitute for a real tessellator. A cap
// face bridged to a hole (bridgeLoop, model.go) dedups down to the
// outer ring followed by the hole's ring with the zero-width detour
// dropped, which a fan from vertex 0 triangulates as if it were one
// contour: topologically sound (every triangle still lands in the
// cap's FaceRange and uses its vertices) but not a geometrically
// faithful render of the cutout, same as any other non-convex face
// here.
func orderedLoopVertices(b *body, f *face) []types.KernelId {
	var out []types.KernelId
	seen := map[types.KernelId]bool{}
	push := func(v types.KernelId) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, eid := range f.Loop {
		e := b.Edges[eid]
		push(e.V0)
		push(e.V1)
	}
	return out
}

// tessellateBody fan-triangulates every face from its first vertex.
// Triangle ranges exactly partition [0, triangleCount), and the vertex
// winding follows each face's stored outward Normal, satisfying §8.9
// and §8.10's FaceRange-coverage and normal-orientation invariants.
func tessellateBody(b *body) kernel.RenderMesh {
	var mesh kernel.RenderMesh
	vertexIndex := map[types.KernelId]uint32{}
	addVertex := func(id types.KernelId, normal types.Vec3) uint32 {
		idx, ok := vertexIndex[id]
		if ok {
			return idx
		}
		p := b.Vertices[id].Pos
		mesh.Positions = append(mesh.Positions, float32(p.X), float32(p.Y), float32(p.Z))
		mesh.Normals = append(mesh.Normals, float32(normal.X), float32(normal.Y), float32(normal.Z))
		idx = uint32(len(vertexIndex))
		vertexIndex[id] = idx
		return idx
	}

	faceIDs := sortedFaceIDs(b)
	var triCursor uint32
	for _, fid := range faceIDs {
		f := b.Faces[fid]
		loop := orderedLoopVertices(b, f)
		if len(loop) < 3 {
			continue
		}
		start := triCursor
		hub := addVertex(loop[0], f.Normal)
		for i := 1; i+1 < len(loop); i++ {
			a := addVertex(loop[i], f.Normal)
			c := addVertex(loop[i+1], f.Normal)
			mesh.Indices = append(mesh.Indices, hub, a, c)
			triCursor++
		}
		mesh.FaceRanges = append(mesh.FaceRanges, kernel.FaceRange{
			KernelID: fid,
			TriStart: start,
			TriCount: triCursor - start,
		})
	}

	edgeIDs := sortedEdgeIDs(b)
	var segCursor uint32
	for _, eid := range edgeIDs {
		e := b.Edges[eid]
		if e.V0 == e.V1 {
			continue
		}
		start := segCursor
		segCursor++
		mesh.EdgeRanges = append(mesh.EdgeRanges, kernel.EdgeRange{
			KernelID: eid,
			SegStart: start,
			SegCount: 1,
		})
	}
	return mesh
}

func sortedFaceIDs(b *body) []types.KernelId {
	ids := make([]types.KernelId, 0, len(b.Faces))
	for id := range b.Faces {
		ids = append(ids, id)
	}
	sortIds(ids)
	return ids
}

func sortedEdgeIDs(b *body) []types.KernelId {
	ids := make([]types.KernelId, 0, len(b.Edges))
	for id := range b.Edges {
		ids = append(ids, id)
	}
	sortIds(ids)
	return ids
}

func sortIds(ids []types.KernelId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
