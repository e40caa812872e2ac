package mock

import (
	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/types"
)

func signatureOf(b *body, id types.KernelId) (types.TopoSignature, error) {
	if f, ok := b.Faces[id]; ok {
		pts := orderedLoopPositions(b, f)
		return types.TopoSignature{
			Kind:      types.KindFace,
			Surface:   f.Surface,
			Area:      polygonArea(pts, f.Normal),
			Centroid:  centroid(pts),
			Normal:    f.Normal,
			BBox:      bboxOf(pts),
			Adjacency: adjacencyDigest(b, id),
		}, nil
	}
	if e, ok := b.Edges[id]; ok {
		p0, p1 := b.Vertices[e.V0].Pos, b.Vertices[e.V1].Pos
		return types.TopoSignature{
			Kind:      types.KindEdge,
			Surface:   e.Surface,
			Area:      norm(sub(p1, p0)),
			Centroid:  scale(add(p0, p1), 0.5),
			BBox:      bboxOf([]types.Vec3{p0, p1}),
			Adjacency: adjacencyDigest(b, id),
		}, nil
	}
	if v, ok := b.Vertices[id]; ok {
		return types.TopoSignature{
			Kind:      types.KindVertex,
			Centroid:  v.Pos,
			BBox:      types.BBox{Min: v.Pos, Max: v.Pos},
			Adjacency: adjacencyDigest(b, id),
		}, nil
	}
	return types.TopoSignature{}, kernel.NewError("Signature", kernel.CategoryDegenerateInput, "unknown entity id")
}

// orderedLoopPositions mirrors orderedLoopVertices but returns world
// positions directly.
func orderedLoopPositions(b *body, f *face) []types.Vec3 {
	ids := orderedLoopVertices(b, f)
	pts := make([]types.Vec3, len(ids))
	for i, id := range ids {
		pts[i] = b.Vertices[id].Pos
	}
	return pts
}

func adjacencyDigest(b *body, id types.KernelId) types.AdjacencyDigest {
	counts := map[types.TopoKind]int{}
	for _, n := range adjacentOf(b, id) {
		switch {
		case isFace(b, n):
			counts[types.KindFace]++
		case isEdge(b, n):
			counts[types.KindEdge]++
		case isVertex(b, n):
			counts[types.KindVertex]++
		}
	}
	return types.AdjacencyDigest{Counts: counts}
}

func isFace(b *body, id types.KernelId) bool   { _, ok := b.Faces[id]; return ok }
func isEdge(b *body, id types.KernelId) bool   { _, ok := b.Edges[id]; return ok }
func isVertex(b *body, id types.KernelId) bool { _, ok := b.Vertices[id]; return ok }

// adjacentOf returns the KernelIds immediately adjacent to id: a
// face's bounding edges, an edge's two endpoints plus its (up to) two
// faces, or a vertex's incident edges.
func adjacentOf(b *body, id types.KernelId) []types.KernelId {
	if f, ok := b.Faces[id]; ok {
		out := append([]types.KernelId(nil), f.Loop...)
		sortIds(out)
		return dedupeIds(out)
	}
	if e, ok := b.Edges[id]; ok {
		var out []types.KernelId
		out = append(out, e.V0, e.V1)
		for _, fid := range e.Faces {
			if fid != 0 {
				out = append(out, fid)
			}
		}
		sortIds(out)
		return dedupeIds(out)
	}
	var out []types.KernelId
	for eid, e := range b.Edges {
		if e.V0 == id || e.V1 == id {
			out = append(out, eid)
		}
	}
	sortIds(out)
	return out
}

func dedupeIds(ids []types.KernelId) []types.KernelId {
	out := ids[:0]
	var last types.KernelId
	first := true
	for _, id := range ids {
		if first || id != last {
			out = append(out, id)
			last = id
			first = false
		}
	}
	return out
}
