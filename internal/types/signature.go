package types

// Vec3 is a plain 3D vector/point. Kept dependency-free since it crosses
// every package boundary in the core.
type Vec3 struct{ X, Y, Z float64 }

// BBox is an axis-aligned bounding box. Resolver signature comparison
// scores BBox corners by their distance, without quantizing them.
type BBox struct{ Min, Max Vec3 }

// SurfaceType names the underlying surface of a Face (or curve of an
// Edge, reusing the same closed set for simplicity since the two never
// overlap on a given entity).
type SurfaceType string

const (
	SurfacePlane    SurfaceType = "Plane"
	SurfaceCylinder SurfaceType = "Cylinder"
	SurfaceSphere   SurfaceType = "Sphere"
	SurfaceNURBS    SurfaceType = "NURBS"
	SurfaceLine     SurfaceType = "Line"
	SurfaceCircle   SurfaceType = "Circle"
	SurfaceArc      SurfaceType = "Arc"
)

// AdjacencyDigest summarizes a kernel entity's neighbor skeleton: sorted
// neighbor kinds with counts. It is computed by the kernel's
// introspection capability, not guessed.
type AdjacencyDigest struct {
	// Counts maps a neighbor TopoKind to how many neighbors of that kind
	// the entity has. Kept as a map (rather than pre-hashed) so the
	// resolver's adjacencyScoreOf can compute partial-match distances instead
	// of an all-or-nothing hash comparison.
	Counts map[TopoKind]int
}

// TopoSignature is a bag of geometric properties identifying a kernel
// entity by resemblance rather than by its (unstable) KernelId.
type TopoSignature struct {
	Kind       TopoKind
	Surface    SurfaceType
	Area       float64 // area for faces, length for edges/wires; 0 for vertices
	Centroid   Vec3
	Normal     Vec3 // outward normal for faces; zero value for non-faces
	BBox       BBox
	Adjacency  AdjacencyDigest
}
