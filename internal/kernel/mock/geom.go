package mock

import (
	"math"

	"github.com/waffle-iron/core/internal/types"
)

func add(a, b types.Vec3) types.Vec3 { return types.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z} }
func sub(a, b types.Vec3) types.Vec3 { return types.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func scale(a types.Vec3, s float64) types.Vec3 {
	return types.Vec3{X: a.X * s, Y: a.Y * s, Z: a.Z * s}
}

func dot(a, b types.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross(a, b types.Vec3) types.Vec3 {
	return types.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func norm(a types.Vec3) float64 { return math.Sqrt(dot(a, a)) }

func normalize(a types.Vec3) types.Vec3 {
	n := norm(a)
	if n == 0 {
		return a
	}
	return scale(a, 1/n)
}

// toWorld maps a 2D sketch-plane point (x in XAxis, y in the plane's
// implied Y axis) to a 3D world point given the plane's placement.
func toWorld(origin, normal, xAxis types.Vec3, p types.Vec3) types.Vec3 {
	yAxis := cross(normal, xAxis)
	return add(origin, add(scale(xAxis, p.X), scale(yAxis, p.Y)))
}

func centroid(pts []types.Vec3) types.Vec3 {
	if len(pts) == 0 {
		return types.Vec3{}
	}
	var sum types.Vec3
	for _, p := range pts {
		sum = add(sum, p)
	}
	return scale(sum, 1/float64(len(pts)))
}

func bboxOf(pts []types.Vec3) types.BBox {
	if len(pts) == 0 {
		return types.BBox{}
	}
	box := types.BBox{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box
}

// polygonArea returns the unsigned area of a planar polygon given in 3D
// (all points coplanar) via the shoelace formula projected onto its own
// normal.
func polygonArea(pts []types.Vec3, planeNormal types.Vec3) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum types.Vec3
	for i := range pts {
		j := (i + 1) % len(pts)
		sum = add(sum, cross(pts[i], pts[j]))
	}
	return math.Abs(dot(sum, normalize(planeNormal))) / 2
}
