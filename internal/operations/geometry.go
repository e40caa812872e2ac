package operations

import (
	"math"

	"github.com/waffle-iron/core/internal/resolver"
	"github.com/waffle-iron/core/internal/types"
)

// deriveXAxis picks a deterministic in-plane +X direction for a plane
// known only by its normal (a resolved planar face carries no stored
// XAxis the way a Datum does). It projects the world X axis onto the
// plane, falling back to world Y when the normal is nearly parallel to
// world X, then normalizes: the same Gram-Schmidt construction the
// kernel's own Profile placement uses internally.
func deriveXAxis(normal types.Vec3) types.Vec3 {
	seed := types.Vec3{X: 1}
	if math.Abs(normal.X) > 0.9 {
		seed = types.Vec3{Y: 1}
	}
	n := normalize3(normal)
	proj := dot3(seed, n)
	x := sub3(seed, scale3(n, proj))
	return normalize3(x)
}

func add3(a, b types.Vec3) types.Vec3 {
	return types.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func sub3(a, b types.Vec3) types.Vec3 {
	return types.Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func scale3(a types.Vec3, s float64) types.Vec3 {
	return types.Vec3{X: a.X * s, Y: a.Y * s, Z: a.Z * s}
}

func dot3(a, b types.Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func cross3(a, b types.Vec3) types.Vec3 {
	return types.Vec3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}

func normalize3(v types.Vec3) types.Vec3 {
	n := norm3(v)
	if n < 1e-12 {
		return v
	}
	return scale3(v, 1/n)
}

// directionFromRecord approximates a direction vector from a resolved
// entity: a Face's outward normal, or (for anything else, typically an
// edge standing in for an axis) the normalized vector across its
// bounding box — a reasonable proxy when the signature carries no
// explicit endpoints.
func directionFromRecord(rec types.EntityRecord) types.Vec3 {
	if rec.Kind == types.KindFace {
		return normalize3(rec.Signature.Normal)
	}
	b := rec.Signature.BBox
	return normalize3(sub3(b.Max, b.Min))
}

// resolveDirection extracts a direction vector from a resolved GeomRef
// regardless of whether it landed on a kernel entity or a datum: an
// axis datum gives its own Direction, a plane datum its Normal, and a
// resolved kernel entity falls back to directionFromRecord.
func resolveDirection(r resolver.Result) types.Vec3 {
	if r.IsDatum {
		if norm3(r.Datum.Direction) > 1e-12 {
			return normalize3(r.Datum.Direction)
		}
		return normalize3(r.Datum.Normal)
	}
	return directionFromRecord(r.Record)
}
