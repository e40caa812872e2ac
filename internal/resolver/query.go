package resolver

import (
	"math"

	"github.com/waffle-iron/core/internal/types"
)

// applyFilters narrows cands to those satisfying every Filter in order.
// Two predicate kinds are implemented: "normal_approx" (Args x, y, z,
// tolerance_deg: keep faces whose normal is within tolerance_deg of the
// given direction) and "contains_point" (Args x, y, z: keep entities
// whose bounding box contains the given point). Extremum queries like
// "largest area" are expressed through TieBreak{Mode: "Highest",
// Property: "area"} instead of a filter, since a filter is a predicate
// and an extremum is a comparison across the whole candidate set.
func applyFilters(cands []candidate, filters []types.Filter) []candidate {
	for _, f := range filters {
		cands = applyFilter(cands, f)
	}
	return cands
}

func applyFilter(cands []candidate, f types.Filter) []candidate {
	switch f.Name {
	case "normal_approx":
		target := types.Vec3{X: f.Args["x"], Y: f.Args["y"], Z: f.Args["z"]}
		tolDeg := f.Args["tolerance_deg"]
		if tolDeg == 0 {
			tolDeg = 5
		}
		cosTol := math.Cos(tolDeg * math.Pi / 180)
		out := cands[:0:0]
		for _, c := range cands {
			n := c.record.Signature.Normal
			if directionCos(n, target) >= cosTol {
				out = append(out, c)
			}
		}
		return out
	case "contains_point":
		p := types.Vec3{X: f.Args["x"], Y: f.Args["y"], Z: f.Args["z"]}
		tol := f.Args["tolerance"]
		out := cands[:0:0]
		for _, c := range cands {
			if bboxContains(c.record.Signature.BBox, p, tol) {
				out = append(out, c)
			}
		}
		return out
	default:
		return cands
	}
}

func directionCos(a, b types.Vec3) float64 {
	na, nb := vecNorm3(a), vecNorm3(b)
	if na < 1e-12 || nb < 1e-12 {
		return -1
	}
	return (a.X*b.X + a.Y*b.Y + a.Z*b.Z) / (na * nb)
}

func bboxContains(b types.BBox, p types.Vec3, tol float64) bool {
	return p.X >= b.Min.X-tol && p.X <= b.Max.X+tol &&
		p.Y >= b.Min.Y-tol && p.Y <= b.Max.Y+tol &&
		p.Z >= b.Min.Z-tol && p.Z <= b.Max.Z+tol
}

// propertyOf reads the named scalar property off a candidate's
// signature for TieBreak comparison.
func propertyOf(c candidate, property string) float64 {
	sig := c.record.Signature
	switch property {
	case "area", "length":
		return sig.Area
	case "centroid_x":
		return sig.Centroid.X
	case "centroid_y":
		return sig.Centroid.Y
	case "centroid_z":
		return sig.Centroid.Z
	default:
		return 0
	}
}

// breakTie reduces cands to the single winner TieBreak names. Mode
// "Preference" has no backing data in types.TieBreak (the file format
// deliberately never persists raw KernelIds, per its doc comment) and
// so is not resolvable here; callers get ErrAmbiguous instead, same as
// an empty or unset tie-break.
func breakTie(cands []candidate, tb types.TieBreak) []candidate {
	if len(cands) <= 1 || tb.Mode == "" || tb.Mode == "Preference" {
		return cands
	}
	best := cands[0]
	bestVal := propertyOf(best, tb.Property)
	for _, c := range cands[1:] {
		v := propertyOf(c, tb.Property)
		switch tb.Mode {
		case "Highest":
			if v > bestVal || (v == bestVal && c.kernelID < best.kernelID) {
				best, bestVal = c, v
			}
		case "Lowest":
			if v < bestVal || (v == bestVal && c.kernelID < best.kernelID) {
				best, bestVal = c, v
			}
		}
	}
	return []candidate{best}
}
