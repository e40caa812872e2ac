package resolver

import (
	"math"

	"github.com/waffle-iron/core/internal/types"
)

// defaultThreshold is the minimum score (§4.4) a Signature match must
// clear to be accepted without falling through to Query.
const defaultThreshold = 0.75

// surfaceMismatchFactor heavily penalizes, without outright excluding, a
// candidate whose surface type differs from the target's: a cylindrical
// face that grew from a planar one after an edit is still plausibly "the
// same" feature-wise, just a poor match.
const surfaceMismatchFactor = 0.3

// scoreSignature returns a similarity score in [0, 1] between a target
// TopoSignature and a candidate's, combining the weighted terms §4.4
// specifies: area/length 30%, normal direction 30%, centroid position
// 20%, bounding box 10%, adjacency digest 10%, gated by a heavy penalty
// on surface-type mismatch.
func scoreSignature(target types.TopoSignature, cand types.TopoSignature) float64 {
	scale := referenceScale(target)

	areaScore := ratioScore(target.Area, cand.Area)
	normalScore := directionScore(target.Normal, cand.Normal)
	centroidScore := distanceScore(target.Centroid, cand.Centroid, scale)
	bboxScore := bboxScoreOf(target.BBox, cand.BBox, scale)
	adjacencyScore := adjacencyScoreOf(target.Adjacency, cand.Adjacency)

	total := 0.30*areaScore + 0.30*normalScore + 0.20*centroidScore + 0.10*bboxScore + 0.10*adjacencyScore

	if target.Surface != "" && cand.Surface != "" && target.Surface != cand.Surface {
		total *= surfaceMismatchFactor
	}
	return total
}

// referenceScale picks a length scale for normalizing absolute distances
// (centroid, bbox) into [0, 1] scores: the target's own bounding-box
// diagonal, falling back to a fixed scale for degenerate (point-like)
// entities so the score never divides by zero.
func referenceScale(sig types.TopoSignature) float64 {
	d := diagonal(sig.BBox)
	if d < 1e-9 {
		return 1.0
	}
	return d
}

func diagonal(b types.BBox) float64 {
	dx, dy, dz := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func ratioScore(a, b float64) float64 {
	m := math.Max(math.Abs(a), math.Abs(b))
	if m < 1e-12 {
		return 1.0
	}
	return clamp01(1 - math.Abs(a-b)/m)
}

// directionScore compares two directions by cosine similarity remapped
// to [0, 1]. Non-face entities carry a zero Normal in their signature;
// comparing two zero vectors is treated as a perfect (inapplicable)
// match rather than penalized.
func directionScore(a, b types.Vec3) float64 {
	na, nb := vecNorm3(a), vecNorm3(b)
	if na < 1e-12 && nb < 1e-12 {
		return 1.0
	}
	if na < 1e-12 || nb < 1e-12 {
		return 0.0
	}
	cos := (a.X*b.X + a.Y*b.Y + a.Z*b.Z) / (na * nb)
	return clamp01((cos + 1) / 2)
}

func distanceScore(a, b types.Vec3, scale float64) float64 {
	d := math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
	return clamp01(1 - d/scale)
}

func bboxScoreOf(a, b types.BBox, scale float64) float64 {
	minD := math.Sqrt(sq(a.Min.X-b.Min.X) + sq(a.Min.Y-b.Min.Y) + sq(a.Min.Z-b.Min.Z))
	maxD := math.Sqrt(sq(a.Max.X-b.Max.X) + sq(a.Max.Y-b.Max.Y) + sq(a.Max.Z-b.Max.Z))
	return clamp01(1 - (minD+maxD)/(2*scale))
}

// adjacencyScoreOf compares two neighbor-kind count digests by
// normalized L1 distance: identical neighbor profiles score 1, entirely
// disjoint profiles score 0.
func adjacencyScoreOf(a, b types.AdjacencyDigest) float64 {
	kinds := map[types.TopoKind]bool{}
	for k := range a.Counts {
		kinds[k] = true
	}
	for k := range b.Counts {
		kinds[k] = true
	}
	if len(kinds) == 0 {
		return 1.0
	}
	var diff, total float64
	for k := range kinds {
		av, bv := float64(a.Counts[k]), float64(b.Counts[k])
		diff += math.Abs(av - bv)
		total += av + bv
	}
	if total < 1e-12 {
		return 1.0
	}
	return clamp01(1 - diff/total)
}

func vecNorm3(v types.Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func sq(v float64) float64 { return v * v }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// bestBySignature scores every candidate against target and returns the
// highest-scoring one along with its score. Ties favor the lowest
// KernelId for determinism.
func bestBySignature(target types.TopoSignature, cands []candidate) (candidate, float64) {
	var best candidate
	bestScore := -1.0
	for _, c := range cands {
		s := scoreSignature(target, c.record.Signature)
		if s > bestScore || (s == bestScore && c.kernelID < best.kernelID) {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}
