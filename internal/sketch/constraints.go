package sketch

import (
	"math"

	"github.com/waffle-iron/core/internal/types"
)

// residualFn computes one SketchConstraint's contribution to the
// solver's residual vector given the current parameter guess. Most
// constraint kinds contribute one equation; a few (Coincident,
// Symmetric-family, Midpoint, Dragged) contribute two, since they fix
// both coordinates of a point.
type residualFn func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64

// residualFns maps each ConstraintKind to its residual function and
// documents, per kind, the fixed Entities order the adapter that
// writes these constraints is expected to use.
var residualFns = map[types.ConstraintKind]residualFn{
	// Entities: [p1, p2]
	types.ConstraintCoincident: func(idx *paramIndex, _ map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		x1, y1 := idx.point(x, c.Entities[0])
		x2, y2 := idx.point(x, c.Entities[1])
		return []float64{x1 - x2, y1 - y2}
	},
	// Entities: [line]
	types.ConstraintHorizontal: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		_, y1, _, y2 := lineEndpoints(idx, ents, x, c.Entities[0])
		return []float64{y2 - y1}
	},
	// Entities: [line]
	types.ConstraintVertical: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		x1, _, x2, _ := lineEndpoints(idx, ents, x, c.Entities[0])
		return []float64{x2 - x1}
	},
	// Entities: [line1, line2]
	types.ConstraintParallel: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		d1 := lineDir(idx, ents, x, c.Entities[0])
		d2 := lineDir(idx, ents, x, c.Entities[1])
		return []float64{d1[0]*d2[1] - d1[1]*d2[0]}
	},
	// Entities: [line1, line2]
	types.ConstraintPerpendicular: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		d1 := lineDir(idx, ents, x, c.Entities[0])
		d2 := lineDir(idx, ents, x, c.Entities[1])
		return []float64{d1[0]*d2[0] + d1[1]*d2[1]}
	},
	// Entities: [circleOrArcOrLine_a, circleOrArcOrLine_b] — tangency
	// between two circles/arcs (center distance = r1+r2) or a
	// circle/arc and a line (center-to-line distance = r).
	types.ConstraintTangent: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{tangentResidual(idx, ents, x, c.Entities[0], c.Entities[1])}
	},
	// Entities: [a, b] — matching circles/arcs (radius) or lines (length).
	types.ConstraintEqual: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{measure(idx, ents, x, c.Entities[0]) - measure(idx, ents, x, c.Entities[1])}
	},
	// Entities: [p1, p2, line] — p1/p2 mirror across line.
	types.ConstraintSymmetric: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		p1x, p1y := idx.point(x, c.Entities[0])
		p2x, p2y := idx.point(x, c.Entities[1])
		d := lineDir(idx, ents, x, c.Entities[2])
		lx, ly, _, _ := lineEndpoints(idx, ents, x, c.Entities[2])
		midX, midY := (p1x+p2x)/2, (p1y+p2y)/2
		onLine := d[0]*(midY-ly) - d[1]*(midX-lx)
		perp := d[0]*(p2x-p1x) + d[1]*(p2y-p1y)
		return []float64{onLine, perp}
	},
	// Entities: [p1, p2] — mirror across the sketch's horizontal axis.
	types.ConstraintSymmetricH: func(idx *paramIndex, _ map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		x1, y1 := idx.point(x, c.Entities[0])
		x2, y2 := idx.point(x, c.Entities[1])
		return []float64{x1 - x2, y1 + y2}
	},
	// Entities: [p1, p2] — mirror across the sketch's vertical axis.
	types.ConstraintSymmetricV: func(idx *paramIndex, _ map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		x1, y1 := idx.point(x, c.Entities[0])
		x2, y2 := idx.point(x, c.Entities[1])
		return []float64{x1 + x2, y1 - y2}
	},
	// Entities: [p, line]
	types.ConstraintMidpoint: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		px, py := idx.point(x, c.Entities[0])
		lx1, ly1, lx2, ly2 := lineEndpoints(idx, ents, x, c.Entities[1])
		return []float64{px - (lx1+lx2)/2, py - (ly1+ly2)/2}
	},
	// Entities: [p, entity] — point lies on a line or circle.
	types.ConstraintOnEntity: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{onEntityResidual(idx, ents, x, c.Entities[0], c.Entities[1])}
	},
	// Entities: [line1, line2] — same residual as Parallel; the sign
	// convention (same vs. opposite direction) is not separately
	// enforceable as a smooth equality residual, so this is treated as
	// Parallel plus a documented simplification.
	types.ConstraintSameOrientation: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		d1 := lineDir(idx, ents, x, c.Entities[0])
		d2 := lineDir(idx, ents, x, c.Entities[1])
		return []float64{d1[0]*d2[1] - d1[1]*d2[0]}
	},
	// Entities: [p, target] — soft pull of p toward target, a Point
	// the caller creates for the drag; both residuals are scaled by
	// softWeight.
	types.ConstraintDragged: func(idx *paramIndex, _ map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		const softWeight = 0.1
		px, py := idx.point(x, c.Entities[0])
		tx, ty := idx.point(x, c.Entities[1])
		return []float64{softWeight * (px - tx), softWeight * (py - ty)}
	},
	// Entities: [p1, p2]
	types.ConstraintDistance: func(idx *paramIndex, _ map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		x1, y1 := idx.point(x, c.Entities[0])
		x2, y2 := idx.point(x, c.Entities[1])
		return []float64{math.Hypot(x2-x1, y2-y1) - c.Value}
	},
	// Entities: [line1, line2] — Value in radians.
	types.ConstraintAngle: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		d1 := lineDir(idx, ents, x, c.Entities[0])
		d2 := lineDir(idx, ents, x, c.Entities[1])
		return []float64{angleBetween(d1, d2) - c.Value}
	},
	// Entities: [circleOrArc]
	types.ConstraintRadius: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{measure(idx, ents, x, c.Entities[0]) - c.Value}
	},
	// Entities: [circle]
	types.ConstraintDiameter: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{2*measure(idx, ents, x, c.Entities[0]) - c.Value}
	},
	// Entities: [line1, line2, line3, line4] — angle(l1,l2) == angle(l3,l4)
	types.ConstraintEqualAngle: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		a1 := angleBetween(lineDir(idx, ents, x, c.Entities[0]), lineDir(idx, ents, x, c.Entities[1]))
		a2 := angleBetween(lineDir(idx, ents, x, c.Entities[2]), lineDir(idx, ents, x, c.Entities[3]))
		return []float64{a1 - a2}
	},
	// Entities: [a, b] — measure(a) == Value * measure(b)
	types.ConstraintRatio: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{measure(idx, ents, x, c.Entities[0]) - c.Value*measure(idx, ents, x, c.Entities[1])}
	},
	// Entities: [point, line] — distance(point, line) == Value.
	types.ConstraintEqualPointToLine: func(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, c types.SketchConstraint) []float64 {
		return []float64{pointToLineDistance(idx, ents, x, c.Entities[0], c.Entities[1]) - c.Value}
	},
}

func lineEndpoints(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, id types.EntityLocalId) (x1, y1, x2, y2 float64) {
	l, ok := ents[id].(types.Line)
	if !ok {
		return 0, 0, 0, 0
	}
	x1, y1 = idx.point(x, l.StartID)
	x2, y2 = idx.point(x, l.EndID)
	return
}

func lineDir(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, id types.EntityLocalId) [2]float64 {
	x1, y1, x2, y2 := lineEndpoints(idx, ents, x, id)
	return [2]float64{x2 - x1, y2 - y1}
}

func angleBetween(a, b [2]float64) float64 {
	return math.Atan2(a[0]*b[1]-a[1]*b[0], a[0]*b[0]+a[1]*b[1])
}

// measure returns a circle/arc's radius or a line's length: the
// scalar quantity Equal/Radius/Diameter/Ratio compare.
func measure(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, id types.EntityLocalId) float64 {
	switch ents[id].(type) {
	case types.Circle, types.Arc:
		return idx.radius(x, id, ents)
	case types.Line:
		x1, y1, x2, y2 := lineEndpoints(idx, ents, x, id)
		return math.Hypot(x2-x1, y2-y1)
	default:
		return 0
	}
}

func centerOf(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, id types.EntityLocalId) (float64, float64, bool) {
	switch v := ents[id].(type) {
	case types.Circle:
		cx, cy := idx.point(x, v.CenterID)
		return cx, cy, true
	case types.Arc:
		cx, cy := idx.point(x, v.CenterID)
		return cx, cy, true
	default:
		return 0, 0, false
	}
}

func pointToLineDistance(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, pointID, lineID types.EntityLocalId) float64 {
	px, py := idx.point(x, pointID)
	x1, y1, x2, y2 := lineEndpoints(idx, ents, x, lineID)
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	return ((px-x1)*dy - (py-y1)*dx) / length
}

func tangentResidual(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, a, b types.EntityLocalId) float64 {
	if _, isLineA := ents[a].(types.Line); isLineA {
		return pointToLineDistanceSigned(idx, ents, x, b, a)
	}
	if _, isLineB := ents[b].(types.Line); isLineB {
		return pointToLineDistanceSigned(idx, ents, x, a, b)
	}
	cax, cay, _ := centerOf(idx, ents, x, a)
	cbx, cby, _ := centerOf(idx, ents, x, b)
	ra := idx.radius(x, a, ents)
	rb := idx.radius(x, b, ents)
	return math.Hypot(cbx-cax, cby-cay) - (ra + rb)
}

// pointToLineDistanceSigned measures a circle/arc's center-to-line
// distance against its own radius, for circle/arc-to-line tangency.
func pointToLineDistanceSigned(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, circleOrArc, lineID types.EntityLocalId) float64 {
	cx, cy, _ := centerOf(idx, ents, x, circleOrArc)
	x1, y1, x2, y2 := lineEndpoints(idx, ents, x, lineID)
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	var dist float64
	if length == 0 {
		dist = math.Hypot(cx-x1, cy-y1)
	} else {
		dist = math.Abs((cx-x1)*dy-(cy-y1)*dx) / length
	}
	r := idx.radius(x, circleOrArc, ents)
	return dist - r
}

func onEntityResidual(idx *paramIndex, ents map[types.EntityLocalId]types.SketchEntity, x []float64, pointID, targetID types.EntityLocalId) float64 {
	switch ents[targetID].(type) {
	case types.Line:
		return pointToLineDistance(idx, ents, x, pointID, targetID)
	case types.Circle, types.Arc:
		px, py := idx.point(x, pointID)
		cx, cy, _ := centerOf(idx, ents, x, targetID)
		r := idx.radius(x, targetID, ents)
		return math.Hypot(px-cx, py-cy) - r
	default:
		return 0
	}
}
