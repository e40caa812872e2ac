// Package sketch solves a 2D geometric constraint system by Newton–
// Raphson (Gauss-Newton for non-square systems) with the linear step
// delegated to gonum's LU solver, and extracts closed profiles from
// the solved planar embedding (§4.2).
package sketch

import (
	"math"
	"sort"

	"github.com/waffle-iron/core/internal/types"
)

// paramIndex maps every free scalar unknown (point x/y, circle radius)
// to its slot in the solver's flat parameter vector. Point and circle
// ids are assigned slots in ascending EntityLocalId order so that two
// calls on the same sketch produce the same vector layout, which
// keeps the solver's output (and therefore Mock-kernel-style
// determinism downstream) reproducible.
type paramIndex struct {
	pointSlot  map[types.EntityLocalId]int // index of x; y is index+1
	circleSlot map[types.EntityLocalId]int
	size       int
}

func buildParamIndex(entities []types.SketchEntity) *paramIndex {
	idx := &paramIndex{pointSlot: map[types.EntityLocalId]int{}, circleSlot: map[types.EntityLocalId]int{}}

	var points, circles []types.EntityLocalId
	for _, e := range entities {
		switch v := e.(type) {
		case types.Point:
			points = append(points, v.ID)
		case types.Circle:
			circles = append(circles, v.ID)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })
	sort.Slice(circles, func(i, j int) bool { return circles[i] < circles[j] })

	n := 0
	for _, id := range points {
		idx.pointSlot[id] = n
		n += 2
	}
	for _, id := range circles {
		idx.circleSlot[id] = n
		n++
	}
	idx.size = n
	return idx
}

// initial returns the starting parameter vector read from the
// sketch's current entity values (Point.X/Y, Circle.Radius).
func (idx *paramIndex) initial(entities []types.SketchEntity) []float64 {
	x := make([]float64, idx.size)
	for _, e := range entities {
		switch v := e.(type) {
		case types.Point:
			s := idx.pointSlot[v.ID]
			x[s], x[s+1] = v.X, v.Y
		case types.Circle:
			if s, ok := idx.circleSlot[v.ID]; ok {
				x[s] = v.Radius
			}
		}
	}
	return x
}

// point returns the current position of a point-bearing entity. An id
// with no allocated slot (not a Point in this sketch's Entities list)
// resolves to the sketch plane's origin; this is how a sketch grounds
// its otherwise translation-invariant constraint set, by a Coincident
// constraint naming a point id that was never declared, the same way
// a real sketcher grounds one point to its plane's origin datum.
func (idx *paramIndex) point(x []float64, id types.EntityLocalId) (float64, float64) {
	s, ok := idx.pointSlot[id]
	if !ok {
		return 0, 0
	}
	return x[s], x[s+1]
}

func (idx *paramIndex) radius(x []float64, id types.EntityLocalId, entities map[types.EntityLocalId]types.SketchEntity) float64 {
	if s, ok := idx.circleSlot[id]; ok {
		return x[s]
	}
	// Arcs have no free radius parameter: their radius is derived from
	// the distance between center and start point.
	if a, ok := entities[id].(types.Arc); ok {
		cx, cy := idx.point(x, a.CenterID)
		sx, sy := idx.point(x, a.StartID)
		return math.Hypot(sx-cx, sy-cy)
	}
	return 0
}
