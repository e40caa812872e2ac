package sketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/types"
)

func rectangleSketch(w, h float64) *types.Sketch {
	p := func(id types.EntityLocalId, x, y float64) types.Point { return types.Point{ID: id, X: x, Y: y} }
	pts := []types.SketchEntity{p(1, 0, 0), p(2, w, 0), p(3, w, h), p(4, 0, h)}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
	}
	constraints := []types.SketchConstraint{
		// Entity id 0 is never declared, so it resolves to the sketch
		// origin: this grounds point 1 (and the rectangle's otherwise
		// free translation) the way a real sketch grounds one point to
		// its plane's origin datum.
		{ID: 20, Kind: types.ConstraintCoincident, Entities: []types.EntityLocalId{1, 0}},
		{ID: 21, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{5}},
		{ID: 22, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{7}},
		{ID: 23, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{6}},
		{ID: 24, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{8}},
		{ID: 25, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: w},
		{ID: 26, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{2, 3}, Value: h},
	}
	return &types.Sketch{Entities: append(pts, lines...), Constraints: constraints}
}

func TestSolveRectangleIsFullyConstrainedAndExtractsOneProfile(t *testing.T) {
	sk := rectangleSketch(10, 5)
	solved := Solve(sk)

	require.Equal(t, "FullyConstrained", solved.Status.Kind)
	require.Len(t, solved.Profiles, 1)
	require.Len(t, solved.Profiles[0].Segments, 4)

	p2 := solved.Positions[2]
	require.InDelta(t, 10, p2.X, 1e-4)
	require.InDelta(t, 0, p2.Y, 1e-4)
	p3 := solved.Positions[3]
	require.InDelta(t, 10, p3.X, 1e-4)
	require.InDelta(t, 5, p3.Y, 1e-4)
}

func TestSolveUnderConstrainedReportsPositiveDOF(t *testing.T) {
	sk := rectangleSketch(10, 5)
	// Drop the two Distance constraints: the rectangle's shape is fixed
	// by Horizontal/Vertical but its size is free.
	sk.Constraints = sk.Constraints[:5]

	solved := Solve(sk)
	require.Equal(t, "UnderConstrained", solved.Status.Kind)
	require.Greater(t, solved.Status.DOF, 0)
}

func TestSolveOverConstrainedReportsConflicts(t *testing.T) {
	sk := rectangleSketch(10, 5)
	sk.Constraints = append(sk.Constraints, types.SketchConstraint{
		ID: 27, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: 999,
	})

	solved := Solve(sk)
	require.Equal(t, "OverConstrained", solved.Status.Kind)
	require.NotEmpty(t, solved.Status.Conflicts)
}

func TestExtractProfilesIgnoresConstructionGeometry(t *testing.T) {
	positions := map[types.EntityLocalId]types.Vec3{
		1: {X: 0, Y: 0}, 2: {X: 10, Y: 0}, 3: {X: 10, Y: 10}, 4: {X: 0, Y: 10},
	}
	entities := []types.SketchEntity{
		types.Point{ID: 1}, types.Point{ID: 2}, types.Point{ID: 3}, types.Point{ID: 4},
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
		types.Line{ID: 9, StartID: 1, EndID: 3, Construction: true},
	}
	profiles := ExtractProfiles(entities, positions)
	require.Len(t, profiles, 1)
	require.Equal(t, "Outer", profiles[0].Winding)
}

func TestExtractProfilesNestsCircularHoleInEnclosingRectangle(t *testing.T) {
	positions := map[types.EntityLocalId]types.Vec3{
		1: {X: 0, Y: 0}, 2: {X: 20, Y: 0}, 3: {X: 20, Y: 20}, 4: {X: 0, Y: 20},
		9: {X: 10, Y: 10},
	}
	entities := []types.SketchEntity{
		types.Point{ID: 1}, types.Point{ID: 2}, types.Point{ID: 3}, types.Point{ID: 4},
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
		types.Point{ID: 9},
		types.Circle{ID: 10, CenterID: 9, Radius: 3},
	}
	profiles := ExtractProfiles(entities, positions)
	require.Len(t, profiles, 2)

	outerIdx, innerIdx := -1, -1
	for i, p := range profiles {
		if p.Winding == "Outer" {
			outerIdx = i
		} else {
			innerIdx = i
		}
	}
	require.NotEqual(t, -1, outerIdx, "rectangle loop should classify Outer")
	require.NotEqual(t, -1, innerIdx, "circle loop nested in the rectangle should reclassify Inner")
	require.Equal(t, -1, profiles[outerIdx].ParentIndex)
	require.Equal(t, outerIdx, profiles[innerIdx].ParentIndex)
}

func TestExtractProfilesLeavesStandaloneCircleOuter(t *testing.T) {
	positions := map[types.EntityLocalId]types.Vec3{9: {X: 0, Y: 0}}
	entities := []types.SketchEntity{
		types.Point{ID: 9},
		types.Circle{ID: 10, CenterID: 9, Radius: 3},
	}
	profiles := ExtractProfiles(entities, positions)
	require.Len(t, profiles, 1)
	require.Equal(t, "Outer", profiles[0].Winding)
	require.Equal(t, -1, profiles[0].ParentIndex)
}

func TestAngleBetweenPerpendicularLinesIsHalfPi(t *testing.T) {
	got := angleBetween([2]float64{1, 0}, [2]float64{0, 1})
	require.InDelta(t, math.Pi/2, got, 1e-9)
}
