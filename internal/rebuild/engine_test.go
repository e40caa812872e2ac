package rebuild_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/kernel/mock"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

// rectangleSketch builds a fully-constrained w*h rectangle on origin_xy,
// matching §8's Box scenario (4 lines sharing their corner points, 1
// Coincident grounding point 1 at the origin, 2 Horizontal, 2 Vertical,
// 2 Distance).
func rectangleSketch(w, h float64) types.Sketch {
	p := func(id types.EntityLocalId, x, y float64) types.Point { return types.Point{ID: id, X: x, Y: y} }
	pts := []types.SketchEntity{p(1, 0, 0), p(2, w, 0), p(3, w, h), p(4, 0, h)}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
	}
	constraints := []types.SketchConstraint{
		{ID: 20, Kind: types.ConstraintCoincident, Entities: []types.EntityLocalId{1, 0}},
		{ID: 21, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{5}},
		{ID: 22, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{7}},
		{ID: 23, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{6}},
		{ID: 24, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{8}},
		{ID: 25, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: w},
		{ID: 26, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{2, 3}, Value: h},
	}
	return types.Sketch{
		PlaneRef:    types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
		Entities:    append(pts, lines...),
		Constraints: constraints,
	}
}

func addBox(t *testing.T, eng *rebuild.Engine, w, h, depth float64) (types.FeatureId, types.FeatureId, *rebuild.ModelUpdate) {
	t.Helper()
	ctx := context.Background()

	_, sketchCmd, err := eng.Do(ctx, tree.AddFeature(rectangleSketch(w, h), "Sketch1"))
	require.NoError(t, err)

	update, extrudeCmd, err := eng.Do(ctx, tree.AddFeature(types.Extrude{
		SketchFeature: sketchCmd.FeatureID,
		ProfileIndex:  0,
		Depth:         depth,
	}, "Extrude1"))
	require.NoError(t, err)

	return sketchCmd.FeatureID, extrudeCmd.FeatureID, update
}

func newEngine() *rebuild.Engine {
	return rebuild.New(mock.New())
}

func TestBoxScenario(t *testing.T) {
	eng := newEngine()
	sketchID, extrudeID, update := addBox(t, eng, 100, 50, 25)

	require.Len(t, update.VisibleBodies, 1)
	require.Equal(t, extrudeID, update.VisibleBodies[0].FeatureID)

	result, ok := eng.Results(extrudeID)
	require.True(t, ok)
	require.False(t, result.Failed())
	require.NotNil(t, result.Solid)

	var vertices, edges, faces int
	roleCounts := map[types.Role]int{}
	for _, rec := range result.EntityTable {
		switch rec.Kind {
		case types.KindVertex:
			vertices++
		case types.KindEdge:
			edges++
		case types.KindFace:
			faces++
		}
		if rec.HasRole {
			roleCounts[rec.Role]++
		}
	}
	require.Equal(t, 8, vertices)
	require.Equal(t, 12, edges)
	require.Equal(t, 6, faces)
	require.Equal(t, 1, roleCounts[types.RoleProfileFace])
	require.Equal(t, 1, roleCounts[types.RoleEndCapPositive])
	require.Equal(t, 4, roleCounts[types.RoleSideFace])

	sketchResult, ok := eng.Results(sketchID)
	require.True(t, ok)
	require.False(t, sketchResult.Failed())
}

func TestEditPropagation(t *testing.T) {
	eng := newEngine()
	sketchID, extrudeID, _ := addBox(t, eng, 100, 50, 25)

	sk := rectangleSketch(200, 50)
	update, _, err := eng.Do(context.Background(), tree.EditFeature(sketchID, sk))
	require.NoError(t, err)
	require.NotNil(t, update)

	result, ok := eng.Results(extrudeID)
	require.True(t, ok)
	require.False(t, result.Failed())
	require.Empty(t, result.Warnings)
}

func TestSuppressedUpstreamErrorsDownstream(t *testing.T) {
	eng := newEngine()
	sketchID, extrudeID, _ := addBox(t, eng, 100, 50, 25)

	_, _, err := eng.Do(context.Background(), tree.Suppress(sketchID, true))
	require.NoError(t, err)

	result, ok := eng.Results(extrudeID)
	require.True(t, ok)
	require.True(t, result.Failed())

	_, _, err = eng.Do(context.Background(), tree.Suppress(sketchID, false))
	require.NoError(t, err)
	result, ok = eng.Results(extrudeID)
	require.True(t, ok)
	require.False(t, result.Failed())
	require.NotNil(t, result.Solid)
}

func TestUndoRestoresResults(t *testing.T) {
	eng := newEngine()
	_, extrudeID, _ := addBox(t, eng, 100, 50, 25)

	before, ok := eng.Results(extrudeID)
	require.True(t, ok)
	beforeFaces := len(before.EntityTable)

	_, _, err := eng.Do(context.Background(), tree.Suppress(extrudeID, true))
	require.NoError(t, err)
	_, ok = eng.Results(extrudeID)
	require.False(t, ok)

	update, ok, err := eng.Undo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, update)

	after, ok := eng.Results(extrudeID)
	require.True(t, ok)
	require.Equal(t, beforeFaces, len(after.EntityTable))
}

func TestRollbackHidesDownstreamFeatures(t *testing.T) {
	eng := newEngine()
	_, extrudeID, _ := addBox(t, eng, 100, 50, 25)
	_ = extrudeID

	tr := eng.Tree()
	k := 1
	update, _, err := eng.Do(context.Background(), tree.SetRollbackIndex(&k))
	require.NoError(t, err)
	require.Empty(t, update.VisibleBodies)
	require.Equal(t, 1, *tr.ActiveIndex)

	update, _, err = eng.Do(context.Background(), tree.SetRollbackIndex(nil))
	require.NoError(t, err)
	require.Len(t, update.VisibleBodies, 1)
}

func TestFaceDataForFeatureCoversAllTriangles(t *testing.T) {
	eng := newEngine()
	_, extrudeID, _ := addBox(t, eng, 100, 50, 25)

	sel, err := eng.FaceDataForFeature(context.Background(), extrudeID)
	require.NoError(t, err)
	require.Len(t, sel, 6)

	var triCount uint32
	seen := map[uint32]bool{}
	for _, s := range sel {
		for i := uint32(0); i < s.Range.TriCount; i++ {
			require.False(t, seen[s.Range.TriStart+i])
			seen[s.Range.TriStart+i] = true
		}
		triCount += s.Range.TriCount
	}
	require.Len(t, seen, int(triCount))
}
