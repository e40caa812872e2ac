package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/api"
	"github.com/waffle-iron/core/internal/fileformat"
	"github.com/waffle-iron/core/internal/kernel/mock"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/types"
)

func newService() *api.Service {
	return api.NewService(rebuild.New(mock.New()), fileformat.ProjectMeta{Name: "Test", Units: "mm"})
}

// buildRectangleSession mirrors internal/rebuild's box scenario: a fully
// constrained rectangle, built here one AddSketchEntity/AddConstraint
// call at a time through the session lifecycle instead of constructed
// directly as a types.Sketch.
func buildRectangleSession(t *testing.T, svc *api.Service, w, h float64) api.SessionId {
	t.Helper()
	planeRef := types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)}
	session := svc.BeginSketch(planeRef)

	pts := []types.SketchEntity{
		types.Point{ID: 1, X: 0, Y: 0},
		types.Point{ID: 2, X: w, Y: 0},
		types.Point{ID: 3, X: w, Y: h},
		types.Point{ID: 4, X: 0, Y: h},
	}
	lines := []types.SketchEntity{
		types.Line{ID: 5, StartID: 1, EndID: 2},
		types.Line{ID: 6, StartID: 2, EndID: 3},
		types.Line{ID: 7, StartID: 3, EndID: 4},
		types.Line{ID: 8, StartID: 4, EndID: 1},
	}
	for _, e := range append(pts, lines...) {
		require.NoError(t, svc.AddSketchEntity(session, e))
	}

	constraints := []types.SketchConstraint{
		{ID: 21, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{5}},
		{ID: 22, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{7}},
		{ID: 23, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{6}},
		{ID: 24, Kind: types.ConstraintVertical, Entities: []types.EntityLocalId{8}},
		{ID: 25, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{1, 2}, Value: w},
		{ID: 26, Kind: types.ConstraintDistance, Entities: []types.EntityLocalId{2, 3}, Value: h},
	}
	for _, c := range constraints {
		require.NoError(t, svc.AddConstraint(session, c))
	}
	return session
}

func TestSketchLifecycleCommitsFeature(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	session := buildRectangleSession(t, svc, 100, 50)

	solved, err := svc.SolveSketch(session)
	require.NoError(t, err)
	require.Equal(t, "FullyConstrained", solved.Status.Kind)

	update, featureID, err := svc.FinishSketch(ctx, session, "Sketch1")
	require.NoError(t, err)
	require.NotEmpty(t, featureID)
	require.NotNil(t, update)

	_, err = svc.SolveSketch(session)
	require.ErrorIs(t, err, api.ErrUnknownSession)
}

func TestAddSketchEntityRejectsDuplicateLocalID(t *testing.T) {
	svc := newService()
	session := svc.BeginSketch(types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)})
	require.NoError(t, svc.AddSketchEntity(session, types.Point{ID: 1, X: 0, Y: 0}))
	err := svc.AddSketchEntity(session, types.Point{ID: 1, X: 1, Y: 1})
	require.ErrorIs(t, err, api.ErrDuplicateEntity)
}

func TestAddConstraintRejectsUnknownEntity(t *testing.T) {
	svc := newService()
	session := svc.BeginSketch(types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)})
	err := svc.AddConstraint(session, types.SketchConstraint{ID: 1, Kind: types.ConstraintHorizontal, Entities: []types.EntityLocalId{99}})
	require.ErrorIs(t, err, api.ErrUnknownEntity)
}

func TestFeatureLifecycleAndUndo(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	session := buildRectangleSession(t, svc, 100, 50)
	_, sketchID, err := svc.FinishSketch(ctx, session, "Sketch1")
	require.NoError(t, err)

	update, extrudeID, err := svc.AddFeature(ctx, types.Extrude{SketchFeature: sketchID, ProfileIndex: 0, Depth: 25}, "Extrude1")
	require.NoError(t, err)
	require.Len(t, update.VisibleBodies, 1)

	update, err = svc.RenameFeature(ctx, extrudeID, "Boss")
	require.NoError(t, err)
	require.NotNil(t, update)

	update, err = svc.Suppress(ctx, extrudeID, true)
	require.NoError(t, err)
	require.Empty(t, update.VisibleBodies)

	update, ok, err := svc.Undo(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, update.VisibleBodies, 1)
}

func TestSaveLoadProjectRoundTrip(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	session := buildRectangleSession(t, svc, 100, 50)
	_, _, err := svc.FinishSketch(ctx, session, "Sketch1")
	require.NoError(t, err)

	data, err := svc.SaveProject(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	other := newService()
	update, err := other.LoadProject(ctx, data)
	require.NoError(t, err)
	require.NotNil(t, update)
}

func TestDispatchAddFeature(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	session := buildRectangleSession(t, svc, 100, 50)
	_, sketchID, err := svc.FinishSketch(ctx, session, "Sketch1")
	require.NoError(t, err)

	event, reply, err := svc.Dispatch(ctx, api.Command{
		Kind:      api.CmdAddFeature,
		Operation: types.Extrude{SketchFeature: sketchID, ProfileIndex: 0, Depth: 25},
		Name:      "Extrude1",
	})
	require.NoError(t, err)
	require.Equal(t, api.EventModelUpdated, event.Kind)
	require.NotNil(t, event.Model)
	featureID, ok := reply.(types.FeatureId)
	require.True(t, ok)
	require.NotEmpty(t, featureID)
}

func TestDispatchUnknownCommand(t *testing.T) {
	svc := newService()
	_, _, err := svc.Dispatch(context.Background(), api.Command{Kind: "Bogus"})
	require.ErrorIs(t, err, api.ErrUnknownCommand)
}

func TestCommandJSONRoundTrip(t *testing.T) {
	cmd := api.Command{
		Kind:      api.CmdAddFeature,
		Operation: types.Extrude{SketchFeature: "f1", ProfileIndex: 0, Depth: 10},
		Name:      "Extrude1",
	}
	data, err := cmd.MarshalJSON()
	require.NoError(t, err)

	var decoded api.Command
	require.NoError(t, decoded.UnmarshalJSON(data))
	require.Equal(t, cmd.Kind, decoded.Kind)
	require.Equal(t, cmd.Name, decoded.Name)
	extrude, ok := decoded.Operation.(types.Extrude)
	require.True(t, ok)
	require.Equal(t, types.FeatureId("f1"), extrude.SketchFeature)
}
