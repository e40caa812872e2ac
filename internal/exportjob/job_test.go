package exportjob_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/exportjob"
	"github.com/waffle-iron/core/internal/exportjob/inmem"
	"github.com/waffle-iron/core/internal/kernel"
	"github.com/waffle-iron/core/internal/kernel/mock"
	"github.com/waffle-iron/core/internal/rebuild"
	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

type fakeWriter struct {
	lastDestination string
}

func (w *fakeWriter) WriteStep(_ context.Context, mesh kernel.RenderMesh, destination string) (int64, error) {
	w.lastDestination = destination
	return int64(len(mesh.Positions) * 4), nil
}

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

func TestTessellateAndExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	k := mock.New()
	eng := rebuild.New(k)

	_, sketchCmd, err := eng.Do(ctx, tree.AddFeature(rectangleSketch(20, 10), "Sketch1"))
	require.NoError(t, err)
	_, extrudeCmd, err := eng.Do(ctx, tree.AddFeature(types.Extrude{
		SketchFeature: sketchCmd.FeatureID,
		ProfileIndex:  0,
		Depth:         5,
	}, "Extrude1"))
	require.NoError(t, err)

	writer := &fakeWriter{}
	jobEngine := inmem.New()
	require.NoError(t, exportjob.Register(ctx, jobEngine, exportjob.Activities{
		Engine: eng,
		Kernel: k,
		Writer: writer,
	}))

	handle, err := jobEngine.StartWorkflow(ctx, exportjob.WorkflowStartRequest{
		ID:       "export-1",
		Workflow: exportjob.WorkflowName,
		Input: exportjob.Request{
			FeatureID:   extrudeCmd.FeatureID,
			Tolerance:   0.01,
			Destination: "/tmp/part.step",
		},
	})
	require.NoError(t, err)

	var result exportjob.Result
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, handle.Wait(waitCtx, &result))

	require.Equal(t, "/tmp/part.step", result.Destination)
	require.Equal(t, "/tmp/part.step", writer.lastDestination)
	require.Positive(t, result.BytesWritten)
}

func TestTessellateFailsForFeatureWithoutSolid(t *testing.T) {
	ctx := context.Background()
	k := mock.New()
	eng := rebuild.New(k)

	_, sketchCmd, err := eng.Do(ctx, tree.AddFeature(rectangleSketch(20, 10), "Sketch1"))
	require.NoError(t, err)

	writer := &fakeWriter{}
	jobEngine := inmem.New()
	require.NoError(t, exportjob.Register(ctx, jobEngine, exportjob.Activities{
		Engine: eng,
		Kernel: k,
		Writer: writer,
	}))

	handle, err := jobEngine.StartWorkflow(ctx, exportjob.WorkflowStartRequest{
		ID:       "export-2",
		Workflow: exportjob.WorkflowName,
		Input: exportjob.Request{
			FeatureID:   sketchCmd.FeatureID,
			Tolerance:   0.01,
			Destination: "/tmp/sketch.step",
		},
	})
	require.NoError(t, err)

	var result exportjob.Result
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.Error(t, handle.Wait(waitCtx, &result))
}
