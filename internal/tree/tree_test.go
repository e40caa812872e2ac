package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/tree"
	"github.com/waffle-iron/core/internal/types"
)

func sketchOp() types.Operation {
	return types.Sketch{
		PlaneRef: types.GeomRef{Kind: types.KindFace, Anchor: types.DatumAnchor(types.DatumOriginXY)},
	}
}

func TestAddEditDeleteRoundTrip(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)

	_, add, err := log.Do(tree.AddFeature(sketchOp(), "Sketch1"))
	require.NoError(t, err)
	require.Len(t, tr.Features, 1)

	extrude := types.Extrude{SketchFeature: add.FeatureID, ProfileIndex: 0, Depth: 25}
	_, _, err = log.Do(tree.AddFeature(extrude, "Extrude1"))
	require.NoError(t, err)
	require.Len(t, tr.Features, 2)

	snapshot := append([]types.Feature{}, tr.Features...)

	_, _, err = log.Do(tree.EditFeature(add.FeatureID, types.Sketch{
		PlaneRef: sketchOp().(types.Sketch).PlaneRef,
	}))
	require.NoError(t, err)
	require.NotEqual(t, snapshot[0], tr.Features[0])

	_, ok, err := log.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snapshot, tr.Features)

	_, ok, err = log.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, snapshot[0], tr.Features[0])

	_, ok, err = log.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snapshot, tr.Features)
}

func TestForwardReferenceRejected(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)

	_, _, err := log.Do(tree.AddFeature(types.Extrude{SketchFeature: types.FeatureId("does-not-exist")}, "bad"))
	require.Error(t, err)
	require.Empty(t, tr.Features)
}

func TestDeleteBlockedByDependent(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)
	_, sk, err := log.Do(tree.AddFeature(sketchOp(), "Sketch1"))
	require.NoError(t, err)
	_, _, err = log.Do(tree.AddFeature(types.Extrude{SketchFeature: sk.FeatureID, Depth: 10}, "Extrude1"))
	require.NoError(t, err)

	_, _, err = log.Do(tree.DeleteFeature(sk.FeatureID))
	require.Error(t, err)
	require.Len(t, tr.Features, 2)
}

func TestSuppressIdempotence(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)
	_, sk, err := log.Do(tree.AddFeature(sketchOp(), "Sketch1"))
	require.NoError(t, err)

	_, _, err = log.Do(tree.Suppress(sk.FeatureID, true))
	require.NoError(t, err)
	require.True(t, tr.Features[0].Suppressed)

	dirty, _, err := log.Do(tree.Suppress(sk.FeatureID, true))
	require.NoError(t, err)
	require.Equal(t, tr.Len(), dirty)
	require.True(t, tr.Features[0].Suppressed)

	_, ok, err := log.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, tr.Features[0].Suppressed)

	_, ok, err = log.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, tr.Features[0].Suppressed)
}

func TestRollbackMonotonicity(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)
	_, _, err := log.Do(tree.AddFeature(sketchOp(), "Sketch1"))
	require.NoError(t, err)

	before := *tr
	k := 0
	_, _, err = log.Do(tree.SetRollbackIndex(&k))
	require.NoError(t, err)
	require.NotNil(t, tr.ActiveIndex)

	_, _, err = log.Do(tree.SetRollbackIndex(nil))
	require.NoError(t, err)
	require.Nil(t, tr.ActiveIndex)
	require.Equal(t, before.ActiveIndex, tr.ActiveIndex)
}

func TestReorderRejectsCycle(t *testing.T) {
	tr := tree.New()
	log := tree.NewLog(tr, 0)
	_, sk, err := log.Do(tree.AddFeature(sketchOp(), "Sketch1"))
	require.NoError(t, err)
	_, ex, err := log.Do(tree.AddFeature(types.Extrude{SketchFeature: sk.FeatureID, Depth: 10}, "Extrude1"))
	require.NoError(t, err)

	_, _, err = log.Do(tree.ReorderFeature(ex.FeatureID, 0))
	require.Error(t, err)
}
